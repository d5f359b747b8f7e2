package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Subscription is one listener for an entity's notifications.
type Subscription struct {
	ID       string
	EntityID int64
	C        <-chan Notification

	out chan Notification
	hub *Hub
}

// Close unsubscribes and closes the channel. It is safe to call more than
// once.
func (s *Subscription) Close() {
	if s.hub != nil {
		s.hub.remove(s)
	}
}

// Hub routes notifications to in-process subscribers keyed by entity ID.
// A subscriber whose buffer is full misses the notification.
type Hub struct {
	buffer int

	mu     sync.RWMutex
	subs   map[int64]map[*Subscription]struct{}
	closed bool
}

// NewHub returns a hub with per-subscriber buffers of the given size
// (DefaultBuffer when not positive).
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{buffer: buffer, subs: make(map[int64]map[*Subscription]struct{})}
}

// Subscribe registers a listener for entityID. After Close it returns a
// subscription whose channel is already closed.
func (h *Hub) Subscribe(entityID int64) *Subscription {
	out := make(chan Notification, h.buffer)
	s := &Subscription{ID: uuid.NewString(), EntityID: entityID, C: out, out: out, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(out)
		return s
	}
	set, ok := h.subs[entityID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[entityID] = set
	}
	set[s] = struct{}{}
	log.Debug().Str("subscription", s.ID).Int64("entity_id", entityID).Msg("sse subscriber added")
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.EntityID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.EntityID)
	}
	close(s.out)
	log.Debug().Str("subscription", s.ID).Int64("entity_id", s.EntityID).Msg("sse subscriber removed")
}

// Close ends every subscription. Streams reading from a subscription see
// the channel close after draining what was already queued.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, set := range h.subs {
		for s := range set {
			close(s.out)
		}
		delete(h.subs, id)
	}
}

// Subscribers returns the number of listeners for entityID.
func (h *Hub) Subscribers(entityID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[entityID])
}

// Notify implements Notifier. It never blocks and never fails.
func (h *Hub) Notify(_ context.Context, n Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[n.EntityID] {
		select {
		case s.out <- n:
		default:
			log.Warn().Str("subscription", s.ID).Int64("entity_id", n.EntityID).Msg("dropping notification; subscriber buffer full")
		}
	}
	return nil
}
