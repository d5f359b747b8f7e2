// Package notify delivers finished artifacts to whoever is waiting for them:
// in-process SSE subscribers through Hub, other instances through
// RedisNotifier, or several sinks at once through Fanout.
//
// Delivery is best-effort. Notifiers never block the orchestrator for long
// and never report a slow consumer as an error.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Notification is one artifact ready for display.
type Notification struct {
	ID       string    `json:"id"`
	EntityID int64     `json:"entity_id"`
	Kind     string    `json:"kind"`
	Language string    `json:"language"`
	Content  string    `json:"content"`
	Provider string    `json:"provider"`
	At       time.Time `json:"at"`
}

// Notifier is the delivery sink used by the orchestrator.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notification) error

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// Fanout sends each notification to every sink. A failing sink is logged
// and does not prevent delivery to the rest; the joined error is returned
// for callers that want it.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.Notify(ctx, n); err != nil {
			log.Warn().
				Err(err).
				Int64("entity_id", n.EntityID).
				Str("language", n.Language).
				Msg("notification sink failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every notification.
var Discard Notifier = Func(func(context.Context, Notification) error { return nil })
