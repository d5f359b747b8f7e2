package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type recordingSink struct {
	mu  sync.Mutex
	got []Notification
	err error
}

func (r *recordingSink) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func TestFanout_DeliversToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingSink{err: boom}
	b := &recordingSink{}
	f := Fanout{a, nil, b}

	err := f.Notify(context.Background(), Notification{EntityID: 1, Content: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to contain boom, got %v", err)
	}
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Fatalf("expected delivery to both sinks, got a=%d b=%d", len(a.got), len(b.got))
	}
}

func TestFunc_AndDiscard(t *testing.T) {
	called := false
	var n Notifier = Func(func(context.Context, Notification) error { called = true; return nil })
	_ = n.Notify(context.Background(), Notification{})
	if !called {
		t.Fatalf("Func not invoked")
	}
	if err := Discard.Notify(context.Background(), Notification{}); err != nil {
		t.Fatalf("Discard returned %v", err)
	}
}

func TestHub_RoutesByEntity(t *testing.T) {
	h := NewHub(4)
	s1 := h.Subscribe(1)
	s2 := h.Subscribe(2)
	defer s1.Close()
	defer s2.Close()

	_ = h.Notify(context.Background(), Notification{EntityID: 1, Content: "for one"})

	select {
	case n := <-s1.C:
		if n.Content != "for one" {
			t.Fatalf("unexpected content %q", n.Content)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber 1 did not receive")
	}
	select {
	case n := <-s2.C:
		t.Fatalf("subscriber 2 should not receive, got %+v", n)
	default:
	}
}

func TestHub_DropsWhenFull(t *testing.T) {
	h := NewHub(1)
	s := h.Subscribe(1)
	defer s.Close()

	for i := 0; i < 3; i++ {
		if err := h.Notify(context.Background(), Notification{EntityID: 1}); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}
	if got := len(s.C); got != 1 {
		t.Fatalf("expected 1 buffered notification, got %d", got)
	}
}

func TestHub_CloseUnsubscribes(t *testing.T) {
	h := NewHub(0)
	s := h.Subscribe(9)
	if h.Subscribers(9) != 1 {
		t.Fatalf("expected 1 subscriber")
	}
	s.Close()
	s.Close()
	if h.Subscribers(9) != 0 {
		t.Fatalf("expected 0 subscribers after close")
	}
	if _, ok := <-s.C; ok {
		t.Fatalf("channel should be closed")
	}
	// Notifying after close must not panic.
	_ = h.Notify(context.Background(), Notification{EntityID: 9})
}

func TestHub_CloseDrainsThenEnds(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe(1)
	b := h.Subscribe(2)
	_ = h.Notify(context.Background(), Notification{EntityID: 1, Content: "queued"})

	h.Close()
	if n, ok := <-a.C; !ok || n.Content != "queued" {
		t.Fatalf("expected queued notification before close, got %+v ok=%v", n, ok)
	}
	if _, ok := <-a.C; ok {
		t.Fatalf("channel a should be closed")
	}
	if _, ok := <-b.C; ok {
		t.Fatalf("channel b should be closed")
	}
	a.Close()
	(&Subscription{}).Close()
	if h.Subscribers(1) != 0 || h.Subscribers(2) != 0 {
		t.Fatalf("expected no subscribers after hub close")
	}
}

func TestHub_SubscribeAfterCloseEndsImmediately(t *testing.T) {
	h := NewHub(4)
	h.Close()

	s := h.Subscribe(1)
	select {
	case _, ok := <-s.C:
		if ok {
			t.Fatalf("expected closed channel, got a notification")
		}
	case <-time.After(time.Second):
		t.Fatalf("subscription after hub close should end at once")
	}
	if h.Subscribers(1) != 0 {
		t.Fatalf("subscribers = %d, want 0", h.Subscribers(1))
	}
	if err := h.Notify(context.Background(), Notification{EntityID: 1}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	s.Close()
	s.Close()
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message any) *goredis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	cmd := goredis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisNotifier_PublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	r := &RedisNotifier{Client: pub}

	n := Notification{ID: "n1", EntityID: 3, Kind: "short_summary", Language: "cs", Content: "Ahoj", Provider: "cache"}
	if err := r.Notify(context.Background(), n); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if pub.channel != DefaultChannel {
		t.Fatalf("channel: %q", pub.channel)
	}
	got, err := decode(string(pub.payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Content != "Ahoj" || got.Language != "cs" || got.EntityID != 3 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestRedisNotifier_Errors(t *testing.T) {
	var nilNotifier *RedisNotifier
	if err := nilNotifier.Notify(context.Background(), Notification{}); err == nil {
		t.Fatalf("expected error from nil notifier")
	}

	boom := errors.New("connection refused")
	r := &RedisNotifier{Client: &fakePublisher{err: boom}, Channel: "custom"}
	if err := r.Notify(context.Background(), Notification{EntityID: 1}); !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestDecode_RejectsBadPayloads(t *testing.T) {
	if _, err := decode("{not json"); err == nil {
		t.Fatalf("expected json error")
	}
	raw, _ := json.Marshal(Notification{Content: "x"})
	if _, err := decode(string(raw)); err == nil {
		t.Fatalf("expected error for missing entity id")
	}
}

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
