package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "issue-digest:artifacts"

// Publisher is the subset of the go-redis client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
}

// RedisNotifier publishes notifications as JSON on a Redis channel so that
// other instances can forward them to their own subscribers.
type RedisNotifier struct {
	Client  Publisher
	Channel string
}

// NewRedisClient dials addr and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Notify implements Notifier.
func (r *RedisNotifier) Notify(ctx context.Context, n Notification) error {
	if r == nil || r.Client == nil {
		return errors.New("redis notifier not initialized")
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	ch := r.Channel
	if ch == "" {
		ch = DefaultChannel
	}
	return r.Client.Publish(ctx, ch, raw).Err()
}

// Forward subscribes to channel and hands every decoded notification to
// sink until ctx is done. It returns once the subscription is confirmed.
func Forward(ctx context.Context, rdb *goredis.Client, channel string, sink Notifier) error {
	if rdb == nil || sink == nil {
		return errors.New("redis forwarder requires a client and a sink")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	sub := rdb.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				n, err := decode(m.Payload)
				if err != nil {
					log.Warn().Err(err).Str("channel", channel).Msg("bad notification payload")
					continue
				}
				_ = sink.Notify(ctx, n)
			}
		}
	}()
	return nil
}

func decode(payload string) (Notification, error) {
	var n Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return Notification{}, err
	}
	if n.EntityID == 0 {
		return Notification{}, errors.New("notification without entity id")
	}
	return n, nil
}
