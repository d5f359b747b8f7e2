package rotation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-issue-digest/internal/llm"
	"github.com/tbourn/go-issue-digest/internal/observability"
)

// Pool rotates over a fixed list of clients. The list is immutable after
// construction; the cursor is the only mutable state and may be shared with
// other pools via WithCursor.
type Pool struct {
	scope   string
	clients []llm.Client
	cursor  *Cursor
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithCursor makes the pool claim start positions from a shared cursor.
func WithCursor(c *Cursor) PoolOption {
	return func(p *Pool) {
		if c != nil {
			p.cursor = c
		}
	}
}

// NewPool builds a pool over clients. scope labels logs, metrics and
// exhaustion errors.
func NewPool(scope string, clients []llm.Client, opts ...PoolOption) *Pool {
	p := &Pool{
		scope:   scope,
		clients: append([]llm.Client(nil), clients...),
		cursor:  &Cursor{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Size returns the number of combinations in the pool.
func (p *Pool) Size() int { return len(p.clients) }

// Scope returns the pool's scope label.
func (p *Pool) Scope() string { return p.scope }

// Complete tries the clients starting at the next claimed cursor position,
// in cursor order with wrap-around, and returns the first usable answer.
//
// Provider output is passed through llm.StripThinking; a truncated reasoning
// block counts as a failed attempt. Cancellation of ctx stops the rotation
// and returns the context error.
func (p *Pool) Complete(ctx context.Context, req llm.Request) (llm.Result, error) {
	size := len(p.clients)
	if size == 0 {
		return llm.Result{}, ErrNoProviders
	}

	start := p.cursor.Claim(size)
	attempted := make([]string, 0, size)
	var lastErr error
	for off := 0; off < size; off++ {
		if err := ctx.Err(); err != nil {
			return llm.Result{}, err
		}
		c := p.clients[(start+off)%size]
		attempted = append(attempted, c.Label())

		res, err := attempt(ctx, p.scope, c, req)
		if err == nil {
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return llm.Result{}, ctxErr
		}
		lastErr = err
	}
	return llm.Result{}, &ExhaustedError{Scope: p.scope, Attempted: attempted, Last: lastErr}
}

// attempt performs one provider call, strips reasoning scaffolding, and
// records the outcome in logs and metrics.
func attempt(ctx context.Context, scope string, c llm.Client, req llm.Request) (llm.Result, error) {
	started := time.Now()
	res, err := c.Complete(ctx, req)
	if err == nil {
		res.Text, err = llm.StripThinking(res.Text)
	}
	if err != nil {
		observability.ObserveProviderAttempt(scope, c.Label(), err, time.Since(started))
		log.Warn().
			Err(err).
			Str("scope", scope).
			Str("provider", c.Label()).
			Dur("latency", time.Since(started)).
			Msg("provider attempt failed")
		return llm.Result{}, err
	}
	if res.Provider == "" {
		res.Provider = c.Label()
	}
	observability.ObserveProviderAttempt(scope, c.Label(), nil, time.Since(started))
	log.Debug().
		Str("scope", scope).
		Str("provider", c.Label()).
		Dur("latency", time.Since(started)).
		Msg("provider attempt succeeded")
	return res, nil
}

// Attempt exposes a single logged and measured provider call for callers
// that implement their own ordering, such as the fallback chain.
func Attempt(ctx context.Context, scope string, c llm.Client, req llm.Request) (llm.Result, error) {
	return attempt(ctx, scope, c, req)
}
