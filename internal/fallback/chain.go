// Package fallback implements the translation cascade: an ordered list of
// provider groups, each holding one client per credential. The chain picks a
// starting group by its own cursor, tries exactly one credential of that
// group, and then every credential of each following group before giving up.
package fallback

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-issue-digest/internal/llm"
	"github.com/tbourn/go-issue-digest/internal/rotation"
)

// Scope is the label used in logs, metrics and exhaustion errors.
const Scope = "translation"

// Group is one provider with its credentials in rotation order.
type Group struct {
	name    string
	clients []llm.Client
	cursor  rotation.Cursor
}

// NewGroup returns a group over clients, one per credential.
func NewGroup(name string, clients ...llm.Client) *Group {
	return &Group{name: name, clients: append([]llm.Client(nil), clients...)}
}

// Name returns the provider name of the group.
func (g *Group) Name() string { return g.name }

// Size returns the number of credentials in the group.
func (g *Group) Size() int { return len(g.clients) }

// attemptLabel names client as "group(…last4)" when it exposes a masked key.
func (g *Group) attemptLabel(client llm.Client) string {
	if k, ok := client.(llm.Keyed); ok {
		return g.name + "(" + k.KeyHint() + ")"
	}
	return client.Label()
}

// Chain cascades through groups. Groups without credentials are dropped at
// construction.
type Chain struct {
	groups []*Group
	cursor rotation.Cursor
}

// NewChain builds a chain in the given priority order.
func NewChain(groups ...*Group) *Chain {
	kept := make([]*Group, 0, len(groups))
	for _, g := range groups {
		if g != nil && len(g.clients) > 0 {
			kept = append(kept, g)
		}
	}
	return &Chain{groups: kept}
}

// Size returns the number of usable groups.
func (c *Chain) Size() int { return len(c.groups) }

// Complete runs the cascade sequentially and returns the first success.
// Cancellation of ctx stops it immediately with the context error.
func (c *Chain) Complete(ctx context.Context, req llm.Request) (llm.Result, error) {
	n := len(c.groups)
	if n == 0 {
		return llm.Result{}, rotation.ErrNoProviders
	}

	start := c.cursor.Claim(n)
	var attempted []string
	var lastErr error
	for gi := 0; gi < n; gi++ {
		g := c.groups[(start+gi)%n]
		size := len(g.clients)
		first := g.cursor.Claim(size)

		tries := size
		if gi == 0 {
			tries = 1
		}
		for k := 0; k < tries; k++ {
			if err := ctx.Err(); err != nil {
				return llm.Result{}, err
			}
			client := g.clients[(first+k)%size]
			attempted = append(attempted, g.attemptLabel(client))

			res, err := rotation.Attempt(ctx, Scope, client, req)
			if err == nil {
				return res, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return llm.Result{}, ctxErr
			}
			lastErr = err
		}
		log.Debug().Str("group", g.name).Msg("translation group exhausted, falling back")
	}
	return llm.Result{}, &rotation.ExhaustedError{Scope: Scope, Attempted: attempted, Last: lastErr}
}
