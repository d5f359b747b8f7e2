// Package rotation spreads generation load across every configured
// (provider, credential, model) combination. A Pool hands each call a start
// index from a shared atomic cursor and walks the combinations from there,
// wrapping around, until one succeeds.
package rotation

import (
	"strings"

	"github.com/tbourn/go-issue-digest/internal/llm"
)

// ProviderSpec is the configured credentials and models of one provider.
type ProviderSpec struct {
	Name     string
	Endpoint string
	Keys     []string
	Models   []string
}

// Combination is one (provider, credential, model) triple eligible for an
// attempt.
type Combination struct {
	Provider   string
	Endpoint   string
	Credential string
	Model      string
}

// Label identifies the combination without exposing the credential.
func (c Combination) Label() string { return c.Provider + "/" + c.Model }

// BuildCatalog enumerates every combination so that consecutive entries
// alternate providers before repeating one: model index is the outer loop,
// credential index the inner one, and at each (model, credential) position
// every provider that has both contributes one entry, in the order given.
//
// Providers with no keys or no models contribute nothing. An empty result
// means no provider is usable.
func BuildCatalog(specs []ProviderSpec) []Combination {
	maxModels, maxKeys := 0, 0
	for _, s := range specs {
		maxModels = max(maxModels, len(s.Models))
		maxKeys = max(maxKeys, len(s.Keys))
	}

	out := make([]Combination, 0, maxModels*maxKeys*len(specs))
	for mi := 0; mi < maxModels; mi++ {
		for ki := 0; ki < maxKeys; ki++ {
			for _, s := range specs {
				if mi >= len(s.Models) || ki >= len(s.Keys) {
					continue
				}
				out = append(out, Combination{
					Provider:   strings.ToLower(strings.TrimSpace(s.Name)),
					Endpoint:   s.Endpoint,
					Credential: s.Keys[ki],
					Model:      s.Models[mi],
				})
			}
		}
	}
	return out
}

// ClientFactory binds a combination to a provider client.
type ClientFactory func(Combination) llm.Client

// Clients builds one client per combination, preserving catalog order.
func Clients(combos []Combination, factory ClientFactory) []llm.Client {
	out := make([]llm.Client, 0, len(combos))
	for _, c := range combos {
		out = append(out, factory(c))
	}
	return out
}
