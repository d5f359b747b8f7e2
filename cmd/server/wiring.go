package main

import (
	"time"

	"github.com/tbourn/go-issue-digest/internal/config"
	"github.com/tbourn/go-issue-digest/internal/fallback"
	"github.com/tbourn/go-issue-digest/internal/llm"
	"github.com/tbourn/go-issue-digest/internal/rotation"
)

// buildGenerator returns the rotation pool over every summary-capable
// OpenAI-compatible combination, in catalog order.
func buildGenerator(providers []config.ProviderConfig, timeout time.Duration) *rotation.Pool {
	var specs []rotation.ProviderSpec
	for _, p := range providers {
		if p.Kind != config.KindOpenAI || !p.HasRole(config.RoleSummary) {
			continue
		}
		specs = append(specs, rotation.ProviderSpec{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Keys:     p.Keys,
			Models:   p.Models,
		})
	}
	combos := rotation.BuildCatalog(specs)
	clients := rotation.Clients(combos, func(c rotation.Combination) llm.Client {
		return llm.NewOpenAIClient(c.Provider, c.Endpoint, c.Credential, c.Model, timeout)
	})
	return rotation.NewPool("summary", clients)
}

// buildTranslator returns the fallback chain with one group per
// translation-capable provider, in configured priority order. OpenAI-style
// groups translate with the provider's first model.
func buildTranslator(providers []config.ProviderConfig, timeout time.Duration) *fallback.Chain {
	var groups []*fallback.Group
	for _, p := range providers {
		if !p.HasRole(config.RoleTranslation) {
			continue
		}
		var clients []llm.Client
		switch p.Kind {
		case config.KindDeepL:
			for _, k := range p.Keys {
				clients = append(clients, llm.NewDeepLClient(p.Name, p.Endpoint, k, timeout))
			}
		case config.KindOpenAI:
			if len(p.Models) == 0 {
				continue
			}
			for _, k := range p.Keys {
				clients = append(clients, llm.NewOpenAIClient(p.Name, p.Endpoint, k, p.Models[0], timeout))
			}
		}
		groups = append(groups, fallback.NewGroup(p.Name, clients...))
	}
	return fallback.NewChain(groups...)
}
