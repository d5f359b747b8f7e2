package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tbourn/go-issue-digest/internal/config"
	"github.com/tbourn/go-issue-digest/internal/llm"
)

func TestBuildGenerator_OnlySummaryOpenAIProviders(t *testing.T) {
	providers := []config.ProviderConfig{
		{Name: "openai", Kind: config.KindOpenAI, Keys: []string{"k1", "k2"}, Models: []string{"m1", "m2"}, Roles: []string{config.RoleSummary, config.RoleTranslation}},
		{Name: "translator-only", Kind: config.KindOpenAI, Keys: []string{"k"}, Models: []string{"m"}, Roles: []string{config.RoleTranslation}},
		{Name: "deepl", Kind: config.KindDeepL, Keys: []string{"d1"}, Roles: []string{config.RoleSummary, config.RoleTranslation}},
	}
	pool := buildGenerator(providers, time.Second)
	if pool.Size() != 4 {
		t.Fatalf("pool size = %d, want 4", pool.Size())
	}
	if pool.Scope() != "summary" {
		t.Fatalf("scope = %q", pool.Scope())
	}
}

func TestBuildTranslator_GroupsPerProvider(t *testing.T) {
	providers := []config.ProviderConfig{
		{Name: "openai", Kind: config.KindOpenAI, Keys: []string{"k1"}, Models: []string{"m1"}, Roles: []string{config.RoleSummary, config.RoleTranslation}},
		{Name: "summary-only", Kind: config.KindOpenAI, Keys: []string{"k"}, Models: []string{"m"}, Roles: []string{config.RoleSummary}},
		{Name: "no-models", Kind: config.KindOpenAI, Keys: []string{"k"}, Roles: []string{config.RoleTranslation}},
		{Name: "deepl", Kind: config.KindDeepL, Keys: []string{"d1", "d2"}, Roles: []string{config.RoleTranslation}},
	}
	if n := buildTranslator(providers, time.Second).Size(); n != 2 {
		t.Fatalf("chain size = %d, want 2", n)
	}
	if n := buildTranslator(nil, time.Second).Size(); n != 0 {
		t.Fatalf("empty chain size = %d", n)
	}
}

func TestBuildGenerator_CallsConfiguredEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Model != "tiny" || r.Header.Get("Authorization") != "Bearer k" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"` + body.Model + `","choices":[{"message":{"role":"assistant","content":"Done."}}]}`))
	}))
	defer srv.Close()

	pool := buildGenerator([]config.ProviderConfig{
		{Name: "local", Kind: config.KindOpenAI, Endpoint: srv.URL, Keys: []string{"k"}, Models: []string{"tiny"}, Roles: []string{config.RoleSummary}},
	}, 2*time.Second)

	res, err := pool.Complete(context.Background(), llm.Request{Instructions: "Summarize.", Text: "Crash on startup."})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Text != "Done." || res.Provider != "local/tiny" {
		t.Fatalf("result = %+v", res)
	}
}
