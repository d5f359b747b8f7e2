package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const validProvidersYAML = `
version: 1
providers:
  - name: deepl
    kind: deepl
    keys: ["${TEST_DEEPL_KEY}", "dl-2"]
    roles: [translation]
  - name: openrouter
    kind: openai
    endpoint: https://openrouter.ai/api/v1
    keys: [or-1]
    models: [deepseek/deepseek-r1, qwen/qwen3-32b]
    roles: [summary, translation]
`

func TestParseProviders_Valid(t *testing.T) {
	t.Setenv("TEST_DEEPL_KEY", "dl-1")

	ps, err := ParseProviders([]byte(validProvidersYAML))
	if err != nil {
		t.Fatalf("ParseProviders: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(ps))
	}
	if !reflect.DeepEqual(ps[0].Keys, []string{"dl-1", "dl-2"}) {
		t.Fatalf("env expansion failed: %#v", ps[0].Keys)
	}
	if ps[1].Endpoint != "https://openrouter.ai/api/v1" || len(ps[1].Models) != 2 || !ps[1].HasRole(RoleSummary) {
		t.Fatalf("openrouter provider unexpected: %+v", ps[1])
	}
}

func TestParseProviders_SchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"empty", "  "},
		{"not yaml", "version: [1"},
		{"wrong version", "version: 2\nproviders:\n  - {name: a, kind: deepl, keys: [k], roles: [translation]}\n"},
		{"no providers", "version: 1\nproviders: []\n"},
		{"unknown kind", "version: 1\nproviders:\n  - {name: a, kind: gemini, keys: [k], roles: [summary]}\n"},
		{"openai without models", "version: 1\nproviders:\n  - {name: a, kind: openai, keys: [k], roles: [summary]}\n"},
		{"deepl summarizing", "version: 1\nproviders:\n  - {name: a, kind: deepl, keys: [k], roles: [summary]}\n"},
		{"bad name", "version: 1\nproviders:\n  - {name: 'Bad Name', kind: deepl, keys: [k], roles: [translation]}\n"},
		{"extra field", "version: 1\nproviders:\n  - {name: a, kind: deepl, keys: [k], roles: [translation], region: eu}\n"},
		{"duplicate name", "version: 1\nproviders:\n  - {name: a, kind: deepl, keys: [k], roles: [translation]}\n  - {name: a, kind: deepl, keys: [j], roles: [translation]}\n"},
		{"keys empty after expansion", "version: 1\nproviders:\n  - {name: a, kind: deepl, keys: ['${TEST_UNSET_KEY}'], roles: [translation]}\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseProviders([]byte(tc.yaml)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestLoadProviders_FromFile(t *testing.T) {
	t.Setenv("TEST_DEEPL_KEY", "dl-1")
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte(validProvidersYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ps, err := LoadProviders(path)
	if err != nil {
		t.Fatalf("LoadProviders: %v", err)
	}
	if ps[0].Name != "deepl" || ps[1].Name != "openrouter" {
		t.Fatalf("order not preserved: %+v", ps)
	}

	// Load picks the file over env lists.
	t.Setenv("PROVIDERS_FILE", path)
	t.Setenv("OPENAI_API_KEYS", "sk-ignored")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Generation.Providers) != 2 || cfg.Generation.Providers[0].Name != "deepl" {
		t.Fatalf("providers file not applied: %+v", cfg.Generation.Providers)
	}
}

func TestLoadProviders_MissingFile(t *testing.T) {
	_, err := LoadProviders(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read providers file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestProvidersFromEnv_Order(t *testing.T) {
	t.Setenv("OPENAI_API_KEYS", "")
	t.Setenv("OPENROUTER_API_KEYS", "or-1")
	t.Setenv("OPENROUTER_MODELS", "")
	t.Setenv("DEEPL_API_KEYS", "dl-1,dl-2")

	ps := providersFromEnv()
	if len(ps) != 2 || ps[0].Name != "openrouter" || ps[1].Name != "deepl" {
		t.Fatalf("unexpected providers: %+v", ps)
	}
	if len(ps[0].Models) != 1 {
		t.Fatalf("expected default openrouter model, got %v", ps[0].Models)
	}
}
