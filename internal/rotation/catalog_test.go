package rotation

import (
	"reflect"
	"testing"

	"github.com/tbourn/go-issue-digest/internal/llm"
)

func labels(combos []Combination) []string {
	out := make([]string, 0, len(combos))
	for _, c := range combos {
		out = append(out, c.Provider+"/"+c.Credential+"/"+c.Model)
	}
	return out
}

func TestBuildCatalog_InterleavesProviders(t *testing.T) {
	got := BuildCatalog([]ProviderSpec{
		{Name: "OpenAI", Keys: []string{"k1", "k2"}, Models: []string{"m1", "m2"}},
		{Name: "openrouter", Keys: []string{"r1"}, Models: []string{"x1"}},
	})
	want := []string{
		"openai/k1/m1", "openrouter/r1/x1",
		"openai/k2/m1",
		"openai/k1/m2",
		"openai/k2/m2",
	}
	if !reflect.DeepEqual(labels(got), want) {
		t.Fatalf("catalog order mismatch:\n got=%v\nwant=%v", labels(got), want)
	}
}

func TestBuildCatalog_SkipsIncompleteProviders(t *testing.T) {
	got := BuildCatalog([]ProviderSpec{
		{Name: "nokeys", Models: []string{"m"}},
		{Name: "nomodels", Keys: []string{"k"}},
		{Name: "ok", Keys: []string{"k"}, Models: []string{"m"}, Endpoint: "http://x"},
	})
	if len(got) != 1 || got[0].Provider != "ok" || got[0].Endpoint != "http://x" {
		t.Fatalf("unexpected catalog: %+v", got)
	}
	if got[0].Label() != "ok/m" {
		t.Fatalf("label: %q", got[0].Label())
	}
}

func TestBuildCatalog_Empty(t *testing.T) {
	if got := BuildCatalog(nil); len(got) != 0 {
		t.Fatalf("expected empty catalog, got %v", got)
	}
}

func TestClients_PreservesOrder(t *testing.T) {
	combos := BuildCatalog([]ProviderSpec{
		{Name: "a", Keys: []string{"1"}, Models: []string{"m"}},
		{Name: "b", Keys: []string{"2"}, Models: []string{"m"}},
	})
	clients := Clients(combos, func(c Combination) llm.Client { return &fakeClient{label: c.Label()} })
	if len(clients) != 2 || clients[0].Label() != "a/m" || clients[1].Label() != "b/m" {
		t.Fatalf("unexpected clients order")
	}
}
