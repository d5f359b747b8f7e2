package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-issue-digest/internal/domain"
	"github.com/tbourn/go-issue-digest/internal/notify"
	"github.com/tbourn/go-issue-digest/internal/services"
)

// ---------- fakes ----------

type fakeArtifacts struct {
	mu      sync.Mutex
	reqs    []services.ArtifactRequest
	batches [][]int64
	kind    domain.ContentKind
	mode    domain.LanguageMode
	err     error
}

func (f *fakeArtifacts) Generate(req services.ArtifactRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reqs = append(f.reqs, req)
	return nil
}

func (f *fakeArtifacts) GenerateBatch(ids []int64, kind domain.ContentKind, mode domain.LanguageMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, ids)
	f.kind, f.mode = kind, mode
	return nil
}

type fakeCache struct {
	deleted  int64
	err      error
	stats    services.CacheStats
	lastID   int64
	lastKind domain.ContentKind
	calls    []string
}

func (f *fakeCache) InvalidateEntity(_ context.Context, id int64) (int64, error) {
	f.calls = append(f.calls, "entity")
	f.lastID = id
	return f.deleted, f.err
}

func (f *fakeCache) InvalidateEntityKind(_ context.Context, id int64, kind domain.ContentKind) (int64, error) {
	f.calls = append(f.calls, "entity_kind")
	f.lastID, f.lastKind = id, kind
	return f.deleted, f.err
}

func (f *fakeCache) InvalidateAll(context.Context) (int64, error) {
	f.calls = append(f.calls, "all")
	return f.deleted, f.err
}

func (f *fakeCache) Stats(_ context.Context, id int64) (services.CacheStats, error) {
	f.lastID = id
	st := f.stats
	st.EntityID = id
	return st, f.err
}

// ---------- router helpers ----------

var testLangs = Languages{Source: domain.English, Target: domain.Czech}

func newRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/issues/:id/artifacts", h.GenerateArtifact)
	r.POST("/artifacts/batch", h.GenerateBatch)
	r.GET("/issues/:id/events", h.StreamEvents)
	r.GET("/admin/cache/issues/:id", h.CacheStats)
	r.DELETE("/admin/cache/issues/:id", h.InvalidateIssue)
	r.DELETE("/admin/cache/issues/:id/kinds/:kind", h.InvalidateIssueKind)
	r.DELETE("/admin/cache", h.InvalidateAll)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return e.Code
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

var _ Subscriber = (*notify.Hub)(nil)
