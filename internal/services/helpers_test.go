package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-issue-digest/internal/clock"
	"github.com/tbourn/go-issue-digest/internal/domain"
	"github.com/tbourn/go-issue-digest/internal/llm"
	"github.com/tbourn/go-issue-digest/internal/notify"
	"github.com/tbourn/go-issue-digest/internal/repo"
)

var (
	t0 = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
	t2 = t1.Add(time.Hour)

	errProvider = errors.New("all providers down")
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection serializes concurrent runs; shared-cache SQLite reports
	// table locks instead of waiting.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&domain.CachedArtifact{}, &domain.Issue{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// ----- Fakes -----

type fakeIssues map[int64]domain.Issue

func (f fakeIssues) GetByID(_ context.Context, id int64) (domain.Issue, error) {
	is, ok := f[id]
	if !ok {
		return domain.Issue{}, repo.ErrNotFound
	}
	return is, nil
}

// fakeCompleter answers every call with text/provider, or err when set.
type fakeCompleter struct {
	text     string
	provider string
	err      error

	mu       sync.Mutex
	calls    int
	requests []llm.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.Request) (llm.Result, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return llm.Result{}, err
	}
	if f.err != nil {
		return llm.Result{}, f.err
	}
	return llm.Result{Text: f.text, Provider: f.provider}, nil
}

func (f *fakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return nil
}

func (r *recordingNotifier) All() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.got...)
}

// fixture is an orchestrator over an in-memory cache with scripted providers.
type fixture struct {
	db    *gorm.DB
	clock *clock.Manual
	cache *ArtifactCache
	gen   *fakeCompleter
	tr    *fakeCompleter
	notes *recordingNotifier
	orch  *Orchestrator
}

func newFixture(t *testing.T, issues fakeIssues) *fixture {
	t.Helper()
	db := newTestDB(t)
	clk := clock.NewManual(t2)
	f := &fixture{
		db:    db,
		clock: clk,
		cache: &ArtifactCache{DB: db, Clock: clk},
		gen:   &fakeCompleter{text: "Summary X", provider: "providerA"},
		tr:    &fakeCompleter{text: "Shrnutí X", provider: "providerB"},
		notes: &recordingNotifier{},
	}
	f.orch = &Orchestrator{
		Issues:     issues,
		Cache:      f.cache,
		Generator:  f.gen,
		Translator: f.tr,
		Notifier:   f.notes,
		Clock:      clk,
		Source:     domain.English,
		Target:     domain.Czech,
	}
	return f
}

func (f *fixture) putAt(t *testing.T, at time.Time, entity int64, lang domain.Language, kind domain.ContentKind, content string) {
	t.Helper()
	prev := f.clock.Now()
	f.clock.Set(at)
	defer f.clock.Set(prev)
	if err := f.cache.Put(context.Background(), entity, lang.ID, kind, content); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
}

type want struct {
	lang, content, provider string
}

func assertNotes(t *testing.T, got []notify.Notification, exp ...want) {
	t.Helper()
	if len(got) != len(exp) {
		t.Fatalf("expected %d notifications, got %d: %+v", len(exp), len(got), got)
	}
	for i, w := range exp {
		g := got[i]
		if g.Language != w.lang || g.Content != w.content || g.Provider != w.provider {
			t.Fatalf("notification %d: got (%s, %q, %q), want (%s, %q, %q)",
				i, g.Language, g.Content, g.Provider, w.lang, w.content, w.provider)
		}
		if g.ID == "" {
			t.Fatalf("notification %d has no id", i)
		}
	}
}
