// Package services – Orchestrator
//
// Orchestrator runs the two-stage pipeline that turns an issue into a
// source-language artifact and its translation:
//
//	cache check (source) -> [miss] generate -> cache write -> notify (source)
//	  -> cache check (target) -> [miss] translate -> cache write -> notify (target)
//
// Generation failure ends the run with no notification. Translation failure
// degrades: the source text is delivered in place of the translation with a
// provider label that says so.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-issue-digest/internal/clock"
	"github.com/tbourn/go-issue-digest/internal/domain"
	"github.com/tbourn/go-issue-digest/internal/llm"
	"github.com/tbourn/go-issue-digest/internal/notify"
	"github.com/tbourn/go-issue-digest/internal/observability"
	"github.com/tbourn/go-issue-digest/internal/repo"
)

// Provider labels that are not provider/model identifiers.
const (
	ProviderCache  = "cache"
	ProviderSource = "source"

	translationUnavailable = " (translation unavailable)"
)

// MaxBatchSize caps the number of issues accepted by GenerateBatch.
const MaxBatchSize = 500

// SourceProvider returns the current snapshot of an issue.
type SourceProvider interface {
	GetByID(ctx context.Context, id int64) (domain.Issue, error)
}

// Completer is a text-producing backend: the rotation pool for generation
// and the fallback chain for translation.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (llm.Result, error)
}

// ArtifactRequest asks for one kind of artifact of one issue.
type ArtifactRequest struct {
	IssueID int64
	Kind    domain.ContentKind
	Mode    domain.LanguageMode
}

// Validate checks kind and mode.
func (r ArtifactRequest) Validate() error {
	if r.IssueID <= 0 {
		return ErrIssueNotFound
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	switch r.Mode {
	case domain.ModeSourceOnly, domain.ModeTargetOnly, domain.ModeBoth:
		return nil
	default:
		return ErrInvalidMode
	}
}

// Orchestrator wires the cache, the providers and the notifier together.
// Generator, Translator and Notifier are required; the rest have defaults.
type Orchestrator struct {
	Issues     SourceProvider
	Cache      *ArtifactCache
	Generator  Completer
	Translator Completer
	Notifier   notify.Notifier
	Clock      clock.Clock

	Source domain.Language
	Target domain.Language

	// MaxOutputTokens overrides the per-kind output budgets when positive.
	MaxOutputTokens int
	// Timeout bounds one background run; zero means no limit.
	Timeout time.Duration
	// Concurrency bounds background runs and batch fan-out (default 4).
	Concurrency int

	once    sync.Once
	slots   chan struct{}
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closing bool
}

func (o *Orchestrator) init() {
	o.once.Do(func() {
		n := o.Concurrency
		if n <= 0 {
			n = 4
		}
		o.slots = make(chan struct{}, n)
		if o.Clock == nil {
			o.Clock = clock.System{}
		}
	})
}

// Generate schedules req in the background and returns immediately. Results
// arrive only through the notifier. It fails fast for invalid requests, when
// every worker slot is taken, or after Close.
func (o *Orchestrator) Generate(req ArtifactRequest) error {
	o.init()
	if err := req.Validate(); err != nil {
		return err
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closing {
		return ErrShuttingDown
	}
	select {
	case o.slots <- struct{}{}:
	default:
		return ErrBusy
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() { <-o.slots }()

		ctx, cancel := o.runContext(context.Background())
		defer cancel()
		if err := o.Run(ctx, req); err != nil {
			logRunError(req, err)
		}
	}()
	return nil
}

// GenerateBatch schedules a RunBatch in the background. The whole batch is
// validated up front; an invalid id rejects it before anything runs.
func (o *Orchestrator) GenerateBatch(ids []int64, kind domain.ContentKind, mode domain.LanguageMode) error {
	o.init()
	if len(ids) == 0 {
		return ErrEmptyBatch
	}
	if len(ids) > MaxBatchSize {
		return ErrBatchTooLarge
	}
	for _, id := range ids {
		if err := (ArtifactRequest{IssueID: id, Kind: kind, Mode: mode}).Validate(); err != nil {
			return err
		}
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closing {
		return ErrShuttingDown
	}

	batch := append([]int64(nil), ids...)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		failed := o.RunBatch(context.Background(), batch, kind, mode)
		log.Info().
			Int("batch_size", len(batch)).
			Int("failed", len(failed)).
			Str("kind", kind.String()).
			Msg("artifact batch finished")
	}()
	return nil
}

// runContext applies the per-run timeout, if any.
func (o *Orchestrator) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout > 0 {
		return context.WithTimeout(parent, o.Timeout)
	}
	return context.WithCancel(parent)
}

// Close stops accepting background work and waits for in-flight runs until
// ctx is done.
func (o *Orchestrator) Close(ctx context.Context) error {
	o.mu.Lock()
	o.closing = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunBatch runs the same kind and mode for many issues with bounded
// concurrency. Each run keeps its own failure semantics; the returned map
// holds the error of every issue whose run did not complete.
func (o *Orchestrator) RunBatch(ctx context.Context, ids []int64, kind domain.ContentKind, mode domain.LanguageMode) map[int64]error {
	o.init()
	tr := otel.Tracer("services/Orchestrator")
	ctx, span := tr.Start(ctx, "RunBatch", trace.WithAttributes(
		attribute.Int("batch.size", len(ids)),
		attribute.String("kind", kind.String()),
	))
	defer span.End()

	var mu sync.Mutex
	failed := make(map[int64]error)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cap(o.slots))
	for _, id := range ids {
		g.Go(func() error {
			req := ArtifactRequest{IssueID: id, Kind: kind, Mode: mode}
			rctx, cancel := o.runContext(gctx)
			defer cancel()
			if err := o.Run(rctx, req); err != nil {
				logRunError(req, err)
				mu.Lock()
				failed[id] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	span.SetAttributes(attribute.Int("batch.failed", len(failed)))
	return failed
}

// Run executes the pipeline synchronously. A nil error means every
// notification the mode calls for was sent, possibly in degraded form.
func (o *Orchestrator) Run(ctx context.Context, req ArtifactRequest) error {
	o.init()
	tr := otel.Tracer("services/Orchestrator")
	ctx, span := tr.Start(ctx, "Run", trace.WithAttributes(
		attribute.Int64("issue.id", req.IssueID),
		attribute.String("kind", req.Kind.String()),
		attribute.String("mode", req.Mode.String()),
	))
	defer span.End()

	err := o.run(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (o *Orchestrator) run(ctx context.Context, req ArtifactRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	issue, err := o.Issues.GetByID(ctx, req.IssueID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrIssueNotFound
	}
	if err != nil {
		return fmt.Errorf("load issue: %w", err)
	}
	text := strings.TrimSpace(issue.SourceText(req.Kind))
	if text == "" {
		return ErrEmptySource
	}

	srcText, srcProvider, err := o.sourceArtifact(ctx, issue, req.Kind, text)
	if err != nil {
		return err
	}

	sameLanguage := o.Target.ID == o.Source.ID
	if req.Mode.WantsSource() || sameLanguage {
		o.notify(ctx, issue.ID, req.Kind, o.Source, srcText, srcProvider)
	}
	if !req.Mode.WantsTarget() || sameLanguage {
		return nil
	}

	cached, hit, err := o.Cache.Get(ctx, issue.ID, o.Target.ID, req.Kind, issue.UpdatedAt)
	if err != nil {
		log.Warn().Err(err).Int64("entity_id", issue.ID).Msg("target cache lookup failed; translating")
	}
	if hit {
		o.notify(ctx, issue.ID, req.Kind, o.Target, cached, ProviderCache)
		return nil
	}

	res, err := o.Translator.Complete(ctx, translationRequest(srcText, o.Source, o.Target, o.MaxOutputTokens))
	if err != nil {
		log.Warn().
			Err(err).
			Int64("entity_id", issue.ID).
			Str("kind", req.Kind.String()).
			Str("target", o.Target.Code()).
			Msg("translation failed; delivering source text")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if req.Mode == domain.ModeBoth {
			o.notify(ctx, issue.ID, req.Kind, o.Target, srcText, srcProvider+translationUnavailable)
		} else {
			o.notify(ctx, issue.ID, req.Kind, o.Source, srcText, srcProvider)
		}
		return nil
	}

	if err := o.Cache.Put(ctx, issue.ID, o.Target.ID, req.Kind, res.Text); err != nil {
		log.Warn().Err(err).Int64("entity_id", issue.ID).Msg("cache write failed")
	}
	o.notify(ctx, issue.ID, req.Kind, o.Target, res.Text, res.Provider)
	return nil
}

// sourceArtifact returns the source-language text for kind: the raw title
// for title translation, otherwise a cached or freshly generated summary.
func (o *Orchestrator) sourceArtifact(ctx context.Context, issue domain.Issue, kind domain.ContentKind, text string) (string, string, error) {
	if !kind.Generated() {
		return text, ProviderSource, nil
	}

	cached, hit, err := o.Cache.Get(ctx, issue.ID, o.Source.ID, kind, issue.UpdatedAt)
	if err != nil {
		log.Warn().Err(err).Int64("entity_id", issue.ID).Msg("source cache lookup failed; generating")
	}
	if hit {
		return cached, ProviderCache, nil
	}

	res, err := o.Generator.Complete(ctx, summaryRequest(kind, text, o.Source, o.MaxOutputTokens))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if err := o.Cache.Put(ctx, issue.ID, o.Source.ID, kind, res.Text); err != nil {
		log.Warn().Err(err).Int64("entity_id", issue.ID).Msg("cache write failed")
	}
	return res.Text, res.Provider, nil
}

func (o *Orchestrator) notify(ctx context.Context, entityID int64, kind domain.ContentKind, lang domain.Language, content, provider string) {
	n := notify.Notification{
		ID:       uuid.NewString(),
		EntityID: entityID,
		Kind:     kind.String(),
		Language: lang.Code(),
		Content:  content,
		Provider: provider,
		At:       o.Clock.Now(),
	}
	if err := o.Notifier.Notify(ctx, n); err != nil {
		log.Warn().Err(err).Int64("entity_id", entityID).Str("language", n.Language).Msg("notify failed")
		return
	}
	source := provider
	if provider != ProviderCache && provider != ProviderSource {
		source = "provider"
	}
	observability.ObserveNotification(n.Language, source)
}

func logRunError(req ArtifactRequest, err error) {
	ev := log.Warn()
	if errors.Is(err, ErrGenerationFailed) {
		ev = log.Error()
	}
	ev.Err(err).
		Int64("entity_id", req.IssueID).
		Str("kind", req.Kind.String()).
		Str("mode", req.Mode.String()).
		Msg("artifact generation aborted")
}
