// Package services – ArtifactCache
//
// ArtifactCache is a freshness-validated store for generated artifacts keyed
// by (entity, language, kind). An entry is valid only while it was written no
// earlier than the entity's last modification; there is no TTL. Stale entries
// are deleted on read.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-issue-digest/internal/clock"
	"github.com/tbourn/go-issue-digest/internal/domain"
	"github.com/tbourn/go-issue-digest/internal/observability"
	"github.com/tbourn/go-issue-digest/internal/repo"
)

// ArtifactCache reads and writes cached artifacts.
type ArtifactCache struct {
	DB *gorm.DB
	// Clock stamps writes; clock.System when nil.
	Clock clock.Clock
}

// CacheStats summarizes what is cached for one entity.
type CacheStats struct {
	EntityID      int64            `json:"entity_id"`
	Count         int64            `json:"count"`
	ByKind        map[string]int64 `json:"by_kind,omitempty"`
	LastWrittenAt *time.Time       `json:"last_written_at,omitempty"`
}

func (c *ArtifactCache) now() time.Time {
	if c.Clock == nil {
		return clock.System{}.Now()
	}
	return c.Clock.Now()
}

func cacheSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("services/ArtifactCache").Start(ctx, name, trace.WithAttributes(attrs...))
}

// Get returns the cached content for the key when it is still fresh with
// respect to lastModified. A stale entry is deleted and reported as a miss.
func (c *ArtifactCache) Get(ctx context.Context, entityID int64, languageID int, kind domain.ContentKind, lastModified time.Time) (string, bool, error) {
	ctx, span := cacheSpan(ctx, "Get",
		attribute.Int64("entity.id", entityID),
		attribute.Int("language.id", languageID),
		attribute.String("kind", kind.String()),
	)
	defer span.End()

	a, err := repo.GetArtifact(ctx, c.DB, entityID, languageID, kind)
	if errors.Is(err, repo.ErrNotFound) {
		observability.ObserveCacheLookup(kind.String(), observability.CacheMiss)
		return "", false, nil
	}
	if err != nil {
		span.RecordError(err)
		return "", false, err
	}

	if !a.FreshFor(lastModified) {
		observability.ObserveCacheLookup(kind.String(), observability.CacheStale)
		log.Debug().
			Int64("entity_id", entityID).
			Int("language_id", languageID).
			Str("kind", kind.String()).
			Time("written_at", a.WrittenAt).
			Time("last_modified", lastModified).
			Msg("stale artifact evicted")
		// Delete only the row that was read so a concurrent Put survives.
		if _, err := repo.DeleteArtifactByID(ctx, c.DB, a.ID); err != nil {
			span.RecordError(err)
			return "", false, err
		}
		return "", false, nil
	}

	observability.ObserveCacheLookup(kind.String(), observability.CacheHit)
	return a.Content, true, nil
}

// Put stores content under the key with WrittenAt = now, replacing any
// previous entry. Losing an insert race to a concurrent writer is not an
// error; the other writer's row stays.
func (c *ArtifactCache) Put(ctx context.Context, entityID int64, languageID int, kind domain.ContentKind, content string) error {
	ctx, span := cacheSpan(ctx, "Put",
		attribute.Int64("entity.id", entityID),
		attribute.Int("language.id", languageID),
		attribute.String("kind", kind.String()),
	)
	defer span.End()

	writtenAt := c.now()
	err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.DeleteArtifact(ctx, tx, entityID, languageID, kind); err != nil {
			return err
		}
		_, err := repo.CreateArtifact(ctx, tx, entityID, languageID, kind, content, writtenAt)
		return err
	})
	if errors.Is(err, repo.ErrDuplicate) {
		log.Debug().
			Int64("entity_id", entityID).
			Int("language_id", languageID).
			Str("kind", kind.String()).
			Msg("concurrent artifact write; keeping existing row")
		return nil
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// InvalidateEntity deletes every artifact of an entity.
func (c *ArtifactCache) InvalidateEntity(ctx context.Context, entityID int64) (int64, error) {
	ctx, span := cacheSpan(ctx, "InvalidateEntity", attribute.Int64("entity.id", entityID))
	defer span.End()
	return repo.DeleteArtifactsByEntity(ctx, c.DB, entityID)
}

// InvalidateEntityKind deletes one kind of an entity in every language.
func (c *ArtifactCache) InvalidateEntityKind(ctx context.Context, entityID int64, kind domain.ContentKind) (int64, error) {
	ctx, span := cacheSpan(ctx, "InvalidateEntityKind",
		attribute.Int64("entity.id", entityID),
		attribute.String("kind", kind.String()),
	)
	defer span.End()
	if !kind.Valid() {
		return 0, ErrInvalidKind
	}
	return repo.DeleteArtifactsByEntityKind(ctx, c.DB, entityID, kind)
}

// InvalidateAll empties the cache.
func (c *ArtifactCache) InvalidateAll(ctx context.Context) (int64, error) {
	ctx, span := cacheSpan(ctx, "InvalidateAll")
	defer span.End()
	return repo.DeleteAllArtifacts(ctx, c.DB)
}

// Stats reports the number of cached artifacts of an entity and the latest
// write time.
func (c *ArtifactCache) Stats(ctx context.Context, entityID int64) (CacheStats, error) {
	ctx, span := cacheSpan(ctx, "Stats", attribute.Int64("entity.id", entityID))
	defer span.End()
	st, err := repo.ArtifactStats(ctx, c.DB, entityID)
	if err != nil {
		return CacheStats{}, err
	}
	out := CacheStats{EntityID: entityID, Count: st.Count, LastWrittenAt: st.LastWrittenAt}
	if len(st.ByKind) > 0 {
		out.ByKind = make(map[string]int64, len(st.ByKind))
		for k, n := range st.ByKind {
			out.ByKind[k.String()] = n
		}
	}
	return out, nil
}
