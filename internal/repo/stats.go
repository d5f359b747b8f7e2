package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-issue-digest/internal/domain"
)

// EntityStats aggregates the cache rows of one entity.
type EntityStats struct {
	Count         int64
	LastWrittenAt *time.Time
	ByKind        map[domain.ContentKind]int64
}

// ArtifactStats groups an entity's cached artifacts by content kind and
// reports the newest write. An entity with nothing cached yields a zero
// Count, a nil LastWrittenAt and an empty ByKind.
func ArtifactStats(ctx context.Context, db *gorm.DB, entityID int64) (EntityStats, error) {
	scoped := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.CachedArtifact{}).Where("entity_id = ?", entityID)
	}

	var groups []struct {
		ContentKind domain.ContentKind
		N           int64
	}
	err := scoped().
		Select("content_kind, COUNT(*) AS n").
		Group("content_kind").
		Scan(&groups).Error
	if err != nil {
		return EntityStats{}, err
	}

	st := EntityStats{ByKind: make(map[domain.ContentKind]int64, len(groups))}
	for _, g := range groups {
		st.ByKind[g.ContentKind] = g.N
		st.Count += g.N
	}
	if st.Count == 0 {
		return st, nil
	}

	// SQLite returns MAX(written_at) as TEXT, so read the newest row instead.
	var newest domain.CachedArtifact
	err = scoped().
		Select("written_at").
		Order("written_at DESC").
		Limit(1).
		Take(&newest).Error
	if err != nil {
		return EntityStats{}, err
	}
	st.LastWrittenAt = &newest.WrittenAt
	return st, nil
}
