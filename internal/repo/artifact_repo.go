// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// CachedArtifact model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. Freshness rules live in the service
// layer; this file only reads, writes and deletes rows by key.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-issue-digest/internal/domain"
)

// GetArtifact fetches the artifact stored under (entityID, languageID, kind)
// or returns ErrNotFound.
func GetArtifact(ctx context.Context, db *gorm.DB, entityID int64, languageID int, kind domain.ContentKind) (*domain.CachedArtifact, error) {
	var a domain.CachedArtifact
	err := db.WithContext(ctx).
		Where("entity_id = ? AND language_id = ? AND content_kind = ?", entityID, languageID, kind).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateArtifact inserts a new artifact written at writtenAt. A row already
// present under the same key yields ErrDuplicate.
func CreateArtifact(ctx context.Context, db *gorm.DB, entityID int64, languageID int, kind domain.ContentKind, content string, writtenAt time.Time) (*domain.CachedArtifact, error) {
	a := &domain.CachedArtifact{
		ID:         uuid.NewString(),
		EntityID:   entityID,
		LanguageID: languageID,
		Kind:       kind,
		Content:    content,
		WrittenAt:  writtenAt.UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return a, nil
}

// DeleteArtifact removes the artifact stored under the key, if any, and
// returns the number of rows deleted.
func DeleteArtifact(ctx context.Context, db *gorm.DB, entityID int64, languageID int, kind domain.ContentKind) (int64, error) {
	res := db.WithContext(ctx).
		Where("entity_id = ? AND language_id = ? AND content_kind = ?", entityID, languageID, kind).
		Delete(&domain.CachedArtifact{})
	return res.RowsAffected, res.Error
}

// DeleteArtifactByID removes one artifact row. A row replaced by a newer write
// under the same key has a different ID and is left alone.
func DeleteArtifactByID(ctx context.Context, db *gorm.DB, id string) (int64, error) {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.CachedArtifact{})
	return res.RowsAffected, res.Error
}

// DeleteArtifactsByEntity removes every artifact of an entity in all
// languages and kinds.
func DeleteArtifactsByEntity(ctx context.Context, db *gorm.DB, entityID int64) (int64, error) {
	res := db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Delete(&domain.CachedArtifact{})
	return res.RowsAffected, res.Error
}

// DeleteArtifactsByEntityKind removes every language of one kind for an
// entity.
func DeleteArtifactsByEntityKind(ctx context.Context, db *gorm.DB, entityID int64, kind domain.ContentKind) (int64, error) {
	res := db.WithContext(ctx).
		Where("entity_id = ? AND content_kind = ?", entityID, kind).
		Delete(&domain.CachedArtifact{})
	return res.RowsAffected, res.Error
}

// DeleteAllArtifacts empties the cache table.
func DeleteAllArtifacts(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.CachedArtifact{})
	return res.RowsAffected, res.Error
}
