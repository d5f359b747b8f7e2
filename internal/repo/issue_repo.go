package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-issue-digest/internal/domain"
)

// GetIssue fetches an issue snapshot by ID or returns ErrNotFound.
func GetIssue(ctx context.Context, db *gorm.DB, id int64) (*domain.Issue, error) {
	var is domain.Issue
	if err := db.WithContext(ctx).First(&is, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &is, nil
}

// UpsertIssue stores an issue snapshot, overwriting title, body and
// modification time when the ID already exists. It is used by seeding and
// tests; the service layer only reads issues.
func UpsertIssue(ctx context.Context, db *gorm.DB, is *domain.Issue) error {
	return db.WithContext(ctx).Save(is).Error
}

// IssueStore adapts the issue table to the lookup interface the
// orchestrator consumes.
type IssueStore struct {
	DB *gorm.DB
}

// GetByID implements services.SourceProvider.
func (s IssueStore) GetByID(ctx context.Context, id int64) (domain.Issue, error) {
	is, err := GetIssue(ctx, s.DB, id)
	if err != nil {
		return domain.Issue{}, err
	}
	return *is, nil
}
