// Package domain defines the persistence models and small value types shared
// by the repository, service, and transport layers. Models are mapped with
// GORM.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// ContentKind distinguishes the categories of cached artifacts.
type ContentKind int

const (
	KindTitleTranslation ContentKind = 1
	KindShortSummary     ContentKind = 2
	KindDetailedSummary  ContentKind = 3
)

// AllContentKinds lists every known kind in ascending code order.
var AllContentKinds = []ContentKind{KindTitleTranslation, KindShortSummary, KindDetailedSummary}

// String returns the stable wire name of the kind.
func (k ContentKind) String() string {
	switch k {
	case KindTitleTranslation:
		return "title"
	case KindShortSummary:
		return "short_summary"
	case KindDetailedSummary:
		return "detailed_summary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known kinds.
func (k ContentKind) Valid() bool {
	return k >= KindTitleTranslation && k <= KindDetailedSummary
}

// Generated reports whether the source-language artifact of this kind is
// produced by a provider. Title translations reuse the issue title verbatim.
func (k ContentKind) Generated() bool {
	return k == KindShortSummary || k == KindDetailedSummary
}

// ParseContentKind accepts the wire name, a short alias, or the numeric code.
func ParseContentKind(s string) (ContentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "title_translation", "1":
		return KindTitleTranslation, nil
	case "short", "short_summary", "summary", "2":
		return KindShortSummary, nil
	case "detailed", "detailed_summary", "3":
		return KindDetailedSummary, nil
	}
	return 0, fmt.Errorf("unknown content kind %q", s)
}

// CachedArtifact is one generated (or translated) text for an issue, in one
// language, of one kind. Rows are never updated in place: invalidation deletes
// the row and a fresh one is inserted.
//
// WrittenAt is assigned by the service layer from its injected clock, never by
// the database, so it carries no autoCreateTime tag.
type CachedArtifact struct {
	ID         string      `json:"id"          gorm:"type:char(36);primaryKey"`
	EntityID   int64       `json:"entity_id"   gorm:"not null;uniqueIndex:ux_artifact_key,priority:1"`
	LanguageID int         `json:"language_id" gorm:"not null;uniqueIndex:ux_artifact_key,priority:2"`
	Kind       ContentKind `json:"kind"        gorm:"column:content_kind;not null;uniqueIndex:ux_artifact_key,priority:3"`
	Content    string      `json:"content"     gorm:"type:text;not null"`
	WrittenAt  time.Time   `json:"written_at"  gorm:"not null"`
}

// TableName implements the GORM tabler interface.
func (CachedArtifact) TableName() string { return "cached_artifacts" }

// FreshFor reports whether the artifact is still valid for an entity last
// modified at lastModified. Equal timestamps count as fresh.
func (a CachedArtifact) FreshFor(lastModified time.Time) bool {
	return !a.WrittenAt.Before(lastModified)
}
