package domain

import "time"

// Issue is the read-only snapshot of a synchronized source issue. Rows are
// written by the synchronization pipeline; this service only reads them.
//
// UpdatedAt is the freshness comparison point for every artifact derived from
// the issue.
type Issue struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement:false"`
	Title     string    `json:"title"      gorm:"type:text;not null"`
	Body      string    `json:"body"       gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;index;autoUpdateTime:false"`
}

// TableName implements the GORM tabler interface.
func (Issue) TableName() string { return "issues" }

// SourceText returns the text a content kind is derived from.
func (i Issue) SourceText(kind ContentKind) string {
	if kind == KindTitleTranslation {
		return i.Title
	}
	return i.Body
}
