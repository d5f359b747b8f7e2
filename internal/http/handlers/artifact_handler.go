// Artifact HTTP handlers.
//
// This file exposes the generation triggers:
//   - POST /issues/{id}/artifacts   (single issue, fire-and-forget)
//   - POST /artifacts/batch         (many issues, fire-and-forget)
//
// Both return 202 as soon as the work is scheduled. Results are delivered as
// notifications on GET /issues/{id}/events.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-issue-digest/internal/domain"
	"github.com/tbourn/go-issue-digest/internal/http/middleware"
	"github.com/tbourn/go-issue-digest/internal/notify"
	"github.com/tbourn/go-issue-digest/internal/services"
	"github.com/tbourn/go-issue-digest/internal/utils"
)

// busyRetryAfter is advertised when every generation slot is taken.
const busyRetryAfter = 2 * time.Second

//
// Service contracts
//

// ArtifactService schedules artifact generation in the background.
type ArtifactService interface {
	// Generate schedules one issue.
	Generate(req services.ArtifactRequest) error
	// GenerateBatch schedules many issues with the same kind and mode.
	GenerateBatch(ids []int64, kind domain.ContentKind, mode domain.LanguageMode) error
}

// CacheAdmin exposes the operator side of the artifact cache.
type CacheAdmin interface {
	InvalidateEntity(ctx context.Context, entityID int64) (int64, error)
	InvalidateEntityKind(ctx context.Context, entityID int64, kind domain.ContentKind) (int64, error)
	InvalidateAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context, entityID int64) (services.CacheStats, error)
}

// Subscriber hands out notification subscriptions for one issue.
type Subscriber interface {
	Subscribe(entityID int64) *notify.Subscription
}

//
// Handler wiring
//

// Languages is the configured source/target pair. It lets clients pass a
// language code where a mode is expected.
type Languages struct {
	Source domain.Language
	Target domain.Language
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	artifacts ArtifactService
	cache     CacheAdmin
	events    Subscriber
	langs     Languages
}

// New constructs Handlers bound to the given services.
func New(artifacts ArtifactService, cache CacheAdmin, events Subscriber, langs Languages) *Handlers {
	return &Handlers{artifacts: artifacts, cache: cache, events: events, langs: langs}
}

//
// DTOs
//

// GenerateRequest is the JSON payload for a single-issue trigger.
type GenerateRequest struct {
	// Kind is one of title, short_summary, detailed_summary (aliases and
	// numeric codes 1..3 are accepted).
	Kind string `json:"kind" binding:"required" example:"short_summary"`
	// Mode is source-only, target-only or both (default), or a language code
	// equal to the configured source or target language.
	Mode string `json:"mode" example:"both"`
}

// BatchRequest is the JSON payload for a batch trigger.
type BatchRequest struct {
	IssueIDs []int64 `json:"issue_ids" binding:"required,min=1" example:"101,102,103"`
	Kind     string  `json:"kind" binding:"required" example:"detailed_summary"`
	Mode     string  `json:"mode" example:"cs"`
}

// AcceptedResponse acknowledges scheduled work.
type AcceptedResponse struct {
	Status   string  `json:"status" example:"accepted"`
	IssueIDs []int64 `json:"issue_ids"`
	Kind     string  `json:"kind" example:"short_summary"`
	Mode     string  `json:"mode" example:"both"`
}

//
// Helpers
//

// issueID reads and validates the :id path parameter.
func issueID(c *gin.Context) (int64, bool) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "issue id must be a positive integer")
	}
	return id, valid
}

// parseKindMode converts wire values and writes a 400 on failure.
func (h *Handlers) parseKindMode(c *gin.Context, kindRaw, modeRaw string) (domain.ContentKind, domain.LanguageMode, bool) {
	kind, err := domain.ParseContentKind(kindRaw)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidKind, err.Error())
		return 0, 0, false
	}
	mode, err := domain.ParseLanguageMode(modeRaw, h.langs.Source, h.langs.Target)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidMode, err.Error())
		return 0, 0, false
	}
	return kind, mode, true
}

// scheduleError maps scheduling failures to responses.
func scheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBusy):
		failRetry(c, http.StatusTooManyRequests, ErrCodeBusy, err.Error(), busyRetryAfter)
	case errors.Is(err, services.ErrShuttingDown):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	case errors.Is(err, services.ErrInvalidKind):
		fail(c, http.StatusBadRequest, ErrCodeInvalidKind, err.Error())
	case errors.Is(err, services.ErrInvalidMode):
		fail(c, http.StatusBadRequest, ErrCodeInvalidMode, err.Error())
	case errors.Is(err, services.ErrIssueNotFound),
		errors.Is(err, services.ErrEmptyBatch),
		errors.Is(err, services.ErrBatchTooLarge):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeScheduleFailed, err.Error())
	}
}

//
// Handlers
//

// GenerateArtifact godoc
// @ID          generateArtifact
// @Summary     Generate an issue artifact
// @Description Schedules summary generation and translation for one issue. Results arrive on the issue's event stream.
// @Tags        Artifacts
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                       true  "Issue ID"  minimum(1) example(101)
// @Param       body  body  handlers.GenerateRequest  true  "Kind and language mode"
//
// @Success     202  {object}  handlers.AcceptedResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse  "Generation queue full"
// @Failure     503  {object}  handlers.ErrorResponse  "Shutting down"
// @Router      /issues/{id}/artifacts [post]
func (h *Handlers) GenerateArtifact(c *gin.Context) {
	id, valid := issueID(c)
	if !valid {
		return
	}
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	kind, mode, valid := h.parseKindMode(c, req.Kind, req.Mode)
	if !valid {
		return
	}

	if err := h.artifacts.Generate(services.ArtifactRequest{IssueID: id, Kind: kind, Mode: mode}); err != nil {
		scheduleError(c, err)
		return
	}
	middleware.LoggerFrom(c).Debug().Int64("issue_id", id).Str("kind", kind.String()).Msg("artifact scheduled")
	ok(c, http.StatusAccepted, AcceptedResponse{
		Status:   "accepted",
		IssueIDs: []int64{id},
		Kind:     kind.String(),
		Mode:     mode.String(),
	})
}

// GenerateBatch godoc
// @ID          generateBatch
// @Summary     Generate artifacts for many issues
// @Description Schedules the same kind and mode for every listed issue with bounded concurrency.
// @Tags        Artifacts
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.BatchRequest  true  "Issues, kind and language mode"
//
// @Success     202  {object}  handlers.AcceptedResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503  {object}  handlers.ErrorResponse  "Shutting down"
// @Router      /artifacts/batch [post]
func (h *Handlers) GenerateBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "issue_ids and kind are required")
		return
	}
	kind, mode, valid := h.parseKindMode(c, req.Kind, req.Mode)
	if !valid {
		return
	}

	if err := h.artifacts.GenerateBatch(req.IssueIDs, kind, mode); err != nil {
		scheduleError(c, err)
		return
	}
	ok(c, http.StatusAccepted, AcceptedResponse{
		Status:   "accepted",
		IssueIDs: req.IssueIDs,
		Kind:     kind.String(),
		Mode:     mode.String(),
	})
}
