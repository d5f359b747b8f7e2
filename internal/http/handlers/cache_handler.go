// Cache administration handlers.
//
//   - GET    /admin/cache/issues/{id}               (stats, ETag support)
//   - DELETE /admin/cache/issues/{id}               (one issue, every kind)
//   - DELETE /admin/cache/issues/{id}/kinds/{kind}  (one issue, one kind)
//   - DELETE /admin/cache                           (everything)
//
// Deletes report how many rows were removed. The router mounts these behind
// the admin token middleware.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-issue-digest/internal/domain"
	"github.com/tbourn/go-issue-digest/internal/http/middleware"
	"github.com/tbourn/go-issue-digest/internal/services"
)

// InvalidateResponse reports the number of deleted cache rows.
type InvalidateResponse struct {
	Deleted int64 `json:"deleted" example:"3"`
}

func (h *Handlers) invalidated(c *gin.Context, scope string, n int64, err error) {
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInvalidateFailed, err.Error())
		return
	}
	middleware.LoggerFrom(c).Info().
		Str("scope", scope).
		Int64("deleted", n).
		Str("admin", c.GetString("userID")).
		Msg("artifact cache invalidated")
	ok(c, http.StatusOK, InvalidateResponse{Deleted: n})
}

// CacheStats godoc
// @ID          cacheStats
// @Summary     Cache stats for an issue
// @Description Number of cached artifacts and the latest write time. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Cache
// @Produce     json
// @Security    AdminBearer
//
// @Param       id             path    int     true   "Issue ID"  minimum(1) example(101)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"  example(W/\"cache:101:2:1700000000\")
//
// @Success     200  {object} services.CacheStats
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/cache/issues/{id} [get]
func (h *Handlers) CacheStats(c *gin.Context) {
	id, valid := issueID(c)
	if !valid {
		return
	}
	st, err := h.cache.Stats(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStatsFailed, err.Error())
		return
	}

	var ts int64
	if st.LastWrittenAt != nil {
		ts = st.LastWrittenAt.UnixNano()
	}
	if notModified(c, fmt.Sprintf(`W/"cache:%d:%d:%d"`, id, st.Count, ts)) {
		return
	}
	ok(c, http.StatusOK, st)
}

// InvalidateIssue godoc
// @ID          invalidateIssue
// @Summary     Drop an issue's cached artifacts
// @Tags        Cache
// @Produce     json
// @Security    AdminBearer
//
// @Param       id  path  int  true  "Issue ID"  minimum(1) example(101)
//
// @Success     200  {object} handlers.InvalidateResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/cache/issues/{id} [delete]
func (h *Handlers) InvalidateIssue(c *gin.Context) {
	id, valid := issueID(c)
	if !valid {
		return
	}
	n, err := h.cache.InvalidateEntity(c.Request.Context(), id)
	h.invalidated(c, "issue", n, err)
}

// InvalidateIssueKind godoc
// @ID          invalidateIssueKind
// @Summary     Drop one kind of an issue's cached artifacts
// @Tags        Cache
// @Produce     json
// @Security    AdminBearer
//
// @Param       id    path  int     true  "Issue ID"  minimum(1) example(101)
// @Param       kind  path  string  true  "Content kind"  Enums(title, short_summary, detailed_summary)
//
// @Success     200  {object} handlers.InvalidateResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/cache/issues/{id}/kinds/{kind} [delete]
func (h *Handlers) InvalidateIssueKind(c *gin.Context) {
	id, valid := issueID(c)
	if !valid {
		return
	}
	kind, err := domain.ParseContentKind(c.Param("kind"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidKind, err.Error())
		return
	}
	n, err := h.cache.InvalidateEntityKind(c.Request.Context(), id, kind)
	if errors.Is(err, services.ErrInvalidKind) {
		fail(c, http.StatusBadRequest, ErrCodeInvalidKind, err.Error())
		return
	}
	h.invalidated(c, "issue_kind", n, err)
}

// InvalidateAll godoc
// @ID          invalidateAll
// @Summary     Drop every cached artifact
// @Tags        Cache
// @Produce     json
// @Security    AdminBearer
//
// @Success     200  {object} handlers.InvalidateResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     403  {object} handlers.ErrorResponse "Forbidden"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/cache [delete]
func (h *Handlers) InvalidateAll(c *gin.Context) {
	n, err := h.cache.InvalidateAll(c.Request.Context())
	h.invalidated(c, "all", n, err)
}
