// Package handlers implements the HTTP endpoints: artifact triggers, the
// per-issue event stream and the admin cache routes. Every failure is
// written as an ErrorResponse whose Code is one of the constants in
// errors.go.
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-issue-digest/internal/http/middleware"
)

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID for correlating with server logs
	RequestID string `json:"request_id,omitempty" example:"3a2b8d3c-1f2e-4c53-9f0a-1b2c3d4e5f60"`
	// Stable machine-readable code
	Code string `json:"code" example:"invalid_kind"`
	// Human-readable detail
	Message string `json:"message" example:"unknown content kind \"poem\""`
}

// fail aborts with an ErrorResponse. Server errors are logged at error
// level; saturation (429, 503) at warn so operators see back-pressure.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	switch {
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		middleware.LoggerFrom(c).Error().Int("status", status).Str("code", code).Str("message", msg).Msg("api error")
	case status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable:
		middleware.LoggerFrom(c).Warn().Int("status", status).Str("code", code).Msg("request shed")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is fail for callers outside the package (router fallbacks).
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failRetry is fail plus a Retry-After header rounded up to whole seconds.
func failRetry(c *gin.Context, status int, code, msg string, after time.Duration) {
	secs := int((after + time.Second - 1) / time.Second)
	c.Header("Retry-After", strconv.Itoa(max(secs, 1)))
	fail(c, status, code, msg)
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// notModified sets etag and, when If-None-Match lists it (weak comparison)
// or is "*", writes 304 and reports true.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	inm := c.GetHeader("If-None-Match")
	if inm == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, cand := range strings.Split(inm, ",") {
		cand = strings.TrimSpace(cand)
		if cand == "*" || strings.TrimPrefix(cand, "W/") == want {
			c.Status(http.StatusNotModified)
			return true
		}
	}
	return false
}
