package middleware

import (
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	// Longer or non-printable client ids are replaced rather than echoed.
	maxRequestIDLen = 128
)

// RequestID reuses a well-formed X-Request-ID from the client or mints a
// UUIDv4, stores it on the context and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// RequestIDFrom returns the correlation id set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Recovery turns a panic into a JSON 500 carrying the request id. When the
// handler already started the response (an event stream, say) the
// connection is only aborted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// attachLogger stores a request-scoped logger carrying the correlation id,
// the caller identity once auth has run, and the issue id of /issues/:id
// routes.
func attachLogger(c *gin.Context) *zerolog.Logger {
	rid := RequestIDFrom(c)
	if rid == "" {
		rid = c.Writer.Header().Get(requestIDHeader)
	}
	if rid == "" {
		rid = c.GetHeader(requestIDHeader)
	}
	lc := log.With().Str("request_id", rid)
	if id, err := strconv.ParseInt(c.Param("id"), 10, 64); err == nil {
		lc = lc.Int64("issue_id", id)
	}
	l := lc.Logger()
	c.Set(loggerKey, &l)
	return &l
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// none was attached. It never returns nil.
//
//	middleware.LoggerFrom(c).Info().Str("kind", "title").Msg("scheduled")
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}
