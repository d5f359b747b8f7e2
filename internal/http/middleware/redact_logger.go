package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Scrubbers run in order. Secrets go first so a key is never half-matched
// by a later pattern; phone is the loosest and runs last, after UUIDs have
// been replaced so their digit groups are not taken for phone numbers.
var scrubbers = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\b(auth_key|api_key|apikey|access_token|token)=[^&\s]*`), "$1=[REDACTED]"},
	{regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{8,}`), "[REDACTED:key]"},
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`), "[REDACTED:id]"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
}

// alwaysMasked headers are replaced wholesale regardless of options.
var alwaysMasked = []string{"Authorization", "Cookie", "Set-Cookie"}

// redact applies every scrubber to s.
func redact(s string) string {
	for _, sc := range scrubbers {
		if s == "" {
			return s
		}
		s = sc.re.ReplaceAllString(s, sc.repl)
	}
	return s
}

// RedactOptions adds headers to mask beyond Authorization and cookies.
// Names are matched case-insensitively.
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger is the access log. It never reads bodies; the query
// string and header values pass through redact, and masked headers are
// logged as "[REDACTED]". The level is info, warn for 4xx and error for 5xx
// or recorded handler errors.
//
// It also attaches the request-scoped logger returned by LoggerFrom, so
// handler logs share request_id and issue_id with the access line.
//
//	r.Use(middleware.RequestID(), middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-DeepL-Auth-Key"},
//	}))
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := make(map[string]struct{}, len(alwaysMasked)+len(opts.MaskHeaders))
	for _, h := range append(append([]string(nil), alwaysMasked...), opts.MaskHeaders...) {
		if h = strings.TrimSpace(h); h != "" {
			masked[http.CanonicalHeaderKey(h)] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := routeLabel(c)
		query := redact(c.Request.URL.RawQuery)
		headers := scrubHeaders(c.Request.Header, masked)

		lg := attachLogger(c)
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500 || len(c.Errors) > 0:
			ev = lg.Error()
		case status >= 400:
			ev = lg.Warn()
		default:
			ev = lg.Info()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", redact(c.Errors.String()))
		}
		if uid := c.GetString("userID"); uid != "" {
			ev = ev.Str("user_id", uid)
		}

		ev.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}

func scrubHeaders(h http.Header, masked map[string]struct{}) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := masked[http.CanonicalHeaderKey(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = redact(strings.Join(vv, ", "))
	}
	return out
}
