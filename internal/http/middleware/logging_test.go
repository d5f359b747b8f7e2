package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRequestID_ReuseOrMint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/rid", func(c *gin.Context) {
		seen = RequestIDFrom(c)
		c.Status(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		header string
		reuse  bool
	}{
		{"absent", "", false},
		{"well formed", "Z-REQ-123", true},
		{"with space", "two words", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
		{"control char", "id\x01", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/rid", nil)
			if tc.header != "" {
				req.Header.Set(strings.ToLower(requestIDHeader), tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(requestIDHeader)
			if got == "" || got != seen {
				t.Fatalf("header %q, context %q", got, seen)
			}
			if tc.reuse && got != tc.header {
				t.Fatalf("expected %q to be reused, got %q", tc.header, got)
			}
			if !tc.reuse && got == tc.header {
				t.Fatalf("expected %q to be replaced", tc.header)
			}
		})
	}
}

func TestLoggerFrom_ScopedToRequestAndIssue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}))
	r.POST("/issues/:id/artifacts", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("scheduled")
		c.Status(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodPost, "/issues/77/artifacts", nil)
	req.Header.Set(requestIDHeader, "rid-77")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var handlerLine map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		if m["message"] == "scheduled" {
			handlerLine = m
		}
	}
	if handlerLine == nil {
		t.Fatalf("handler log missing: %s", buf.String())
	}
	if handlerLine["request_id"] != "rid-77" || handlerLine["issue_id"] != float64(77) {
		t.Fatalf("handler log not scoped: %v", handlerLine)
	}
}

func TestLoggerFrom_FallbackWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.GET("/use", func(c *gin.Context) {
		lg := LoggerFrom(c)
		if lg == nil {
			t.Fatalf("nil logger")
		}
		lg.Info().Msg("custom")
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/use", nil))

	out := buf.String()
	if !strings.Contains(out, `"message":"custom"`) || strings.Contains(out, `"request_id"`) {
		t.Fatalf("unexpected fallback output: %s", out)
	}
}

func TestRecovery_PanicsToJSON500AndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(requestIDHeader, "rid-panic")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["code"] != "internal_error" || body["request_id"] != "rid-panic" {
		t.Fatalf("unexpected body: %v", body)
	}
	if out := buf.String(); !strings.Contains(out, "panic recovered") || !strings.Contains(out, "kaboom") {
		t.Fatalf("expected panic log, got:\n%s", out)
	}
}

func TestRecovery_PanicMidStream_NoJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/events", func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.String(http.StatusOK, "event:ready\ndata:{}\n\n")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	if strings.Contains(w.Body.String(), "internal_error") {
		t.Fatalf("JSON error appended to a started stream: %q", w.Body.String())
	}
	if !strings.HasPrefix(w.Body.String(), "event:ready") {
		t.Fatalf("stream prefix lost: %q", w.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic log, got:\n%s", buf.String())
	}
}
