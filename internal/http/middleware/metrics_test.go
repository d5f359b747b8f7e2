package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabelsAndFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.POST("/issues/:id/artifacts", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
	})
	r.DELETE("/admin/cache", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	const route = "/issues/:id/artifacts"
	baseAccepted := testutil.ToFloat64(httpReqs.WithLabelValues("POST", route, "202"))
	baseMissing := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404"))
	sizeSeries := testutil.CollectAndCount(httpRespSize)

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/issues/"+id+"/artifacts", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/admin/cache", nil))

	// Issue ids collapse into the route pattern.
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("POST", route, "202")); got != baseAccepted+3 {
		t.Fatalf("route counter = %v, want %v", got, baseAccepted+3)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404")); got != baseMissing+1 {
		t.Fatalf("fallback counter = %v", got)
	}
	// The bodiless 204 adds no size series.
	if got := testutil.CollectAndCount(httpRespSize); got > sizeSeries+2 {
		t.Fatalf("size series grew by %d", got-sizeSeries)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("in-flight = %v after requests", got)
	}
}

func TestMetrics_EventStreamsSkipLatency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/stream", func(c *gin.Context) {
		done := TrackStream()
		defer done()
		if got := testutil.ToFloat64(sseStreams); got != 1 {
			t.Errorf("sse_streams_open during stream = %v", got)
		}
		c.Header("Content-Type", "text/event-stream")
		c.String(http.StatusOK, "event: ping\n\n")
	})

	series := testutil.CollectAndCount(httpLat)
	base := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/stream", "200"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stream", nil))

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/stream", "200")); got != base+1 {
		t.Fatalf("stream request not counted: %v", got)
	}
	if got := testutil.CollectAndCount(httpLat); got != series {
		t.Fatalf("stream must not create latency series: %d -> %d", series, got)
	}
	if got := testutil.ToFloat64(sseStreams); got != 0 {
		t.Fatalf("sse_streams_open after stream = %v", got)
	}
}
