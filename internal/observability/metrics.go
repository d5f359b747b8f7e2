package observability

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-issue-digest/internal/llm"
)

// Label values kept small and fixed so series cardinality stays bounded.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeTruncated = "truncated"
	OutcomeCanceled  = "canceled"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
)

var (
	providerAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_attempts_total",
			Help: "Provider calls by scope, provider label and outcome.",
		},
		[]string{"scope", "provider", "outcome"},
	)

	providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_attempt_duration_seconds",
			Help:    "Duration of individual provider calls in seconds.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"scope"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_cache_lookups_total",
			Help: "Artifact cache lookups by content kind and result (hit, miss, stale).",
		},
		[]string{"kind", "result"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Delivered artifact notifications by language and source (provider or cache).",
		},
		[]string{"language", "source"},
	)
)

func init() {
	prometheus.MustRegister(providerAttempts, providerLatency, cacheLookups, notifications)
}

// ObserveProviderAttempt records one provider call.
func ObserveProviderAttempt(scope, provider string, err error, d time.Duration) {
	outcome := OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeCanceled
	case errors.Is(err, llm.ErrTruncated):
		outcome = OutcomeTruncated
	default:
		outcome = OutcomeError
	}
	providerAttempts.WithLabelValues(scope, provider, outcome).Inc()
	providerLatency.WithLabelValues(scope).Observe(d.Seconds())
}

// ObserveCacheLookup records an artifact cache lookup result.
func ObserveCacheLookup(kind, result string) {
	cacheLookups.WithLabelValues(kind, result).Inc()
}

// ObserveNotification records a delivered notification.
func ObserveNotification(language, source string) {
	notifications.WithLabelValues(language, source).Inc()
}
