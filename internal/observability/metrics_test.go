package observability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/go-issue-digest/internal/llm"
)

func TestObserveProviderAttempt_Outcomes(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		outcome string
	}{
		{"ok", nil, OutcomeOK},
		{"error", errors.New("boom"), OutcomeError},
		{"truncated", fmt.Errorf("wrap: %w", llm.ErrTruncated), OutcomeTruncated},
		{"canceled", context.Canceled, OutcomeCanceled},
		{"deadline", context.DeadlineExceeded, OutcomeCanceled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := "test/" + tc.name
			before := testutil.ToFloat64(providerAttempts.WithLabelValues("unit", provider, tc.outcome))
			ObserveProviderAttempt("unit", provider, tc.err, 10*time.Millisecond)
			after := testutil.ToFloat64(providerAttempts.WithLabelValues("unit", provider, tc.outcome))
			if after-before != 1 {
				t.Fatalf("outcome %q: want +1, got %v", tc.outcome, after-before)
			}
		})
	}
}

func TestObserveCacheLookupAndNotification(t *testing.T) {
	before := testutil.ToFloat64(cacheLookups.WithLabelValues("short_summary", CacheStale))
	ObserveCacheLookup("short_summary", CacheStale)
	if got := testutil.ToFloat64(cacheLookups.WithLabelValues("short_summary", CacheStale)); got-before != 1 {
		t.Fatalf("cache lookup: want +1, got %v", got-before)
	}

	before = testutil.ToFloat64(notifications.WithLabelValues("cs", "cache"))
	ObserveNotification("cs", "cache")
	if got := testutil.ToFloat64(notifications.WithLabelValues("cs", "cache")); got-before != 1 {
		t.Fatalf("notification: want +1, got %v", got-before)
	}
}
