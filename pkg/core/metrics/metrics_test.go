package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg)

	ObserveFetch("synthetic", ResultSuccess, 10*time.Millisecond)
	ObserveFetch("synthetic", ResultSuccess, 20*time.Millisecond)
	ObserveFetch("alphavantage", "rate_limited", time.Millisecond)
	IncEdit("balance")
	IncStaleDiscard()
	SetSessions(3)

	if got := testutil.ToFloat64(fetchTotal.WithLabelValues("synthetic", ResultSuccess)); got != 2 {
		t.Errorf("synthetic success fetches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(fetchTotal.WithLabelValues("alphavantage", "rate_limited")); got != 1 {
		t.Errorf("rate limited fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(editsTotal.WithLabelValues("balance")); got != 1 {
		t.Errorf("balance edits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(staleDiscards); got != 1 {
		t.Errorf("stale discards = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sessionsLive); got != 3 {
		t.Errorf("sessions = %v, want 3", got)
	}

	// Second Init is a no-op and must not panic on duplicate registration.
	Init(reg)
}
