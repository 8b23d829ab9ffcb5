// Package metrics exposes Prometheus instruments for the statement service.
// All Observe/Inc helpers are no-ops until Init has run, so packages can call
// them unconditionally (including from tests).
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "finstatements_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	fetchTotal    *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	editsTotal    *prometheus.CounterVec
	staleDiscards prometheus.Counter
	cacheHits     *prometheus.CounterVec
	sessionsLive  prometheus.Gauge
	exportTotal   *prometheus.CounterVec
)

// Init registers the instruments with reg (the default registerer when nil).
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}

		fetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "source_fetch_total",
				Help: "Statement fetches by source and result",
			},
			[]string{"source", "result"},
		)
		fetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "source_fetch_latency_seconds",
				Help:    "Statement fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		)
		editsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "edits_total",
				Help: "Line item edits by statement",
			},
			[]string{"statement"},
		)
		staleDiscards = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "stale_responses_discarded_total",
				Help: "Fetch results dropped because a newer submission superseded them",
			},
		)
		cacheHits = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_cache_hits_total",
				Help: "Fetches served from the snapshot cache by source",
			},
			[]string{"source"},
		)
		sessionsLive = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "sessions",
				Help: "Number of live sessions",
			},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Statement exports by format and result",
			},
			[]string{"format", "result"},
		)

		reg.MustRegister(fetchTotal, fetchLatency, editsTotal, staleDiscards, cacheHits, sessionsLive, exportTotal)
	})
}

// ObserveFetch records one source fetch.
func ObserveFetch(source, result string, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if fetchTotal != nil {
		fetchTotal.WithLabelValues(source, result).Inc()
	}
	if fetchLatency != nil {
		fetchLatency.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// IncEdit counts an accepted edit.
func IncEdit(statement string) {
	if editsTotal != nil {
		editsTotal.WithLabelValues(statement).Inc()
	}
}

// IncStaleDiscard counts a superseded fetch result.
func IncStaleDiscard() {
	if staleDiscards != nil {
		staleDiscards.Inc()
	}
}

// IncCacheHit counts a fetch answered from the snapshot cache.
func IncCacheHit(source string) {
	if cacheHits != nil {
		cacheHits.WithLabelValues(source).Inc()
	}
}

// SetSessions reports the number of live sessions.
func SetSessions(n int) {
	if sessionsLive != nil {
		sessionsLive.Set(float64(n))
	}
}

// IncExport counts an export.
func IncExport(format, result string) {
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}
