// Package metrics holds the Prometheus counters of an analysis run.
//
// Metrics are registered on a dedicated registry rather than the global
// default, so every Session gets its own counters and tests stay isolated.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Cache lookup outcomes.
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)

// Classifier call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Cache metrics
	CacheLookups *prometheus.CounterVec
	CacheSwept   prometheus.Counter

	// Classifier metrics
	ClassifierCalls    *prometheus.CounterVec
	ClassifierDuration prometheus.Histogram

	// Result metrics
	HistoryWrites prometheus.Counter
	Warnings      *prometheus.CounterVec

	// Page metrics
	CartClicks prometheus.Counter
}

// New creates the metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vegancheck_cache_lookups_total",
				Help: "Total number of cache lookups by outcome",
			},
			[]string{"outcome"},
		),
		CacheSwept: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "vegancheck_cache_swept_total",
				Help: "Total number of expired cache entries removed",
			},
		),

		ClassifierCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vegancheck_classifier_calls_total",
				Help: "Total number of classifier calls by outcome",
			},
			[]string{"outcome"},
		),
		ClassifierDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vegancheck_classifier_duration_seconds",
				Help:    "Classifier call duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),

		HistoryWrites: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "vegancheck_history_writes_total",
				Help: "Total number of analysis history entries written",
			},
		),
		Warnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vegancheck_warnings_total",
				Help: "Total number of warnings raised by kind",
			},
			[]string{"kind"},
		),

		CartClicks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "vegancheck_cart_clicks_total",
				Help: "Total number of cart control clicks that started an analysis",
			},
		),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordCacheLookup records a cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := OutcomeMiss
	if hit {
		outcome = OutcomeHit
	}
	m.CacheLookups.WithLabelValues(outcome).Inc()
}

// RecordClassifierCall records one classifier call.
func (m *Metrics) RecordClassifierCall(err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.ClassifierCalls.WithLabelValues(outcome).Inc()
	m.ClassifierDuration.Observe(duration.Seconds())
}

// RecordHistoryWrite records a history entry.
func (m *Metrics) RecordHistoryWrite() {
	if m == nil {
		return
	}
	m.HistoryWrites.Inc()
}

// RecordWarning records a raised warning.
func (m *Metrics) RecordWarning(kind string) {
	if m == nil {
		return
	}
	m.Warnings.WithLabelValues(kind).Inc()
}

// RecordSweep records removed cache entries.
func (m *Metrics) RecordSweep(removed int) {
	if m == nil || removed <= 0 {
		return
	}
	m.CacheSwept.Add(float64(removed))
}

// RecordCartClick records a cart click that passed the gate.
func (m *Metrics) RecordCartClick() {
	if m == nil {
		return
	}
	m.CartClicks.Inc()
}

// WriteText writes every metric in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
