// Package metrics provides observability for the resolution module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the resolution pipeline.
type Metrics struct {
	// Per-path extraction latencies by path name.
	PathLatency *prometheus.HistogramVec

	// Terminal outcomes by state and winning source.
	Outcome *prometheus.CounterVec

	// Overall resolve latency including the three-path join.
	ResolveLatency prometheus.Histogram

	// Sessions superseded by a newer submission before reaching a terminal
	// state.
	Superseded prometheus.Counter
}

// New creates and registers all resolution metrics.
func New() *Metrics {
	return &Metrics{
		PathLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veridoc_resolution_path_duration_seconds",
			Help:    "Duration of individual extraction paths by path name",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"path"}), // path: "document", "origin", "text"

		Outcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_resolution_outcomes_total",
			Help: "Terminal resolution outcomes by state and winning source",
		}, []string{"state", "source"}),

		ResolveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridoc_resolution_resolve_duration_seconds",
			Help:    "Duration of full resolution including the path join",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		Superseded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veridoc_resolution_superseded_total",
			Help: "Resolutions cancelled because a newer image was submitted",
		}),
	}
}

// ObservePathLatency records the duration of one extraction path.
func (m *Metrics) ObservePathLatency(path string, d time.Duration) {
	if m != nil {
		m.PathLatency.WithLabelValues(path).Observe(d.Seconds())
	}
}

// IncrementOutcome records a terminal outcome.
func (m *Metrics) IncrementOutcome(state, source string) {
	if m != nil {
		m.Outcome.WithLabelValues(state, source).Inc()
	}
}

// ObserveResolveLatency records the total resolution duration.
func (m *Metrics) ObserveResolveLatency(d time.Duration) {
	if m != nil {
		m.ResolveLatency.Observe(d.Seconds())
	}
}

// IncrementSuperseded records a cancelled in-flight resolution.
func (m *Metrics) IncrementSuperseded() {
	if m != nil {
		m.Superseded.Inc()
	}
}
