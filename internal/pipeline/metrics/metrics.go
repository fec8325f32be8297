package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reconciliation pipeline.
type Metrics struct {
	// Evidence gathering latencies by source
	EvidenceLatency *prometheus.HistogramVec

	// Evidence outcomes by source and outcome
	EvidenceOutcome *prometheus.CounterVec

	// Routed decisions by action and severity
	DecisionOutcome *prometheus.CounterVec

	// Overall run latency
	RunLatency prometheus.Histogram

	// Runs that needed the pipeline-failure fallback decision
	FallbackDecisions prometheus.Counter
}

// New creates a Metrics instance with all pipeline metrics registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		EvidenceLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veridex_evidence_duration_seconds",
			Help:    "Duration of evidence gathering by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}),

		EvidenceOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridex_evidence_outcomes_total",
			Help: "Evidence entries by source and outcome",
		}, []string{"source", "outcome"}),

		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridex_decisions_total",
			Help: "Routed decisions by action and severity",
		}, []string{"action", "severity"}),

		RunLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridex_run_duration_seconds",
			Help:    "Duration of a full reconciliation run",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		FallbackDecisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veridex_fallback_decisions_total",
			Help: "Runs that terminated through the pipeline-failure fallback",
		}),
	}
}

// ObserveEvidenceLatency records the duration of one source's gather.
func (m *Metrics) ObserveEvidenceLatency(source string, d time.Duration) {
	if m != nil {
		m.EvidenceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementEvidenceOutcome counts one evidence entry.
func (m *Metrics) IncrementEvidenceOutcome(source, outcome string) {
	if m != nil {
		m.EvidenceOutcome.WithLabelValues(source, outcome).Inc()
	}
}

// IncrementDecision counts one routed decision.
func (m *Metrics) IncrementDecision(action, severity string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(action, severity).Inc()
	}
}

// ObserveRunLatency records one full run's duration.
func (m *Metrics) ObserveRunLatency(d time.Duration) {
	if m != nil {
		m.RunLatency.Observe(d.Seconds())
	}
}

// IncrementFallback counts a fallback decision.
func (m *Metrics) IncrementFallback() {
	if m != nil {
		m.FallbackDecisions.Inc()
	}
}
