package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricNamespace = "authgate"

	labelOutcome = "outcome"
	labelReason  = "reason"
)

// GateMetrics counts authentication gate decisions
type GateMetrics struct {
	decisions *prometheus.CounterVec
}

// NewGateMetrics creates the gate collectors and registers them with r.
// A nil registerer leaves the collectors unregistered.
func NewGateMetrics(r prometheus.Registerer) *GateMetrics {
	m := &GateMetrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      "decisions_total",
				Help:      "Count of authentication gate decisions by outcome and failure reason.",
			},
			[]string{labelOutcome, labelReason},
		),
	}
	if r != nil {
		r.MustRegister(m.decisions)
	}
	return m
}

// RecordDecision counts one decision. Safe on a nil receiver.
func (m *GateMetrics) RecordDecision(outcome, reason string) {
	if m == nil {
		return
	}
	m.decisions.With(prometheus.Labels{labelOutcome: outcome, labelReason: reason}).Inc()
}

// Collector exposes the underlying collector, mainly for tests
func (m *GateMetrics) Collector() prometheus.Collector {
	return m.decisions
}
