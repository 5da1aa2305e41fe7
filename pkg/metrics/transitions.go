package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Transition outcomes.
const (
	OutcomeApplied    = "applied"
	OutcomeNoop       = "noop"
	OutcomeConflict   = "conflict"
	OutcomeFault      = "consistency_fault"
	OutcomeFailed     = "failed"
	OutcomeNotFound   = "not_found"
	OutcomeValidation = "invalid"
)

// TransitionMetrics records status transitions of tracked items.
type TransitionMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewTransitionMetrics registers the transition metrics on the provided registerer.
func NewTransitionMetrics(reg prometheus.Registerer) *TransitionMetrics {
	if reg == nil {
		return &TransitionMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stashkeeper_transitions_total",
		Help: "Status transitions by source state, target state and outcome.",
	}, []string{"from", "to", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stashkeeper_transition_duration_seconds",
		Help:    "Duration of status transitions including the transaction.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(total, duration)
	return &TransitionMetrics{
		total:    total,
		duration: duration,
	}
}

// Observe records one finished transition attempt.
func (t *TransitionMetrics) Observe(from, to, outcome string, elapsed time.Duration) {
	if t == nil || t.total == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	t.total.WithLabelValues(normalizeLabel(from), normalizeLabel(to), outcome).Inc()
	t.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
