package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records order and appointment state transitions.
type LifecycleMetrics struct {
	transitions *prometheus.CounterVec
	denied      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_transitions_total",
		Help: "Completed state transitions by entity and action.",
	}, []string{"entity", "action"})
	denied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_transitions_denied_total",
		Help: "Rejected state transitions by entity and reason.",
	}, []string{"entity", "reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lifecycle_transition_duration_seconds",
		Help:    "Duration of state transition handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "action"})
	reg.MustRegister(transitions, denied, duration)
	return &LifecycleMetrics{
		transitions: transitions,
		denied:      denied,
		duration:    duration,
	}
}

// IncTransition increments the transition counter for the entity/action pair.
func (m *LifecycleMetrics) IncTransition(entity, action string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(entity), normalizeLabel(action)).Inc()
}

// IncDenied increments the denied counter for the entity/reason pair.
func (m *LifecycleMetrics) IncDenied(entity, reason string) {
	if m == nil || m.denied == nil {
		return
	}
	m.denied.WithLabelValues(normalizeLabel(entity), normalizeLabel(reason)).Inc()
}

// ObserveDuration records how long a transition took to process.
func (m *LifecycleMetrics) ObserveDuration(entity, action string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(entity), normalizeLabel(action)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
