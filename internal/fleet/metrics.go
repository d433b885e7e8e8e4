package fleet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vehicle_state_transitions_total",
		Help: "Vehicle state writes by previous and new state",
	}, []string{"from", "to"})

	rejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coordinator_rejections_total",
		Help: "Coordinator requests refused by a precondition",
	}, []string{"operation", "reason"})

	sagaPartialFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saga_partial_failures_total",
		Help: "Multi-step operations that failed after at least one step had been applied",
	}, []string{"saga", "step"})

	lockWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vehicle_lock_wait_seconds",
		Help:    "Time spent waiting for the per-vehicle lock",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"outcome"})
)

// RecordRejection counts a refused request under operation and reason
func RecordRejection(operation, reason string) {
	rejectionsTotal.WithLabelValues(operation, reason).Inc()
}

var auditGapsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vehicle_state_audit_gaps_total",
	Help: "State change events whose previous state did not match the last observed one",
})

var auditStaleTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vehicle_state_audit_stale_events_total",
	Help: "State change events skipped because they are older than the last observed one",
})
