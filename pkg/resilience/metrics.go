package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	retryAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retry_attempts_total",
		Help: "Total number of retry attempts across all operations",
	}, []string{"operation", "result"})

	retryOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retry_operation_duration_seconds",
		Help:    "Duration of retry operations including all attempts",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"operation", "result"})

	retryAttemptsHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retry_attempts_count",
		Help:    "Number of attempts before success or final failure",
		Buckets: []float64{1, 2, 3, 4, 5, 10, 25, 50},
	}, []string{"operation", "result"})

	retryBackoffDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retry_backoff_duration_seconds",
		Help:    "Duration of backoff delays during retries",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"operation"})
)

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordRetryAttempt records a single attempt (success or failure)
func RecordRetryAttempt(operation string, success bool) {
	retryAttemptsTotal.WithLabelValues(operation, result(success)).Inc()
}

// RecordRetryOperation records the overall retry operation duration and attempt count
func RecordRetryOperation(operation string, durationSeconds float64, attempts int, success bool) {
	retryOperationDuration.WithLabelValues(operation, result(success)).Observe(durationSeconds)
	retryAttemptsHistogram.WithLabelValues(operation, result(success)).Observe(float64(attempts))
}

// RecordRetryBackoff records a backoff delay duration
func RecordRetryBackoff(operation string, durationSeconds float64) {
	retryBackoffDuration.WithLabelValues(operation).Observe(durationSeconds)
}
