package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/car-rental/pkg/resilience"
)

// RetryableOperation executes a Redis operation with retry logic for transient failures
func RetryableOperation[T any](ctx context.Context, operationName string, operation resilience.Operation[T]) (T, error) {
	config := resilience.DefaultRetryConfig()
	config.InitialBackoff = 20 * time.Millisecond
	config.MaxBackoff = 500 * time.Millisecond
	config.RetryableChecker = isRedisRetryable

	return resilience.Retry(ctx, config, operationName, operation)
}

// isRedisRetryable determines if a Redis error should be retried
func isRedisRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// redis.Nil means "no value", not a failure
	if errors.Is(err, redis.Nil) {
		return false
	}

	errMsg := strings.ToLower(err.Error())

	for _, msg := range []string{
		"wrongtype",
		"err syntax",
		"noauth",
		"wrongpass",
		"noperm",
		"err unknown",
	} {
		if strings.Contains(errMsg, msg) {
			return false
		}
	}

	for _, msg := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"pool timeout",
		"server closed",
		"unexpected eof",
		"loading",
		"tryagain",
		"clusterdown",
	} {
		if strings.Contains(errMsg, msg) {
			return true
		}
	}

	return false
}
