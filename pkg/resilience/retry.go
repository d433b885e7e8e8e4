package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/richxcame/car-rental/pkg/logger"
	"go.uber.org/zap"
)

// ErrAttemptsExhausted wraps the last error once every attempt has failed.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// RetryConfig defines the configuration for retry behavior
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts including the first one.
	// Zero or less means retry until the context is done.
	MaxAttempts int
	// InitialBackoff is the initial backoff duration
	InitialBackoff time.Duration
	// MaxBackoff is the maximum backoff duration
	MaxBackoff time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff (typically 2.0)
	BackoffMultiplier float64
	// EnableJitter adds randomization to prevent thundering herd
	EnableJitter bool
	// RetryableChecker decides whether an error is worth another attempt
	RetryableChecker func(error) bool
}

// Operation is a unit of work that can be retried
type Operation[T any] func(ctx context.Context) (T, error)

// DefaultRetryConfig returns a sensible default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

// PollingRetryConfig keeps trying with a short, capped backoff until the
// context ends. Lock acquisition uses it.
func PollingRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       0,
		InitialBackoff:    10 * time.Millisecond,
		MaxBackoff:        200 * time.Millisecond,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

// Retry executes the operation with exponential backoff and records metrics
// under operationName.
func Retry[T any](ctx context.Context, config RetryConfig, operationName string, operation Operation[T]) (T, error) {
	var zero T
	startTime := time.Now()
	var lastErr error

	for attempt := 1; config.MaxAttempts <= 0 || attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			RecordRetryOperation(operationName, time.Since(startTime).Seconds(), attempt, false)
			return zero, contextError(err, lastErr)
		}

		result, err := operation(ctx)
		if err == nil {
			RecordRetryAttempt(operationName, true)
			RecordRetryOperation(operationName, time.Since(startTime).Seconds(), attempt, true)

			if attempt > 1 {
				logger.DebugContext(ctx, "operation succeeded after retry",
					zap.Int("attempt", attempt),
					zap.String("operation", operationName),
				)
			}
			return result, nil
		}

		RecordRetryAttempt(operationName, false)
		lastErr = err

		if !shouldRetry(err, config) {
			RecordRetryOperation(operationName, time.Since(startTime).Seconds(), attempt, false)
			return zero, err
		}

		if config.MaxAttempts > 0 && attempt == config.MaxAttempts {
			logger.WarnContext(ctx, "operation failed after all retry attempts",
				zap.Error(err),
				zap.Int("attempts", attempt),
				zap.String("operation", operationName),
			)
			RecordRetryOperation(operationName, time.Since(startTime).Seconds(), attempt, false)
			break
		}

		backoff := calculateBackoff(attempt, config)
		RecordRetryBackoff(operationName, backoff.Seconds())

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			RecordRetryOperation(operationName, time.Since(startTime).Seconds(), attempt, false)
			return zero, contextError(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return zero, errors.Join(ErrAttemptsExhausted, lastErr)
}

func contextError(ctxErr, lastErr error) error {
	if lastErr == nil {
		return ctxErr
	}
	return errors.Join(ctxErr, lastErr)
}

// calculateBackoff calculates the backoff duration for a given attempt
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	multiplier := config.BackoffMultiplier
	if multiplier < 1 {
		multiplier = 1
	}

	// Exponential backoff: initial * (multiplier ^ (attempt - 1))
	backoff := float64(config.InitialBackoff) * math.Pow(multiplier, float64(attempt-1))
	if config.MaxBackoff > 0 && backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}

	duration := time.Duration(backoff)
	if config.EnableJitter {
		duration = addJitter(duration)
	}

	return duration
}

// addJitter uses "equal jitter": half the backoff plus a random share of the other half
func addJitter(duration time.Duration) time.Duration {
	half := int64(duration / 2)
	if half <= 0 {
		return duration
	}
	return time.Duration(half + rand.Int63n(half))
}

func shouldRetry(err error, config RetryConfig) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if config.RetryableChecker != nil {
		return config.RetryableChecker(err)
	}

	return true
}
