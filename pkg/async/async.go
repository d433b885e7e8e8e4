package async

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/richxcame/car-rental/pkg/logger"
	"go.uber.org/zap"
)

// Task is a unit of background work
type Task func(ctx context.Context) error

// Go runs task in its own goroutine. The task context keeps the caller's
// values (correlation ID, trace span) but not its cancellation, so work
// started by a request outlives the response. A timeout of zero means none.
// Errors and panics are logged and never reach the caller.
func Go(ctx context.Context, name string, timeout time.Duration, task Task) {
	detached := context.WithoutCancel(ctx)
	started := time.Now()

	go func() {
		taskCtx, cancel := detached, context.CancelFunc(func() {})
		if timeout > 0 {
			taskCtx, cancel = context.WithTimeout(detached, timeout)
		}
		defer cancel()
		defer recoverWithLogging(taskCtx, name)

		if err := task(taskCtx); err != nil {
			logger.WarnContext(taskCtx, "background task failed",
				zap.String("task", name),
				zap.Duration("duration", time.Since(started)),
				zap.Error(err),
			)
			return
		}
		logger.DebugContext(taskCtx, "background task completed",
			zap.String("task", name),
			zap.Duration("duration", time.Since(started)),
		)
	}()
}

func recoverWithLogging(ctx context.Context, name string) {
	if r := recover(); r != nil {
		logger.ErrorContext(ctx, "background task panicked",
			zap.String("task", name),
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())),
		)
	}
}
