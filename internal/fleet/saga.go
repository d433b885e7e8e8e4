package fleet

import (
	"context"
	"fmt"
	"strings"

	"github.com/richxcame/car-rental/pkg/errors"
	"github.com/richxcame/car-rental/pkg/logger"
	"github.com/richxcame/car-rental/pkg/tracing"
	"go.uber.org/zap"
)

type sagaStep struct {
	name string
	do   func(ctx context.Context) error
	undo func(ctx context.Context) error
}

// Saga is an ordered script of writes across entities. There is no
// transaction around it: when a step fails, steps already applied stay
// applied unless they registered an undo, and the partial failure is
// logged and reported.
type Saga struct {
	name        string
	steps       []sagaStep
	checkpoints []int
}

// SagaError reports which step failed and which had already been applied
type SagaError struct {
	Saga       string
	FailedStep string
	Completed  []string
	Undone     []string
	Err        error
}

func (e *SagaError) Error() string {
	return fmt.Sprintf("%s: step %q failed: %v", e.Saga, e.FailedStep, e.Err)
}

// Unwrap keeps AppErrors from the failing step visible to errors.As
func (e *SagaError) Unwrap() error {
	return e.Err
}

// NewSaga creates an empty saga
func NewSaga(name string) *Saga {
	return &Saga{name: name}
}

// Step appends a step without compensation
func (s *Saga) Step(name string, do func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, sagaStep{name: name, do: do})
	return s
}

// StepWithUndo appends a step that is reverted if a later step fails
func (s *Saga) StepWithUndo(name string, do, undo func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, sagaStep{name: name, do: do, undo: undo})
	return s
}

// Checkpoint marks the steps added so far as final: a failure in a later
// step no longer undoes them.
func (s *Saga) Checkpoint() *Saga {
	s.checkpoints = append(s.checkpoints, len(s.steps))
	return s
}

// Run executes the steps in order and stops at the first failure. A failure
// before any step was applied is returned unchanged; later failures come
// back as a *SagaError.
func (s *Saga) Run(ctx context.Context) error {
	completed := make([]string, 0, len(s.steps))

	for i, step := range s.steps {
		tracing.AddSpanEvent(ctx, s.name+"."+step.name, tracing.SagaStepKey.String(step.name))

		if err := step.do(ctx); err != nil {
			if i == 0 {
				return err
			}
			return s.fail(ctx, i, completed, err)
		}
		completed = append(completed, step.name)
		errors.AddBreadcrumb(ctx, "saga", s.name+"."+step.name, nil)
	}
	return nil
}

// undoFloor is the index of the first step a failure at failedAt may undo
func (s *Saga) undoFloor(failedAt int) int {
	floor := 0
	for _, c := range s.checkpoints {
		if c <= failedAt && c > floor {
			floor = c
		}
	}
	return floor
}

func (s *Saga) fail(ctx context.Context, failedAt int, completed []string, err error) error {
	step := s.steps[failedAt].name
	sagaErr := &SagaError{Saga: s.name, FailedStep: step, Completed: completed, Err: err}

	// Compensation must run even if the request was cancelled.
	undoCtx := context.WithoutCancel(ctx)
	for i := failedAt - 1; i >= s.undoFloor(failedAt); i-- {
		prev := s.steps[i]
		if prev.undo == nil {
			continue
		}
		if undoErr := prev.undo(undoCtx); undoErr != nil {
			logger.ErrorContext(ctx, "saga compensation failed",
				zap.String("saga", s.name),
				zap.String("step", prev.name),
				zap.Error(undoErr),
			)
			continue
		}
		sagaErr.Undone = append(sagaErr.Undone, prev.name)
	}

	sagaPartialFailuresTotal.WithLabelValues(s.name, step).Inc()
	logger.ErrorContext(ctx, "saga stopped after partial application",
		zap.String("saga", s.name),
		zap.String("failed_step", step),
		zap.Strings("completed", completed),
		zap.Strings("undone", sagaErr.Undone),
		zap.Error(err),
	)
	errors.CaptureErrorWithContext(ctx, sagaErr,
		map[string]string{"saga": s.name, "failed_step": step},
		map[string]interface{}{
			"completed": strings.Join(completed, ","),
			"undone":    strings.Join(sagaErr.Undone, ","),
		},
	)

	return sagaErr
}
