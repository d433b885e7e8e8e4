package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/richxcame/car-rental/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGo_PropagatesCorrelationID(t *testing.T) {
	ctx := logger.ContextWithCorrelationID(context.Background(), "req-42")
	got := make(chan string, 1)

	Go(ctx, "capture", 0, func(ctx context.Context) error {
		got <- logger.CorrelationIDFromContext(ctx)
		return nil
	})

	select {
	case id := <-got:
		assert.Equal(t, "req-42", id)
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestGo_SurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	result := make(chan error, 1)

	Go(ctx, "outlive", 0, func(ctx context.Context) error {
		<-release
		result <- ctx.Err()
		return nil
	})
	cancel()
	close(release)

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
}

func TestGo_AppliesTimeout(t *testing.T) {
	result := make(chan error, 1)

	Go(context.Background(), "slow", 20*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		result <- ctx.Err()
		return ctx.Err()
	})

	select {
	case err := <-result:
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	case <-time.After(time.Second):
		t.Fatal("task was not cancelled")
	}
}

func TestGo_LogsFailureAndPanic(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	Go(context.Background(), "fails", 0, func(ctx context.Context) error {
		return errors.New("broker down")
	})
	Go(context.Background(), "panics", 0, func(ctx context.Context) error {
		panic("boom")
	})

	require.Eventually(t, func() bool {
		return recorded.FilterMessage("background task failed").Len() == 1 &&
			recorded.FilterMessage("background task panicked").Len() == 1
	}, time.Second, 10*time.Millisecond)
}
