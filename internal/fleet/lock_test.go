package fleet

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ========================================
// LOCAL LOCKER
// ========================================

func TestLocalLocker_SerializesSameVehicle(t *testing.T) {
	locker := NewLocalLocker()
	id := uuid.New()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), id)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, locker.held())
}

func TestLocalLocker_DifferentVehiclesDoNotBlock(t *testing.T) {
	locker := NewLocalLocker()

	unlockA, err := locker.Lock(context.Background(), uuid.New())
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	unlockB, err := locker.Lock(ctx, uuid.New())
	require.NoError(t, err)
	unlockB()
}

func TestLocalLocker_TimeoutReturnsBusy(t *testing.T) {
	locker := NewLocalLocker()
	id := uuid.New()

	unlock, err := locker.Lock(context.Background(), id)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVehicleBusy))

	unlock()
	unlock() // second call is a no-op
	assert.Equal(t, 0, locker.held())
}

// ========================================
// REDIS LOCKER
// ========================================

func TestRedisLocker_AcquiresAfterHolderReleases(t *testing.T) {
	client := new(mocks.MockLeaseClient)
	id := uuid.New()
	key := "vehicle-lock:" + id.String()

	client.On("TryAcquireLease", mock.Anything, key, "token-1", 5*time.Second).Return(false, nil).Twice()
	client.On("TryAcquireLease", mock.Anything, key, "token-1", 5*time.Second).Return(true, nil).Once()
	client.On("ReleaseLease", mock.Anything, key, "token-1").Return(true, nil).Once()

	locker := NewRedisLocker(client, 5*time.Second).WithTokenFunc(func() string { return "token-1" })

	unlock, err := locker.Lock(context.Background(), id)
	require.NoError(t, err)
	unlock()
	unlock()

	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "TryAcquireLease", 3)
	client.AssertNumberOfCalls(t, "ReleaseLease", 1)
}

func TestRedisLocker_BusyWhenLeaseNeverFrees(t *testing.T) {
	client := new(mocks.MockLeaseClient)
	client.On("TryAcquireLease", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	locker := NewRedisLocker(client, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err := locker.Lock(ctx, uuid.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVehicleBusy))
	client.AssertNotCalled(t, "ReleaseLease", mock.Anything, mock.Anything, mock.Anything)
}

func TestRedisLocker_RedisErrorIsNotBusy(t *testing.T) {
	client := new(mocks.MockLeaseClient)
	client.On("TryAcquireLease", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, errors.New("connection refused")).Once()

	locker := NewRedisLocker(client, time.Second)

	_, err := locker.Lock(context.Background(), uuid.New())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrVehicleBusy))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRedisLocker_ReleaseSurvivesCancelledRequest(t *testing.T) {
	client := new(mocks.MockLeaseClient)
	client.On("TryAcquireLease", mock.Anything, mock.Anything, "tok", time.Second).Return(true, nil)
	client.On("ReleaseLease", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything, "tok").Return(false, nil).Once()

	locker := NewRedisLocker(client, time.Second).WithTokenFunc(func() string { return "tok" })

	ctx, cancel := context.WithCancel(context.Background())
	unlock, err := locker.Lock(ctx, uuid.New())
	require.NoError(t, err)
	cancel()
	unlock()

	client.AssertExpectations(t)
}
