package fleet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/logger"
	"github.com/richxcame/car-rental/pkg/redis"
	"github.com/richxcame/car-rental/pkg/resilience"
	"go.uber.org/zap"
)

// ========================================
// IN-PROCESS LOCK
// ========================================

// LocalLocker serializes work per vehicle inside one process. Entries are
// reference counted and dropped once nobody holds or waits for them.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*lockSlot
}

type lockSlot struct {
	ch   chan struct{} // holding the single buffered token means holding the lock
	refs int
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[uuid.UUID]*lockSlot)}
}

// Lock blocks until vehicleID is free or ctx is done
func (l *LocalLocker) Lock(ctx context.Context, vehicleID uuid.UUID) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[vehicleID]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[vehicleID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.release(vehicleID, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(vehicleID, slot)
		return nil, newVehicleBusyError(vehicleID, ctx.Err())
	}
}

func (l *LocalLocker) release(vehicleID uuid.UUID, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, vehicleID)
	}
}

// held returns the number of vehicles with a holder or waiter
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// ========================================
// REDIS LEASE LOCK
// ========================================

const (
	lockKeyPrefix       = "vehicle-lock:"
	leaseReleaseTimeout = 2 * time.Second
)

var errLeaseHeld = errors.New("vehicle lease held by another request")

// RedisLocker serializes work per vehicle across replicas with a Redis lease.
// A lease expires after ttl even if its holder dies.
type RedisLocker struct {
	client  redis.LeaseClient
	ttl     time.Duration
	retry   resilience.RetryConfig
	tokenFn func() string
}

// NewRedisLocker creates a lease-based locker
func NewRedisLocker(client redis.LeaseClient, ttl time.Duration) *RedisLocker {
	retry := resilience.PollingRetryConfig()
	retry.RetryableChecker = func(err error) bool {
		return errors.Is(err, errLeaseHeld)
	}
	return &RedisLocker{
		client:  client,
		ttl:     ttl,
		retry:   retry,
		tokenFn: func() string { return uuid.NewString() },
	}
}

// WithTokenFunc overrides the lease token generator
func (l *RedisLocker) WithTokenFunc(fn func() string) *RedisLocker {
	l.tokenFn = fn
	return l
}

// Lock polls for the lease until it is granted or ctx is done
func (l *RedisLocker) Lock(ctx context.Context, vehicleID uuid.UUID) (func(), error) {
	key := lockKeyPrefix + vehicleID.String()
	token := l.tokenFn()

	_, err := resilience.Retry(ctx, l.retry, "vehicle_lock.acquire", func(ctx context.Context) (struct{}, error) {
		granted, err := l.client.TryAcquireLease(ctx, key, token, l.ttl)
		if err != nil {
			return struct{}{}, err
		}
		if !granted {
			return struct{}{}, errLeaseHeld
		}
		return struct{}{}, nil
	})
	if err != nil {
		if errors.Is(err, errLeaseHeld) || ctx.Err() != nil {
			return nil, newVehicleBusyError(vehicleID, err)
		}
		return nil, fmt.Errorf("acquire vehicle lock: %w", err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaseReleaseTimeout)
			defer cancel()

			owned, err := l.client.ReleaseLease(releaseCtx, key, token)
			switch {
			case err != nil:
				logger.WarnContext(ctx, "failed to release vehicle lease",
					zap.String("vehicle_id", vehicleID.String()), zap.Error(err))
			case !owned:
				logger.WarnContext(ctx, "vehicle lease expired before release",
					zap.String("vehicle_id", vehicleID.String()), zap.Duration("ttl", l.ttl))
			}
		})
	}, nil
}
