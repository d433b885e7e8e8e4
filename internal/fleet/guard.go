package fleet

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/eventbus"
	"github.com/richxcame/car-rental/pkg/logger"
	"go.uber.org/zap"
)

const eventSource = "fleet"

// Precondition inspects the current vehicle and returns an error to refuse
// the operation. It runs while the vehicle lock is held.
type Precondition func(v *Vehicle) error

// Guard runs check-then-transition sequences on one vehicle at a time.
// Every coordinator that changes vehicle state goes through it.
type Guard struct {
	store    StateStore
	locker   Locker
	lockWait time.Duration
	eventBus eventbus.Publisher
}

// NewGuard creates a guard. lockWait bounds how long Do waits for the
// vehicle lock; zero waits as long as the caller's context allows.
func NewGuard(store StateStore, locker Locker, lockWait time.Duration) *Guard {
	return &Guard{store: store, locker: locker, lockWait: lockWait}
}

// SetEventBus enables vehicles.state_changed events
func (g *Guard) SetEventBus(bus eventbus.Publisher) {
	g.eventBus = bus
}

// Store returns the underlying vehicle store
func (g *Guard) Store() StateStore {
	return g.store
}

// Do locks vehicleID, loads the vehicle, applies check and then runs body.
// The lock is held until body returns.
func (g *Guard) Do(ctx context.Context, vehicleID uuid.UUID, operation string, check Precondition, body func(ctx context.Context, v *Vehicle) error) error {
	ctx = logger.ContextWithFields(ctx,
		zap.String("operation", operation),
		zap.String("vehicle_id", vehicleID.String()),
	)

	lockCtx := ctx
	if g.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, g.lockWait)
		defer cancel()
	}

	start := time.Now()
	unlock, err := g.locker.Lock(lockCtx, vehicleID)
	if err != nil {
		lockWaitSeconds.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		RecordRejection(operation, "vehicle_busy")
		logger.WarnContext(ctx, "could not lock vehicle", zap.Error(err))
		return err
	}
	lockWaitSeconds.WithLabelValues("acquired").Observe(time.Since(start).Seconds())
	defer unlock()

	vehicle, err := g.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}

	if check != nil {
		if err := check(vehicle); err != nil {
			RecordRejection(operation, rejectionReason(err))
			logger.DebugContext(ctx, "precondition refused operation",
				zap.String("state", vehicle.State.String()),
				zap.Error(err),
			)
			return err
		}
	}

	return body(ctx, vehicle)
}

// SetState writes the new state and records the transition. from is the
// state observed under the lock and is only used for reporting. Call it
// from inside Do: the event ordering and the log fields both rely on the lock.
func (g *Guard) SetState(ctx context.Context, vehicleID uuid.UUID, from, to VehicleState) error {
	if err := g.store.UpdateVehicleState(ctx, vehicleID, to); err != nil {
		return err
	}

	stateTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
	logger.InfoContext(ctx, "vehicle state changed",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)

	// Published while the vehicle lock is held so the stream sees one
	// vehicle's transitions in write order. The write stands even if this fails.
	_ = eventbus.PublishNow(ctx, g.eventBus, eventbus.SubjectVehicleStateChanged, eventSource, eventbus.VehicleStateChangedData{
		VehicleID: vehicleID,
		From:      from.String(),
		To:        to.String(),
		ChangedAt: time.Now().UTC(),
	})
	return nil
}

// RequireState refuses the operation unless the vehicle is in want
func RequireState(want VehicleState) Precondition {
	return func(v *Vehicle) error {
		if v.State != want {
			return NewVehicleNotAvailableError(v.ID, v.State)
		}
		return nil
	}
}

func rejectionReason(err error) string {
	if appErr, ok := common.AsAppError(err); ok && appErr.ErrorCode != "" {
		return strings.ToLower(appErr.ErrorCode)
	}
	return "other"
}
