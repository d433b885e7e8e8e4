package fleet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/eventbus"
	"github.com/richxcame/car-rental/pkg/logger"
	"go.uber.org/zap"
)

// Subscriber is implemented by eventbus.Bus
type Subscriber interface {
	SubscribeOrdered(ctx context.Context, subject string, handler eventbus.HandlerFunc) error
}

// AuditHandler follows vehicles.state_changed and flags transitions that do
// not continue from the last state it observed for that vehicle. A gap means
// a write reached the store without going through the Guard, or an event was
// lost. Each process keeps its own projection and reads the whole stream.
type AuditHandler struct {
	mu       sync.Mutex
	lastSeen map[uuid.UUID]observedState
}

type observedState struct {
	state     VehicleState
	changedAt time.Time
}

// NewAuditHandler creates an empty audit projection
func NewAuditHandler() *AuditHandler {
	return &AuditHandler{lastSeen: make(map[uuid.UUID]observedState)}
}

// RegisterSubscriptions follows vehicle events on the bus
func (h *AuditHandler) RegisterSubscriptions(ctx context.Context, bus Subscriber) error {
	if err := bus.SubscribeOrdered(ctx, "vehicles.>", h.handleEvent); err != nil {
		return fmt.Errorf("subscribe to vehicle events: %w", err)
	}
	logger.Info("fleet: vehicle state audit subscribed")
	return nil
}

func (h *AuditHandler) handleEvent(ctx context.Context, event *eventbus.Event) error {
	if event.Type != eventbus.SubjectVehicleStateChanged {
		logger.Debug("fleet audit: ignoring event", zap.String("type", event.Type))
		return nil
	}

	var data eventbus.VehicleStateChangedData
	if err := event.Decode(&data); err != nil {
		return fmt.Errorf("unmarshal state change: %w", err)
	}
	from, fromErr := ParseVehicleState(data.From)
	to, toErr := ParseVehicleState(data.To)
	if fromErr != nil || toErr != nil {
		// redelivery cannot fix a bad label
		logger.Warn("fleet audit: dropping event with unknown state",
			zap.String("event_id", event.ID),
			zap.String("from", data.From),
			zap.String("to", data.To),
		)
		return nil
	}

	h.mu.Lock()
	previous, known := h.lastSeen[data.VehicleID]
	stale := known && data.ChangedAt.Before(previous.changedAt)
	if !stale {
		h.lastSeen[data.VehicleID] = observedState{state: to, changedAt: data.ChangedAt}
	}
	h.mu.Unlock()

	if stale {
		auditStaleTotal.Inc()
		logger.WarnContext(ctx, "vehicle state event older than last seen, skipped",
			zap.String("vehicle_id", data.VehicleID.String()),
			zap.Time("changed_at", data.ChangedAt),
			zap.Time("last_seen_at", previous.changedAt),
			zap.String("event_id", event.ID),
		)
		return nil
	}

	if known && previous.state != from {
		auditGapsTotal.Inc()
		logger.WarnContext(ctx, "vehicle state changed from an unexpected state",
			zap.String("vehicle_id", data.VehicleID.String()),
			zap.String("last_seen", previous.state.String()),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.String("event_id", event.ID),
		)
	}
	return nil
}

// LastSeen returns the most recent state observed for a vehicle
func (h *AuditHandler) LastSeen(vehicleID uuid.UUID) (VehicleState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen, ok := h.lastSeen[vehicleID]
	return seen.state, ok
}
