package fleet

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/logger"
	"github.com/richxcame/car-rental/pkg/tracing"
	"github.com/richxcame/car-rental/pkg/validation"
	"go.uber.org/zap"
)

const tracerName = "fleet"

// Service exposes the vehicle store's own administrative operations
type Service struct {
	repo  RepositoryInterface
	guard *Guard
}

// NewService creates a new fleet service. guard must wrap repo.
func NewService(repo RepositoryInterface, guard *Guard) *Service {
	return &Service{repo: repo, guard: guard}
}

// RegisterVehicle adds an Available vehicle
func (s *Service) RegisterVehicle(ctx context.Context, req *RegisterVehicleRequest) (*Vehicle, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	v := &Vehicle{
		ID:        uuid.New(),
		Plate:     strings.ToUpper(strings.TrimSpace(req.Plate)),
		State:     StateAvailable,
		CityID:    req.CityID,
		Odometer:  req.Odometer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, common.NewInternalError("failed to register vehicle", err)
	}

	logger.InfoContext(ctx, "vehicle registered",
		zap.String("vehicle_id", v.ID.String()),
		zap.String("plate", v.Plate),
		zap.Int("city_id", v.CityID),
	)
	return v, nil
}

// GetVehicle returns a vehicle by ID
func (s *Service) GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	return s.repo.GetVehicle(ctx, id)
}

// SetState overrides the state of a vehicle, e.g. to bring it back from
// maintenance. It takes the vehicle lock like any coordinator does.
func (s *Service) SetState(ctx context.Context, id uuid.UUID, req *UpdateStateRequest) (v *Vehicle, err error) {
	ctx, end := tracing.StartOperation(ctx, tracerName, "fleet.set_state", tracing.VehicleIDKey.String(id.String()))
	defer func() { end(err) }()

	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}
	to, err := ParseVehicleState(req.State)
	if err != nil {
		return nil, common.NewBadRequestError("invalid vehicle state", err)
	}

	err = s.guard.Do(ctx, id, "set_state", nil, func(ctx context.Context, current *Vehicle) error {
		if current.State == to {
			v = current
			return nil
		}
		if err := s.guard.SetState(ctx, id, current.State, to); err != nil {
			return err
		}
		current.State = to
		v = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
