package fleet

import (
	"context"

	"github.com/google/uuid"
)

// StateStore is the vehicle store the coordinators read and mutate. Each
// update is an independent, unconditional write.
type StateStore interface {
	GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	UpdateVehicleState(ctx context.Context, id uuid.UUID, state VehicleState) error
	UpdateVehicleCity(ctx context.Context, id uuid.UUID, cityID int) error
	UpdateVehicleOdometer(ctx context.Context, id uuid.UUID, odometer float64) error
}

// RepositoryInterface adds the fleet's own administrative writes
type RepositoryInterface interface {
	StateStore
	CreateVehicle(ctx context.Context, v *Vehicle) error
}

// Locker serializes work on a single vehicle. Lock blocks until the vehicle
// is free or ctx ends; the returned func releases it.
type Locker interface {
	Lock(ctx context.Context, vehicleID uuid.UUID) (unlock func(), err error)
}
