package fleet

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/common"
)

// Sentinels for errors.Is. AppError equality is by error code.
var (
	ErrVehicleNotAvailable            = common.NewConflictErrorWithCode(common.CodeVehicleNotAvailable, "vehicle is not available")
	ErrVehicleAlreadyUnderMaintenance = common.NewConflictErrorWithCode(common.CodeVehicleAlreadyUnderMaintenance, "vehicle is already under maintenance")
	ErrVehicleBusy                    = common.NewConflictErrorWithCode(common.CodeVehicleBusy, "vehicle is being updated by another request")
)

// NewVehicleNotFoundError is returned when the store has no such vehicle
func NewVehicleNotFoundError(id uuid.UUID) *common.AppError {
	return common.NewNotFoundError(fmt.Sprintf("vehicle %s not found", id), nil)
}

// NewVehicleNotAvailableError reports a vehicle that cannot be rented in its current state
func NewVehicleNotAvailableError(id uuid.UUID, state VehicleState) *common.AppError {
	return common.NewConflictErrorWithCode(common.CodeVehicleNotAvailable,
		fmt.Sprintf("vehicle %s is not available (state: %s)", id, state))
}

// NewVehicleAlreadyUnderMaintenanceError reports a second maintenance on the same vehicle
func NewVehicleAlreadyUnderMaintenanceError(id uuid.UUID) *common.AppError {
	return common.NewConflictErrorWithCode(common.CodeVehicleAlreadyUnderMaintenance,
		fmt.Sprintf("vehicle %s is already under maintenance", id))
}

func newVehicleBusyError(id uuid.UUID, cause error) *common.AppError {
	return common.NewAppError(ErrVehicleBusy.Code, common.CodeVehicleBusy,
		fmt.Sprintf("vehicle %s is being updated by another request", id), cause)
}
