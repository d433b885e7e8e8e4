package rentals

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/common"
)

// Sentinels for errors.Is
var (
	ErrRentalNotFound        = common.NewAppError(http.StatusNotFound, common.CodeRentalNotFound, "rental not found", nil)
	ErrRentalAlreadyReturned = common.NewConflictErrorWithCode(common.CodeRentalAlreadyReturned, "rental has already been returned")
)

// NewRentalNotFoundError reports a missing rental
func NewRentalNotFoundError(id uuid.UUID) *common.AppError {
	return common.NewAppError(http.StatusNotFound, common.CodeRentalNotFound,
		fmt.Sprintf("rental %s not found", id), nil)
}

func newRentalAlreadyReturnedError(r *Rental) *common.AppError {
	return common.NewConflictErrorWithCode(common.CodeRentalAlreadyReturned,
		fmt.Sprintf("rental %s was already returned on %s", r.ID, r.ReturnDate.Format("2006-01-02")))
}

func newOpenRentalExistsError(vehicleID uuid.UUID) *common.AppError {
	return common.NewConflictErrorWithCode(common.CodeVehicleNotAvailable,
		fmt.Sprintf("vehicle %s already has an open rental", vehicleID))
}
