package rentals

import (
	"time"

	"github.com/google/uuid"
)

// Rental is a rental agreement. It is open until a return date is set.
type Rental struct {
	ID                   uuid.UUID  `json:"id"`
	VehicleID            uuid.UUID  `json:"vehicle_id"`
	StartDate            time.Time  `json:"start_date"`
	ReturnDate           *time.Time `json:"return_date,omitempty"`
	StartOdometer        float64    `json:"start_odometer"`
	EndOdometer          *float64   `json:"end_odometer,omitempty"`
	PickupCityID         int        `json:"pickup_city_id"`
	ReturnCityID         *int       `json:"return_city_id,omitempty"`
	AdditionalServiceIDs []int      `json:"additional_service_ids"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// IsOpen reports whether the rental has not been returned yet
func (r *Rental) IsOpen() bool {
	return r.ReturnDate == nil
}

// Distance returns the kilometres driven, or zero while the rental is open
func (r *Rental) Distance() float64 {
	if r.EndOdometer == nil {
		return 0
	}
	return *r.EndOdometer - r.StartOdometer
}

// RentalFilter narrows GetAll
type RentalFilter struct {
	VehicleID *uuid.UUID
	OpenOnly  bool
}

// CreateRentalRequest opens a rental. Start date defaults to now; pickup
// city and start odometer default to the vehicle's current values.
type CreateRentalRequest struct {
	VehicleID            uuid.UUID  `json:"vehicle_id" validate:"required"`
	StartDate            *time.Time `json:"start_date"`
	PickupCityID         int        `json:"pickup_city_id" validate:"omitempty,gt=0"`
	StartOdometer        *float64   `json:"start_odometer" validate:"omitempty,odometer"`
	AdditionalServiceIDs []int      `json:"additional_service_ids" validate:"omitempty,unique,dive,gt=0"`
}

// ReturnRentalRequest closes a rental. VehicleID is optional; when given it
// must match the rental's vehicle.
type ReturnRentalRequest struct {
	VehicleID    uuid.UUID  `json:"vehicle_id"`
	ReturnDate   *time.Time `json:"return_date"`
	EndOdometer  *float64   `json:"end_odometer" validate:"required,odometer"`
	ReturnCityID int        `json:"return_city_id" validate:"required,gt=0"`
}

// UpdateRentalRequest overwrites the given fields. It never touches the vehicle.
type UpdateRentalRequest struct {
	StartDate     *time.Time `json:"start_date"`
	ReturnDate    *time.Time `json:"return_date"`
	StartOdometer *float64   `json:"start_odometer" validate:"omitempty,odometer"`
	EndOdometer   *float64   `json:"end_odometer" validate:"omitempty,odometer"`
	PickupCityID  *int       `json:"pickup_city_id" validate:"omitempty,gt=0"`
	ReturnCityID  *int       `json:"return_city_id" validate:"omitempty,gt=0"`
}
