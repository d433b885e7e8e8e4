package maintenance

import (
	"time"

	"github.com/google/uuid"
)

// Policy decides whether a rented vehicle may be sent to maintenance
type Policy int

const (
	// PolicyLegacy refuses only vehicles already under maintenance. A rented
	// vehicle is accepted and a warning is logged.
	PolicyLegacy Policy = iota
	// PolicyRequireAvailable refuses every vehicle that is not Available
	PolicyRequireAvailable
)

func (p Policy) String() string {
	if p == PolicyRequireAvailable {
		return "require_available"
	}
	return "legacy"
}

// PolicyFromConfig maps the MAINTENANCE_REQUIRE_AVAILABLE flag to a Policy
func PolicyFromConfig(requireAvailable bool) Policy {
	if requireAvailable {
		return PolicyRequireAvailable
	}
	return PolicyLegacy
}

// Record is a maintenance visit for one vehicle
type Record struct {
	ID              uuid.UUID  `json:"id"`
	VehicleID       uuid.UUID  `json:"vehicle_id"`
	Description     string     `json:"description"`
	ServiceType     string     `json:"service_type,omitempty"`
	StartDate       time.Time  `json:"start_date"`
	ExpectedEndDate *time.Time `json:"expected_end_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateMaintenanceRequest opens a maintenance record. Start date defaults to now.
type CreateMaintenanceRequest struct {
	VehicleID       uuid.UUID  `json:"vehicle_id" validate:"required"`
	Description     string     `json:"description" validate:"required,max=1000"`
	ServiceType     string     `json:"service_type" validate:"omitempty,max=64"`
	StartDate       *time.Time `json:"start_date"`
	ExpectedEndDate *time.Time `json:"expected_end_date"`
}

// UpdateMaintenanceRequest overwrites the given fields
type UpdateMaintenanceRequest struct {
	Description     *string    `json:"description" validate:"omitempty,min=1,max=1000"`
	ServiceType     *string    `json:"service_type" validate:"omitempty,max=64"`
	StartDate       *time.Time `json:"start_date"`
	ExpectedEndDate *time.Time `json:"expected_end_date"`
}
