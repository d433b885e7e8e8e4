package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// RentalCreatedData is emitted once a rental is persisted and the vehicle is Rented.
type RentalCreatedData struct {
	RentalID             uuid.UUID `json:"rental_id"`
	VehicleID            uuid.UUID `json:"vehicle_id"`
	PickupCityID         int       `json:"pickup_city_id"`
	StartOdometer        float64   `json:"start_odometer"`
	AdditionalServiceIDs []int     `json:"additional_service_ids,omitempty"`
	StartDate            time.Time `json:"start_date"`
}

// RentalReturnedData is emitted after the return saga finishes.
type RentalReturnedData struct {
	RentalID     uuid.UUID `json:"rental_id"`
	VehicleID    uuid.UUID `json:"vehicle_id"`
	ReturnCityID int       `json:"return_city_id"`
	EndOdometer  float64   `json:"end_odometer"`
	DistanceKm   float64   `json:"distance_km"`
	ReturnedAt   time.Time `json:"returned_at"`
}

// RentalChangedData is emitted on rental update and delete.
type RentalChangedData struct {
	RentalID  uuid.UUID `json:"rental_id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	ChangedAt time.Time `json:"changed_at"`
}

// MaintenanceData is emitted when a maintenance record is opened, updated or removed.
type MaintenanceData struct {
	MaintenanceID uuid.UUID `json:"maintenance_id"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	ServiceType   string    `json:"service_type,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// VehicleStateChangedData is emitted on every successful vehicle state write.
type VehicleStateChangedData struct {
	VehicleID uuid.UUID `json:"vehicle_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}
