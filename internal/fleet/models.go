package fleet

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/validation"
)

// VehicleState is the availability of a vehicle. The set is closed: any
// label other than the three below fails to parse.
type VehicleState uint8

const (
	StateUnknown VehicleState = iota
	StateAvailable
	StateRented
	StateUnderMaintenance
)

var stateLabels = map[VehicleState]string{
	StateAvailable:        "available",
	StateRented:           "rented",
	StateUnderMaintenance: "under_maintenance",
}

func init() {
	validation.Register("vehicle_state", IsValidStateLabel)
}

// ParseVehicleState parses a state label, case-insensitively
func ParseVehicleState(s string) (VehicleState, error) {
	label := strings.ToLower(strings.TrimSpace(s))
	for state, l := range stateLabels {
		if l == label {
			return state, nil
		}
	}
	return StateUnknown, fmt.Errorf("unknown vehicle state %q", s)
}

// IsValidStateLabel reports whether s names a vehicle state
func IsValidStateLabel(s string) bool {
	_, err := ParseVehicleState(s)
	return err == nil
}

func (s VehicleState) String() string {
	if l, ok := stateLabels[s]; ok {
		return l
	}
	return "unknown"
}

// Valid reports whether s is one of the known states
func (s VehicleState) Valid() bool {
	_, ok := stateLabels[s]
	return ok
}

// MarshalText implements encoding.TextMarshaler
func (s VehicleState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid vehicle state %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *VehicleState) UnmarshalText(text []byte) error {
	parsed, err := ParseVehicleState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Vehicle is the fleet's view of a car: where it is, how far it has been
// driven, and whether it can be rented.
type Vehicle struct {
	ID        uuid.UUID    `json:"id"`
	Plate     string       `json:"plate"`
	State     VehicleState `json:"state"`
	CityID    int          `json:"city_id"`
	Odometer  float64      `json:"odometer_km"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// RegisterVehicleRequest adds a vehicle to the fleet. New vehicles start Available.
type RegisterVehicleRequest struct {
	Plate    string  `json:"plate" validate:"required,plate"`
	CityID   int     `json:"city_id" validate:"required,gt=0"`
	Odometer float64 `json:"odometer_km" validate:"odometer"`
}

// UpdateStateRequest overrides a vehicle's state, e.g. to end a maintenance
type UpdateStateRequest struct {
	State string `json:"state" validate:"required,vehicle_state"`
}
