// Package fleettest provides an in-memory vehicle store for tests of code
// built on fleet.Guard.
package fleettest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/internal/fleet"
)

// Store is an in-memory fleet.RepositoryInterface. It records the exact
// sequence of writes and can be told to fail a given write to exercise
// partial failures.
type Store struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*fleet.Vehicle
	writes   []string
	failures map[string]error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		vehicles: make(map[uuid.UUID]*fleet.Vehicle),
		failures: make(map[string]error),
	}
}

var _ fleet.RepositoryInterface = (*Store)(nil)

// Write names recorded by Store and accepted by FailOn
const (
	WriteState    = "state"
	WriteCity     = "city"
	WriteOdometer = "odometer"
)

// Seed adds an Available vehicle and returns its ID
func (m *Store) Seed(cityID int, odometer float64) uuid.UUID {
	now := time.Now().UTC()
	v := &fleet.Vehicle{
		ID:        uuid.New(),
		Plate:     fmt.Sprintf("T-%d", cityID),
		State:     fleet.StateAvailable,
		CityID:    cityID,
		Odometer:  odometer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_ = m.CreateVehicle(context.Background(), v)
	return v.ID
}

// FailOn makes every later write of kind return err. A nil err clears it.
func (m *Store) FailOn(kind string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, kind)
		return
	}
	m.failures[kind] = err
}

// Writes returns the successful writes in order, e.g. "state:rented"
func (m *Store) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

// ResetWrites clears the write log
func (m *Store) ResetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

// CreateVehicle stores a copy of v
func (m *Store) CreateVehicle(ctx context.Context, v *fleet.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.vehicles[v.ID] = &cp
	return nil
}

// GetVehicle returns a copy of the stored vehicle
func (m *Store) GetVehicle(ctx context.Context, id uuid.UUID) (*fleet.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, fleet.NewVehicleNotFoundError(id)
	}
	cp := *v
	return &cp, nil
}

// UpdateVehicleState sets the state
func (m *Store) UpdateVehicleState(ctx context.Context, id uuid.UUID, state fleet.VehicleState) error {
	return m.write(id, WriteState, state.String(), func(v *fleet.Vehicle) { v.State = state })
}

// UpdateVehicleCity sets the city
func (m *Store) UpdateVehicleCity(ctx context.Context, id uuid.UUID, cityID int) error {
	return m.write(id, WriteCity, fmt.Sprint(cityID), func(v *fleet.Vehicle) { v.CityID = cityID })
}

// UpdateVehicleOdometer sets the odometer
func (m *Store) UpdateVehicleOdometer(ctx context.Context, id uuid.UUID, odometer float64) error {
	return m.write(id, WriteOdometer, fmt.Sprint(odometer), func(v *fleet.Vehicle) { v.Odometer = odometer })
}

func (m *Store) write(id uuid.UUID, kind, value string, apply func(v *fleet.Vehicle)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures[kind]; err != nil {
		return err
	}
	v, ok := m.vehicles[id]
	if !ok {
		return fleet.NewVehicleNotFoundError(id)
	}
	apply(v)
	v.UpdatedAt = time.Now().UTC()
	m.writes = append(m.writes, kind+":"+value)
	return nil
}
