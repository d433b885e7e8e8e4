package rentals

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/internal/addons"
	"github.com/richxcame/car-rental/internal/fleet"
	"github.com/richxcame/car-rental/internal/fleet/fleettest"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/pagination"
	"github.com/richxcame/car-rental/test/mocks"
)

// ========================================
// IN-MEMORY RENTAL REPOSITORY
// ========================================

type memRepo struct {
	mu        sync.Mutex
	rentals   map[uuid.UUID]Rental
	createErr error
	updateErr error
}

func newMemRepo() *memRepo {
	return &memRepo{rentals: make(map[uuid.UUID]Rental)}
}

func (m *memRepo) CreateRental(ctx context.Context, r *Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.rentals[r.ID] = *r
	return nil
}

func (m *memRepo) GetRentalByID(ctx context.Context, id uuid.UUID) (*Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rentals[id]
	if !ok {
		return nil, NewRentalNotFoundError(id)
	}
	return &r, nil
}

func (m *memRepo) UpdateRental(ctx context.Context, r *Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.rentals[r.ID]; !ok {
		return NewRentalNotFoundError(r.ID)
	}
	m.rentals[r.ID] = *r
	return nil
}

func (m *memRepo) DeleteRental(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rentals[id]; !ok {
		return NewRentalNotFoundError(id)
	}
	delete(m.rentals, id)
	return nil
}

func (m *memRepo) ListRentals(ctx context.Context, filter *RentalFilter, limit, offset int) ([]Rental, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Rental
	for _, r := range m.rentals {
		if filter != nil && filter.VehicleID != nil && r.VehicleID != *filter.VehicleID {
			continue
		}
		if filter != nil && filter.OpenOnly && !r.IsOpen() {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartDate.After(matched[j].StartDate) })

	page := pagination.Window(matched, pagination.Params{Limit: limit, Offset: offset})
	return page, int64(len(matched)), nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rentals)
}

// ========================================
// IN-MEMORY ADDONS REPOSITORY
// ========================================

type memAddons struct {
	mu       sync.Mutex
	services []addons.OrderedService
	failOn   int
}

func (m *memAddons) CreateOrderedService(ctx context.Context, s *addons.OrderedService) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != 0 && s.AdditionalServiceID == m.failOn {
		return common.NewInternalError("insert failed", nil)
	}
	for _, existing := range m.services {
		if existing.RentalID == s.RentalID && existing.AdditionalServiceID == s.AdditionalServiceID {
			return common.NewConflictError("duplicate additional service")
		}
	}
	m.services = append(m.services, *s)
	return nil
}

func (m *memAddons) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]addons.OrderedService, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]addons.OrderedService, 0)
	for _, s := range m.services {
		if s.RentalID == rentalID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

// ========================================
// FIXTURE
// ========================================

type fixture struct {
	svc    *Service
	repo   *memRepo
	store  *fleettest.Store
	addons *memAddons
	events *mocks.RecordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   newMemRepo(),
		store:  fleettest.NewStore(),
		addons: &memAddons{},
		events: &mocks.RecordingPublisher{},
	}
	guard := fleet.NewGuard(f.store, fleet.NewLocalLocker(), time.Second)
	f.svc = NewService(f.repo, guard, addons.NewService(f.addons))
	f.svc.SetEventBus(f.events)
	return f
}

func (f *fixture) vehicle(t *testing.T, id uuid.UUID) *fleet.Vehicle {
	t.Helper()
	v, err := f.store.GetVehicle(context.Background(), id)
	if err != nil {
		t.Fatalf("get vehicle: %v", err)
	}
	return v
}
