package maintenance

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/internal/fleet"
	"github.com/richxcame/car-rental/internal/fleet/fleettest"
	"github.com/richxcame/car-rental/pkg/pagination"
	"github.com/richxcame/car-rental/test/mocks"
)

// ========================================
// IN-MEMORY MAINTENANCE REPOSITORY
// ========================================

type memRepo struct {
	mu        sync.Mutex
	records   map[uuid.UUID]Record
	createErr error
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[uuid.UUID]Record)}
}

func (m *memRepo) CreateRecord(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.records[rec.ID] = *rec
	return nil
}

func (m *memRepo) GetRecordByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, newRecordNotFoundError(id)
	}
	return &rec, nil
}

func (m *memRepo) UpdateRecord(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return newRecordNotFoundError(rec.ID)
	}
	m.records[rec.ID] = *rec
	return nil
}

func (m *memRepo) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return newRecordNotFoundError(id)
	}
	delete(m.records, id)
	return nil
}

func (m *memRepo) ListRecords(ctx context.Context, vehicleID *uuid.UUID, limit, offset int) ([]Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Record
	for _, rec := range m.records {
		if vehicleID != nil && rec.VehicleID != *vehicleID {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartDate.After(matched[j].StartDate) })

	page := pagination.Window(matched, pagination.Params{Limit: limit, Offset: offset})
	return page, int64(len(matched)), nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// ========================================
// FIXTURE
// ========================================

type fixture struct {
	svc    *Service
	repo   *memRepo
	store  *fleettest.Store
	events *mocks.RecordingPublisher
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	f := &fixture{
		repo:   newMemRepo(),
		store:  fleettest.NewStore(),
		events: &mocks.RecordingPublisher{},
	}
	guard := fleet.NewGuard(f.store, fleet.NewLocalLocker(), time.Second)
	f.svc = NewService(f.repo, guard, policy)
	f.svc.SetEventBus(f.events)
	return f
}

// seed creates a vehicle in the given state with an empty write log
func (f *fixture) seed(t *testing.T, state fleet.VehicleState) uuid.UUID {
	t.Helper()
	id := f.store.Seed(1, 0)
	if state != fleet.StateAvailable {
		if err := f.store.UpdateVehicleState(context.Background(), id, state); err != nil {
			t.Fatalf("seed state: %v", err)
		}
	}
	f.store.ResetWrites()
	return id
}

func (f *fixture) state(t *testing.T, id uuid.UUID) fleet.VehicleState {
	t.Helper()
	v, err := f.store.GetVehicle(context.Background(), id)
	if err != nil {
		t.Fatalf("get vehicle: %v", err)
	}
	return v.State
}
