package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/internal/fleet"
	"github.com/richxcame/car-rental/internal/fleet/fleettest"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newRequest(vehicleID uuid.UUID) *CreateMaintenanceRequest {
	return &CreateMaintenanceRequest{VehicleID: vehicleID, Description: "brake pads", ServiceType: "brakes"}
}

// ========================================
// ADD
// ========================================

func TestAdd_AvailableVehicleGoesUnderMaintenance(t *testing.T) {
	f := newFixture(t, PolicyLegacy)
	vehicleID := f.seed(t, fleet.StateAvailable)

	record, err := f.svc.Add(context.Background(), newRequest(vehicleID))

	require.NoError(t, err)
	assert.Equal(t, vehicleID, record.VehicleID)
	assert.Equal(t, "brake pads", record.Description)
	assert.WithinDuration(t, time.Now(), record.StartDate, time.Minute)
	assert.Equal(t, fleet.StateUnderMaintenance, f.state(t, vehicleID))
	assert.Equal(t, []string{"state:under_maintenance"}, f.store.Writes())
	assert.Equal(t, 1, f.repo.count())

	assert.Eventually(t, func() bool {
		return f.events.Count(eventbus.SubjectMaintenanceOpened) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestAdd_AlreadyUnderMaintenanceIsRefused(t *testing.T) {
	for _, policy := range []Policy{PolicyLegacy, PolicyRequireAvailable} {
		t.Run(policy.String(), func(t *testing.T) {
			f := newFixture(t, policy)
			vehicleID := f.seed(t, fleet.StateUnderMaintenance)

			_, err := f.svc.Add(context.Background(), newRequest(vehicleID))

			require.Error(t, err)
			assert.True(t, errors.Is(err, fleet.ErrVehicleAlreadyUnderMaintenance))
			assert.Empty(t, f.store.Writes())
			assert.Equal(t, 0, f.repo.count())
		})
	}
}

func TestAdd_RentedVehicleUnderLegacyPolicy(t *testing.T) {
	f := newFixture(t, PolicyLegacy)
	vehicleID := f.seed(t, fleet.StateRented)

	_, err := f.svc.Add(context.Background(), newRequest(vehicleID))

	require.NoError(t, err)
	assert.Equal(t, fleet.StateUnderMaintenance, f.state(t, vehicleID))
	assert.Equal(t, 1, f.repo.count())
}

func TestAdd_RentedVehicleUnderStrictPolicy(t *testing.T) {
	f := newFixture(t, PolicyRequireAvailable)
	vehicleID := f.seed(t, fleet.StateRented)

	_, err := f.svc.Add(context.Background(), newRequest(vehicleID))

	require.Error(t, err)
	assert.True(t, errors.Is(err, fleet.ErrVehicleNotAvailable))
	assert.Equal(t, fleet.StateRented, f.state(t, vehicleID))
	assert.Empty(t, f.store.Writes())
	assert.Equal(t, 0, f.repo.count())
}

func TestAdd_StrictPolicyAcceptsAvailable(t *testing.T) {
	f := newFixture(t, PolicyRequireAvailable)
	vehicleID := f.seed(t, fleet.StateAvailable)

	_, err := f.svc.Add(context.Background(), newRequest(vehicleID))

	require.NoError(t, err)
	assert.Equal(t, fleet.StateUnderMaintenance, f.state(t, vehicleID))
}

func TestAdd_UnknownVehicle(t *testing.T) {
	f := newFixture(t, PolicyLegacy)

	_, err := f.svc.Add(context.Background(), newRequest(uuid.New()))

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Code)
	assert.Equal(t, 0, f.repo.count())
}

func TestAdd_Validation(t *testing.T) {
	f := newFixture(t, PolicyLegacy)
	vehicleID := f.seed(t, fleet.StateAvailable)
	start := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  *CreateMaintenanceRequest
	}{
		{"missing description", &CreateMaintenanceRequest{VehicleID: vehicleID}},
		{"missing vehicle", &CreateMaintenanceRequest{Description: "oil"}},
		{"end before start", &CreateMaintenanceRequest{
			VehicleID: vehicleID, Description: "oil",
			StartDate: &start, ExpectedEndDate: ptr(start.Add(-time.Hour)),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Add(context.Background(), tt.req)

			var appErr *common.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, 400, appErr.Code)
		})
	}
	assert.Equal(t, fleet.StateAvailable, f.state(t, vehicleID))
	assert.Empty(t, f.store.Writes())
}

func TestAdd_StateWriteFailureRemovesRecord(t *testing.T) {
	f := newFixture(t, PolicyLegacy)
	vehicleID := f.seed(t, fleet.StateAvailable)
	f.store.FailOn(fleettest.WriteState, errors.New("store unavailable"))

	_, err := f.svc.Add(context.Background(), newRequest(vehicleID))

	var sagaErr *fleet.SagaError
	require.True(t, errors.As(err, &sagaErr))
	assert.Equal(t, "mark_under_maintenance", sagaErr.FailedStep)
	assert.Equal(t, []string{"persist_record"}, sagaErr.Undone)
	assert.Equal(t, 0, f.repo.count())
	assert.Equal(t, fleet.StateAvailable, f.state(t, vehicleID))
}

func TestAdd_PersistFailureLeavesVehicleAlone(t *testing.T) {
	f := newFixture(t, PolicyLegacy)
	vehicleID := f.seed(t, fleet.StateAvailable)
	f.repo.createErr = common.NewInternalError("insert failed", nil)

	_, err := f.svc.Add(context.Background(), newRequest(vehicleID))

	require.Error(t, err)
	var sagaErr *fleet.SagaError
	assert.False(t, errors.As(err, &sagaErr))
	assert.Empty(t, f.store.Writes())
	assert.Equal(t, fleet.StateAvailable, f.state(t, vehicleID))
}

func TestAdd_ConcurrentRequestsOpenOnce(t *testing.T) {
	f := newFixture(t, PolicyLegacy)
	vehicleID := f.seed(t, fleet.StateAvailable)

	const workers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		refusals  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Add(context.Background(), newRequest(vehicleID))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, fleet.ErrVehicleAlreadyUnderMaintenance):
				refusals++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, refusals)
	assert.Equal(t, 1, f.repo.count())
}

// ========================================
// UPDATE / DELETE
// ========================================

func TestUpdate_ChangesFieldsOnly(t *testing.T) {
	f := newFixture(t, PolicyLegacy)
	vehicleID := f.seed(t, fleet.StateAvailable)
	record, err := f.svc.Add(context.Background(), newRequest(vehicleID))
	require.NoError(t, err)
	f.store.ResetWrites()

	end := record.StartDate.Add(48 * time.Hour)
	updated, err := f.svc.Update(context.Background(), record.ID, &UpdateMaintenanceRequest{
		Description:     ptr("  brake pads and discs "),
		ExpectedEndDate: &end,
	})

	require.NoError(t, err)
	assert.Equal(t, "brake pads and discs", updated.Description)
	require.NotNil(t, updated.ExpectedEndDate)
	assert.Equal(t, end.UTC(), *updated.ExpectedEndDate)
	assert.Empty(t, f.store.Writes())
	assert.Equal(t, fleet.StateUnderMaintenance, f.state(t, vehicleID))
}

func TestUpdate_RejectsEndBeforeStart(t *testing.T) {
	f := newFixture(t, PolicyLegacy)
	record, err := f.svc.Add(context.Background(), newRequest(f.seed(t, fleet.StateAvailable)))
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), record.ID, &UpdateMaintenanceRequest{
		ExpectedEndDate: ptr(record.StartDate.Add(-time.Hour)),
	})

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Code)
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t, PolicyLegacy)

	_, err := f.svc.Update(context.Background(), uuid.New(), &UpdateMaintenanceRequest{Description: ptr("x")})

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Code)
}

func TestDelete_KeepsVehicleState(t *testing.T) {
	f := newFixture(t, PolicyLegacy)
	vehicleID := f.seed(t, fleet.StateAvailable)
	record, err := f.svc.Add(context.Background(), newRequest(vehicleID))
	require.NoError(t, err)
	f.store.ResetWrites()

	require.NoError(t, f.svc.Delete(context.Background(), record.ID))

	assert.Equal(t, 0, f.repo.count())
	assert.Empty(t, f.store.Writes())
	assert.Equal(t, fleet.StateUnderMaintenance, f.state(t, vehicleID))
	assert.Eventually(t, func() bool {
		return f.events.Count(eventbus.SubjectMaintenanceDeleted) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDelete_NotFound(t *testing.T) {
	f := newFixture(t, PolicyLegacy)

	err := f.svc.Delete(context.Background(), uuid.New())

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Code)
}

// ========================================
// QUERIES
// ========================================

func TestGetAllByVehicleID(t *testing.T) {
	f := newFixture(t, PolicyLegacy)
	first := f.seed(t, fleet.StateAvailable)
	second := f.seed(t, fleet.StateAvailable)

	_, err := f.svc.Add(context.Background(), newRequest(first))
	require.NoError(t, err)
	_, err = f.svc.Add(context.Background(), newRequest(second))
	require.NoError(t, err)

	all, total, err := f.svc.GetAll(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.EqualValues(t, 2, total)

	own, total, err := f.svc.GetAllByVehicleID(context.Background(), first, 20, 0)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, first, own[0].VehicleID)

	none, total, err := f.svc.GetAllByVehicleID(context.Background(), uuid.New(), 20, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Zero(t, total)
}

func TestPolicyFromConfig(t *testing.T) {
	assert.Equal(t, PolicyLegacy, PolicyFromConfig(false))
	assert.Equal(t, PolicyRequireAvailable, PolicyFromConfig(true))
	assert.Equal(t, "require_available", PolicyRequireAvailable.String())
	assert.Equal(t, "legacy", PolicyLegacy.String())
}
