package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ========================================
// INTERNAL MOCK (implements RepositoryInterface within this package)
// ========================================

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateVehicle(ctx context.Context, v *Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockRepo) GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Vehicle), args.Error(1)
}

func (m *mockRepo) UpdateVehicleState(ctx context.Context, id uuid.UUID, state VehicleState) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *mockRepo) UpdateVehicleCity(ctx context.Context, id uuid.UUID, cityID int) error {
	args := m.Called(ctx, id, cityID)
	return args.Error(0)
}

func (m *mockRepo) UpdateVehicleOdometer(ctx context.Context, id uuid.UUID, odometer float64) error {
	args := m.Called(ctx, id, odometer)
	return args.Error(0)
}

func newTestService(repo RepositoryInterface) *Service {
	return NewService(repo, NewGuard(repo, NewLocalLocker(), time.Second))
}

// ========================================
// REGISTER
// ========================================

func TestRegisterVehicle_Success(t *testing.T) {
	repo := new(mockRepo)
	repo.On("CreateVehicle", mock.Anything, mock.MatchedBy(func(v *Vehicle) bool {
		return v.Plate == "AB-123" && v.State == StateAvailable && v.CityID == 34
	})).Return(nil)

	svc := newTestService(repo)
	v, err := svc.RegisterVehicle(context.Background(), &RegisterVehicleRequest{
		Plate: " ab-123 ", CityID: 34, Odometer: 1500,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.Equal(t, 1500.0, v.Odometer)
	repo.AssertExpectations(t)
}

func TestRegisterVehicle_ValidationError(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo)

	_, err := svc.RegisterVehicle(context.Background(), &RegisterVehicleRequest{Plate: "x", CityID: 0, Odometer: -1})

	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.ErrorCode)
	assert.Contains(t, appErr.Message, "city_id")
	assert.Contains(t, appErr.Message, "odometer_km")
	repo.AssertNotCalled(t, "CreateVehicle", mock.Anything, mock.Anything)
}

func TestRegisterVehicle_RepoError(t *testing.T) {
	repo := new(mockRepo)
	repo.On("CreateVehicle", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := newTestService(repo).RegisterVehicle(context.Background(), &RegisterVehicleRequest{Plate: "AB-1", CityID: 1})

	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.Code)
}

// ========================================
// STATE OVERRIDE
// ========================================

func TestSetState_EndsMaintenance(t *testing.T) {
	id := uuid.New()
	repo := new(mockRepo)
	repo.On("GetVehicle", mock.Anything, id).Return(&Vehicle{ID: id, State: StateUnderMaintenance}, nil)
	repo.On("UpdateVehicleState", mock.Anything, id, StateAvailable).Return(nil)

	v, err := newTestService(repo).SetState(context.Background(), id, &UpdateStateRequest{State: "available"})

	require.NoError(t, err)
	assert.Equal(t, StateAvailable, v.State)
	repo.AssertExpectations(t)
}

func TestSetState_SameStateIsNoop(t *testing.T) {
	id := uuid.New()
	repo := new(mockRepo)
	repo.On("GetVehicle", mock.Anything, id).Return(&Vehicle{ID: id, State: StateRented}, nil)

	v, err := newTestService(repo).SetState(context.Background(), id, &UpdateStateRequest{State: "rented"})

	require.NoError(t, err)
	assert.Equal(t, StateRented, v.State)
	repo.AssertNotCalled(t, "UpdateVehicleState", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetState_InvalidLabel(t *testing.T) {
	repo := new(mockRepo)

	_, err := newTestService(repo).SetState(context.Background(), uuid.New(), &UpdateStateRequest{State: "parked"})

	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
	repo.AssertNotCalled(t, "GetVehicle", mock.Anything, mock.Anything)
}

func TestSetState_VehicleNotFound(t *testing.T) {
	id := uuid.New()
	repo := new(mockRepo)
	repo.On("GetVehicle", mock.Anything, id).Return(nil, NewVehicleNotFoundError(id))

	_, err := newTestService(repo).SetState(context.Background(), id, &UpdateStateRequest{State: "available"})

	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}
