package maintenance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/internal/fleet"
	"github.com/richxcame/car-rental/pkg/eventbus"
	"github.com/richxcame/car-rental/pkg/logger"
	"github.com/richxcame/car-rental/pkg/tracing"
	"github.com/richxcame/car-rental/pkg/validation"
	"go.uber.org/zap"
)

const (
	tracerName  = "maintenance"
	eventSource = "maintenance-service"
)

// Service coordinates maintenance records with the vehicle's state
type Service struct {
	repo     RepositoryInterface
	guard    *fleet.Guard
	policy   Policy
	eventBus eventbus.Publisher
}

// NewService creates a new maintenance service
func NewService(repo RepositoryInterface, guard *fleet.Guard, policy Policy) *Service {
	return &Service{repo: repo, guard: guard, policy: policy}
}

// SetEventBus enables maintenance events
func (s *Service) SetEventBus(bus eventbus.Publisher) {
	s.eventBus = bus
}

// Add opens a maintenance record and puts the vehicle UnderMaintenance.
// If the state change fails the record is deleted again.
func (s *Service) Add(ctx context.Context, req *CreateMaintenanceRequest) (record *Record, err error) {
	ctx, end := tracing.StartOperation(ctx, tracerName, "maintenance.add",
		tracing.VehicleIDKey.String(req.VehicleID.String()))
	defer func() { end(err) }()

	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	err = s.guard.Do(ctx, req.VehicleID, "add_maintenance", s.admit, func(ctx context.Context, vehicle *fleet.Vehicle) error {
		if vehicle.State == fleet.StateRented {
			logger.WarnContext(ctx, "sending a rented vehicle to maintenance", zap.String("policy", s.policy.String()))
		}

		record = newRecord(req)
		if err := validation.ValidateDateRange("expected_end_date", record.StartDate, record.ExpectedEndDate); err != nil {
			return err
		}

		return fleet.NewSaga("maintenance.add").
			StepWithUndo("persist_record",
				func(ctx context.Context) error { return s.repo.CreateRecord(ctx, record) },
				func(ctx context.Context) error { return s.repo.DeleteRecord(ctx, record.ID) },
			).
			Step("mark_under_maintenance", func(ctx context.Context) error {
				return s.guard.SetState(ctx, vehicle.ID, vehicle.State, fleet.StateUnderMaintenance)
			}).
			Run(ctx)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "maintenance opened",
		zap.String("maintenance_id", record.ID.String()),
		zap.String("vehicle_id", record.VehicleID.String()),
	)
	s.publish(ctx, eventbus.SubjectMaintenanceOpened, record)
	return record, nil
}

// admit applies the maintenance policy to the vehicle's current state
func (s *Service) admit(v *fleet.Vehicle) error {
	switch v.State {
	case fleet.StateUnderMaintenance:
		return fleet.NewVehicleAlreadyUnderMaintenanceError(v.ID)
	case fleet.StateRented:
		if s.policy == PolicyRequireAvailable {
			return fleet.NewVehicleNotAvailableError(v.ID, v.State)
		}
	}
	return nil
}

// Update overwrites record fields without touching the vehicle
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateMaintenanceRequest) (*Record, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	record, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		record.Description = strings.TrimSpace(*req.Description)
	}
	if req.ServiceType != nil {
		record.ServiceType = *req.ServiceType
	}
	if req.StartDate != nil {
		record.StartDate = req.StartDate.UTC()
	}
	if req.ExpectedEndDate != nil {
		expected := req.ExpectedEndDate.UTC()
		record.ExpectedEndDate = &expected
	}
	if err := validation.ValidateDateRange("expected_end_date", record.StartDate, record.ExpectedEndDate); err != nil {
		return nil, err
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateRecord(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, eventbus.SubjectMaintenanceUpdated, record)
	return record, nil
}

// Delete removes a record. The vehicle stays in whatever state it is in.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRecord(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, eventbus.SubjectMaintenanceDeleted, record)
	return nil
}

// GetAll returns a page of records for every vehicle
func (s *Service) GetAll(ctx context.Context, limit, offset int) ([]Record, int64, error) {
	return s.repo.ListRecords(ctx, nil, limit, offset)
}

// GetAllByVehicleID returns a page of one vehicle's records
func (s *Service) GetAllByVehicleID(ctx context.Context, vehicleID uuid.UUID, limit, offset int) ([]Record, int64, error) {
	return s.repo.ListRecords(ctx, &vehicleID, limit, offset)
}

func (s *Service) publish(ctx context.Context, subject string, record *Record) {
	eventbus.PublishAsync(ctx, s.eventBus, subject, eventSource, eventbus.MaintenanceData{
		MaintenanceID: record.ID,
		VehicleID:     record.VehicleID,
		ServiceType:   record.ServiceType,
		OccurredAt:    time.Now().UTC(),
	})
}

func newRecord(req *CreateMaintenanceRequest) *Record {
	now := time.Now().UTC()
	record := &Record{
		ID:          uuid.New(),
		VehicleID:   req.VehicleID,
		Description: strings.TrimSpace(req.Description),
		ServiceType: req.ServiceType,
		StartDate:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.StartDate != nil {
		record.StartDate = req.StartDate.UTC()
	}
	if req.ExpectedEndDate != nil {
		expected := req.ExpectedEndDate.UTC()
		record.ExpectedEndDate = &expected
	}
	return record
}
