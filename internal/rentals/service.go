package rentals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/internal/fleet"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/eventbus"
	"github.com/richxcame/car-rental/pkg/logger"
	"github.com/richxcame/car-rental/pkg/tracing"
	"github.com/richxcame/car-rental/pkg/validation"
	"go.uber.org/zap"
)

const (
	tracerName  = "rentals"
	eventSource = "rentals-service"
)

// Service coordinates the rental lifecycle with the vehicle's state
type Service struct {
	repo     RepositoryInterface
	guard    *fleet.Guard
	attacher ServiceAttacher
	eventBus eventbus.Publisher
}

// NewService creates a new rentals service
func NewService(repo RepositoryInterface, guard *fleet.Guard, attacher ServiceAttacher) *Service {
	return &Service{repo: repo, guard: guard, attacher: attacher}
}

// SetEventBus enables rental events
func (s *Service) SetEventBus(bus eventbus.Publisher) {
	s.eventBus = bus
}

// ========================================
// LIFECYCLE
// ========================================

// Add opens a rental on an Available vehicle and marks it Rented, then
// attaches the requested additional services in order.
//
// If marking the vehicle fails the new rental is deleted again. Attachment
// failures leave the rental and the Rented state in place and are reported
// as a partial failure.
func (s *Service) Add(ctx context.Context, req *CreateRentalRequest) (rental *Rental, err error) {
	ctx, end := tracing.StartOperation(ctx, tracerName, "rentals.add",
		tracing.VehicleIDKey.String(req.VehicleID.String()))
	defer func() { end(err) }()

	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	err = s.guard.Do(ctx, req.VehicleID, "add_rental", fleet.RequireState(fleet.StateAvailable),
		func(ctx context.Context, vehicle *fleet.Vehicle) error {
			rental = newRental(req, vehicle)

			saga := fleet.NewSaga("rental.add").
				StepWithUndo("persist_rental",
					func(ctx context.Context) error { return s.repo.CreateRental(ctx, rental) },
					func(ctx context.Context) error { return s.repo.DeleteRental(ctx, rental.ID) },
				).
				Step("mark_rented", func(ctx context.Context) error {
					return s.guard.SetState(ctx, vehicle.ID, vehicle.State, fleet.StateRented)
				}).
				Checkpoint()

			for position, serviceID := range req.AdditionalServiceIDs {
				saga.Step(fmt.Sprintf("attach_service_%d", serviceID), func(ctx context.Context) error {
					_, err := s.attacher.Attach(ctx, rental.ID, serviceID, position)
					return err
				})
			}

			return saga.Run(ctx)
		})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "rental created",
		zap.String("rental_id", rental.ID.String()),
		zap.String("vehicle_id", rental.VehicleID.String()),
		zap.Ints("additional_service_ids", rental.AdditionalServiceIDs),
	)
	eventbus.PublishAsync(ctx, s.eventBus, eventbus.SubjectRentalCreated, eventSource, eventbus.RentalCreatedData{
		RentalID:             rental.ID,
		VehicleID:            rental.VehicleID,
		PickupCityID:         rental.PickupCityID,
		StartOdometer:        rental.StartOdometer,
		AdditionalServiceIDs: rental.AdditionalServiceIDs,
		StartDate:            rental.StartDate,
	})
	return rental, nil
}

// Return closes a rental and hands the vehicle back: the rental is saved
// first, then the vehicle's odometer, state and city are written in that
// order. A failing step stops the sequence without undoing earlier ones.
func (s *Service) Return(ctx context.Context, rentalID uuid.UUID, req *ReturnRentalRequest) (rental *Rental, err error) {
	ctx, end := tracing.StartOperation(ctx, tracerName, "rentals.return",
		tracing.RentalIDKey.String(rentalID.String()))
	defer func() { end(err) }()

	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetRentalByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if req.VehicleID != uuid.Nil && req.VehicleID != existing.VehicleID {
		return nil, common.NewBadRequestError(
			fmt.Sprintf("rental %s belongs to vehicle %s, not %s", rentalID, existing.VehicleID, req.VehicleID), nil)
	}

	err = s.guard.Do(ctx, existing.VehicleID, "return_rental", nil, func(ctx context.Context, vehicle *fleet.Vehicle) error {
		// Re-read under the vehicle lock so two returns cannot both pass.
		current, err := s.repo.GetRentalByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if !current.IsOpen() {
			fleet.RecordRejection("return_rental", "rental_already_returned")
			return newRentalAlreadyReturnedError(current)
		}

		returnDate := time.Now().UTC()
		if req.ReturnDate != nil {
			returnDate = req.ReturnDate.UTC()
		}
		if err := validation.ValidateDateRange("return_date", current.StartDate, &returnDate); err != nil {
			return err
		}

		endOdometer, returnCity := *req.EndOdometer, req.ReturnCityID
		current.ReturnDate = &returnDate
		current.EndOdometer = &endOdometer
		current.ReturnCityID = &returnCity
		current.UpdatedAt = time.Now().UTC()
		rental = current

		return fleet.NewSaga("rental.return").
			Step("persist_return", func(ctx context.Context) error {
				return s.repo.UpdateRental(ctx, current)
			}).
			Step("update_odometer", func(ctx context.Context) error {
				return s.guard.Store().UpdateVehicleOdometer(ctx, vehicle.ID, endOdometer)
			}).
			Step("mark_available", func(ctx context.Context) error {
				return s.guard.SetState(ctx, vehicle.ID, vehicle.State, fleet.StateAvailable)
			}).
			Step("update_city", func(ctx context.Context) error {
				return s.guard.Store().UpdateVehicleCity(ctx, vehicle.ID, returnCity)
			}).
			Run(ctx)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "rental returned",
		zap.String("rental_id", rental.ID.String()),
		zap.String("vehicle_id", rental.VehicleID.String()),
		zap.Float64("distance_km", rental.Distance()),
		zap.Int("return_city_id", *rental.ReturnCityID),
	)
	eventbus.PublishAsync(ctx, s.eventBus, eventbus.SubjectRentalReturned, eventSource, eventbus.RentalReturnedData{
		RentalID:     rental.ID,
		VehicleID:    rental.VehicleID,
		ReturnCityID: *rental.ReturnCityID,
		EndOdometer:  *rental.EndOdometer,
		DistanceKm:   rental.Distance(),
		ReturnedAt:   *rental.ReturnDate,
	})
	return rental, nil
}

// ========================================
// PASS-THROUGH
// ========================================

// Update overwrites rental fields. The vehicle is left untouched, even when
// the return date is set this way.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRentalRequest) (*Rental, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	rental, err := s.repo.GetRentalByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.StartDate != nil {
		rental.StartDate = req.StartDate.UTC()
	}
	if req.ReturnDate != nil {
		returnDate := req.ReturnDate.UTC()
		rental.ReturnDate = &returnDate
	}
	if req.StartOdometer != nil {
		rental.StartOdometer = *req.StartOdometer
	}
	if req.EndOdometer != nil {
		rental.EndOdometer = req.EndOdometer
	}
	if req.PickupCityID != nil {
		rental.PickupCityID = *req.PickupCityID
	}
	if req.ReturnCityID != nil {
		rental.ReturnCityID = req.ReturnCityID
	}
	if err := validation.ValidateDateRange("return_date", rental.StartDate, rental.ReturnDate); err != nil {
		return nil, err
	}
	rental.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateRental(ctx, rental); err != nil {
		return nil, err
	}

	eventbus.PublishAsync(ctx, s.eventBus, eventbus.SubjectRentalUpdated, eventSource, eventbus.RentalChangedData{
		RentalID: rental.ID, VehicleID: rental.VehicleID, ChangedAt: rental.UpdatedAt,
	})
	return rental, nil
}

// Delete removes a rental. The vehicle's state is not restored.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	rental, err := s.repo.GetRentalByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRental(ctx, id); err != nil {
		return err
	}

	if rental.IsOpen() {
		logger.WarnContext(ctx, "open rental deleted, vehicle state left unchanged",
			zap.String("rental_id", id.String()),
			zap.String("vehicle_id", rental.VehicleID.String()),
		)
	}
	eventbus.PublishAsync(ctx, s.eventBus, eventbus.SubjectRentalDeleted, eventSource, eventbus.RentalChangedData{
		RentalID: id, VehicleID: rental.VehicleID, ChangedAt: time.Now().UTC(),
	})
	return nil
}

// GetByID returns a rental
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Rental, error) {
	return s.repo.GetRentalByID(ctx, id)
}

// GetAll returns a page of rentals and the total count
func (s *Service) GetAll(ctx context.Context, filter *RentalFilter, limit, offset int) ([]Rental, int64, error) {
	return s.repo.ListRentals(ctx, filter, limit, offset)
}

func newRental(req *CreateRentalRequest, vehicle *fleet.Vehicle) *Rental {
	now := time.Now().UTC()

	rental := &Rental{
		ID:                   uuid.New(),
		VehicleID:            vehicle.ID,
		StartDate:            now,
		StartOdometer:        vehicle.Odometer,
		PickupCityID:         vehicle.CityID,
		AdditionalServiceIDs: append([]int{}, req.AdditionalServiceIDs...),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if req.StartDate != nil {
		rental.StartDate = req.StartDate.UTC()
	}
	if req.StartOdometer != nil {
		rental.StartOdometer = *req.StartOdometer
	}
	if req.PickupCityID != 0 {
		rental.PickupCityID = req.PickupCityID
	}
	return rental
}
