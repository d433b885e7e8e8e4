package addons

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/logger"
	"go.uber.org/zap"
)

// Service attaches additional services to rentals
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new addons service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// Attach records that additionalServiceID was ordered with the rental.
// It only creates; duplicates are refused by the store.
func (s *Service) Attach(ctx context.Context, rentalID uuid.UUID, additionalServiceID, position int) (*OrderedService, error) {
	if additionalServiceID <= 0 {
		return nil, common.NewValidationError(fmt.Sprintf("invalid additional service id %d", additionalServiceID))
	}

	ordered := &OrderedService{
		ID:                  uuid.New(),
		RentalID:            rentalID,
		AdditionalServiceID: additionalServiceID,
		Position:            position,
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.repo.CreateOrderedService(ctx, ordered); err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "additional service attached",
		zap.String("rental_id", rentalID.String()),
		zap.Int("additional_service_id", additionalServiceID),
		zap.Int("position", position),
	)
	return ordered, nil
}

// ListByRental returns the services attached to a rental, in order
func (s *Service) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]OrderedService, error) {
	return s.repo.ListByRental(ctx, rentalID)
}
