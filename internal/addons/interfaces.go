package addons

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the persistence operations used by Service
type RepositoryInterface interface {
	CreateOrderedService(ctx context.Context, s *OrderedService) error
	ListByRental(ctx context.Context, rentalID uuid.UUID) ([]OrderedService, error)
}
