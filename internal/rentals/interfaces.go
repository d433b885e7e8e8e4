package rentals

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/car-rental/internal/addons"
)

// RepositoryInterface defines the persistence operations used by Service
type RepositoryInterface interface {
	CreateRental(ctx context.Context, r *Rental) error
	GetRentalByID(ctx context.Context, id uuid.UUID) (*Rental, error)
	UpdateRental(ctx context.Context, r *Rental) error
	DeleteRental(ctx context.Context, id uuid.UUID) error
	ListRentals(ctx context.Context, filter *RentalFilter, limit, offset int) ([]Rental, int64, error)
}

// ServiceAttacher attaches ordered additional services to a new rental
type ServiceAttacher interface {
	Attach(ctx context.Context, rentalID uuid.UUID, additionalServiceID, position int) (*addons.OrderedService, error)
}
