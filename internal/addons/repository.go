package addons

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/database"
)

// Repository persists ordered additional services
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new addons repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ RepositoryInterface = (*Repository)(nil)

// CreateOrderedService inserts one attachment. Attaching the same service
// twice to a rental violates a unique index and becomes a conflict.
func (r *Repository) CreateOrderedService(ctx context.Context, s *OrderedService) error {
	_, err := database.RetryableExec(ctx, r.db, `
		INSERT INTO ordered_additional_services (id, rental_id, additional_service_id, position, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.RentalID, s.AdditionalServiceID, s.Position, s.CreatedAt,
	)
	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err):
		return common.NewConflictError(fmt.Sprintf("additional service %d is already attached to rental %s", s.AdditionalServiceID, s.RentalID))
	case database.IsForeignKeyViolation(err):
		return common.NewNotFoundError(fmt.Sprintf("rental %s not found", s.RentalID), err)
	default:
		return err
	}
}

// ListByRental returns a rental's attachments in the order they were chosen
func (r *Repository) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]OrderedService, error) {
	return database.RetryableQuery(ctx, r.db, `
		SELECT id, rental_id, additional_service_id, position, created_at
		FROM ordered_additional_services
		WHERE rental_id = $1
		ORDER BY position`, []any{rentalID},
		func(rows pgx.Rows) ([]OrderedService, error) {
			services := make([]OrderedService, 0)
			for rows.Next() {
				var s OrderedService
				if err := rows.Scan(&s.ID, &s.RentalID, &s.AdditionalServiceID, &s.Position, &s.CreatedAt); err != nil {
					return nil, err
				}
				services = append(services, s)
			}
			return services, rows.Err()
		},
	)
}
