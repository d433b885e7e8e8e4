package rentals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/car-rental/pkg/database"
)

// Repository handles rental data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new rentals repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ RepositoryInterface = (*Repository)(nil)

// openRentalIndex allows one rental with no return date per vehicle
const openRentalIndex = "idx_rentals_one_open_per_vehicle"

// mapWriteError turns a hit on openRentalIndex into a conflict
func mapWriteError(err error, vehicleID uuid.UUID) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation && pgErr.ConstraintName == openRentalIndex {
		return newOpenRentalExistsError(vehicleID)
	}
	return err
}

const rentalColumns = `
	r.id, r.vehicle_id, r.start_date, r.return_date,
	r.start_odometer, r.end_odometer, r.pickup_city_id, r.return_city_id,
	COALESCE((
		SELECT array_agg(o.additional_service_id ORDER BY o.position)
		FROM ordered_additional_services o WHERE o.rental_id = r.id
	), '{}'),
	r.created_at, r.updated_at`

// CreateRental inserts a rental. Additional services are stored separately.
func (r *Repository) CreateRental(ctx context.Context, rental *Rental) error {
	_, err := database.RetryableExec(ctx, r.db, `
		INSERT INTO rentals (
			id, vehicle_id, start_date, return_date,
			start_odometer, end_odometer, pickup_city_id, return_city_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rental.ID, rental.VehicleID, rental.StartDate, rental.ReturnDate,
		rental.StartOdometer, rental.EndOdometer, rental.PickupCityID, rental.ReturnCityID,
		rental.CreatedAt, rental.UpdatedAt,
	)
	return mapWriteError(err, rental.VehicleID)
}

// GetRentalByID retrieves a rental with its ordered additional service ids
func (r *Repository) GetRentalByID(ctx context.Context, id uuid.UUID) (*Rental, error) {
	rental, err := database.RetryableQueryRow(ctx, r.db,
		`SELECT `+rentalColumns+` FROM rentals r WHERE r.id = $1`, []any{id},
		scanRental,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewRentalNotFoundError(id)
		}
		return nil, err
	}
	return rental, nil
}

// UpdateRental saves every mutable field of the rental
func (r *Repository) UpdateRental(ctx context.Context, rental *Rental) error {
	tag, err := database.RetryableExec(ctx, r.db, `
		UPDATE rentals SET
			start_date = $2, return_date = $3,
			start_odometer = $4, end_odometer = $5,
			pickup_city_id = $6, return_city_id = $7,
			updated_at = $8
		WHERE id = $1`,
		rental.ID, rental.StartDate, rental.ReturnDate,
		rental.StartOdometer, rental.EndOdometer,
		rental.PickupCityID, rental.ReturnCityID,
		rental.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, rental.VehicleID)
	}
	if tag.RowsAffected() == 0 {
		return NewRentalNotFoundError(rental.ID)
	}
	return nil
}

// DeleteRental removes a rental and, by cascade, its additional services
func (r *Repository) DeleteRental(ctx context.Context, id uuid.UUID) error {
	tag, err := database.RetryableExec(ctx, r.db, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NewRentalNotFoundError(id)
	}
	return nil
}

// ListRentals returns a page of rentals, newest first, and the total count
func (r *Repository) ListRentals(ctx context.Context, filter *RentalFilter, limit, offset int) ([]Rental, int64, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter != nil {
		if filter.VehicleID != nil {
			where = append(where, fmt.Sprintf("r.vehicle_id = $%d", argIdx))
			args = append(args, *filter.VehicleID)
			argIdx++
		}
		if filter.OpenOnly {
			where = append(where, "r.return_date IS NULL")
		}
	}
	whereClause := strings.Join(where, " AND ")

	total, err := database.RetryableQueryRow(ctx, r.db,
		`SELECT COUNT(*) FROM rentals r WHERE `+whereClause, args,
		func(row pgx.Row) (int64, error) {
			var n int64
			err := row.Scan(&n)
			return n, err
		},
	)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM rentals r
		WHERE %s
		ORDER BY r.start_date DESC, r.id
		LIMIT $%d OFFSET $%d`, rentalColumns, whereClause, argIdx, argIdx+1)

	rentals, err := database.RetryableQuery(ctx, r.db, query, append(args, limit, offset),
		func(rows pgx.Rows) ([]Rental, error) {
			result := make([]Rental, 0)
			for rows.Next() {
				rental, err := scanRental(rows)
				if err != nil {
					return nil, err
				}
				result = append(result, *rental)
			}
			return result, rows.Err()
		},
	)
	if err != nil {
		return nil, 0, err
	}
	return rentals, total, nil
}

func scanRental(row pgx.Row) (*Rental, error) {
	rental := &Rental{}
	err := row.Scan(
		&rental.ID, &rental.VehicleID, &rental.StartDate, &rental.ReturnDate,
		&rental.StartOdometer, &rental.EndOdometer, &rental.PickupCityID, &rental.ReturnCityID,
		&rental.AdditionalServiceIDs,
		&rental.CreatedAt, &rental.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rental, nil
}
