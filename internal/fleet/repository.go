package fleet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/car-rental/pkg/database"
)

// Repository is the Postgres vehicle store
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new vehicle repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ RepositoryInterface = (*Repository)(nil)

// CreateVehicle inserts a vehicle
func (r *Repository) CreateVehicle(ctx context.Context, v *Vehicle) error {
	_, err := database.RetryableExec(ctx, r.db, `
		INSERT INTO vehicles (id, plate, state, city_id, odometer_km, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.Plate, v.State.String(), v.CityID, v.Odometer, v.CreatedAt, v.UpdatedAt,
	)
	return err
}

// GetVehicle retrieves a vehicle by ID
func (r *Repository) GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	v, err := database.RetryableQueryRow(ctx, r.db, `
		SELECT id, plate, state, city_id, odometer_km, created_at, updated_at
		FROM vehicles WHERE id = $1`, []any{id},
		scanVehicle,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NewVehicleNotFoundError(id)
		}
		return nil, err
	}
	return v, nil
}

// UpdateVehicleState overwrites the vehicle state
func (r *Repository) UpdateVehicleState(ctx context.Context, id uuid.UUID, state VehicleState) error {
	return r.update(ctx, id, `UPDATE vehicles SET state = $2, updated_at = $3 WHERE id = $1`, state.String())
}

// UpdateVehicleCity moves the vehicle to cityID
func (r *Repository) UpdateVehicleCity(ctx context.Context, id uuid.UUID, cityID int) error {
	return r.update(ctx, id, `UPDATE vehicles SET city_id = $2, updated_at = $3 WHERE id = $1`, cityID)
}

// UpdateVehicleOdometer sets the odometer reading
func (r *Repository) UpdateVehicleOdometer(ctx context.Context, id uuid.UUID, odometer float64) error {
	return r.update(ctx, id, `UPDATE vehicles SET odometer_km = $2, updated_at = $3 WHERE id = $1`, odometer)
}

func (r *Repository) update(ctx context.Context, id uuid.UUID, query string, value any) error {
	tag, err := database.RetryableExec(ctx, r.db, query, id, value, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NewVehicleNotFoundError(id)
	}
	return nil
}

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	v := &Vehicle{}
	var state string
	if err := row.Scan(&v.ID, &v.Plate, &state, &v.CityID, &v.Odometer, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := ParseVehicleState(state)
	if err != nil {
		return nil, err
	}
	v.State = parsed
	return v, nil
}
