package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/database"
)

// Repository handles maintenance record access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new maintenance repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ RepositoryInterface = (*Repository)(nil)

func newRecordNotFoundError(id uuid.UUID) *common.AppError {
	return common.NewNotFoundError(fmt.Sprintf("maintenance record %s not found", id), nil)
}

// CreateRecord inserts a record
func (r *Repository) CreateRecord(ctx context.Context, rec *Record) error {
	_, err := database.RetryableExec(ctx, r.db, `
		INSERT INTO maintenance_records (
			id, vehicle_id, description, service_type,
			start_date, expected_end_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.VehicleID, rec.Description, rec.ServiceType,
		rec.StartDate, rec.ExpectedEndDate, rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

// GetRecordByID retrieves a record
func (r *Repository) GetRecordByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := database.RetryableQueryRow(ctx, r.db, `
		SELECT id, vehicle_id, description, service_type,
			start_date, expected_end_date, created_at, updated_at
		FROM maintenance_records WHERE id = $1`, []any{id},
		scanRecord,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newRecordNotFoundError(id)
		}
		return nil, err
	}
	return rec, nil
}

// UpdateRecord saves the mutable fields
func (r *Repository) UpdateRecord(ctx context.Context, rec *Record) error {
	tag, err := database.RetryableExec(ctx, r.db, `
		UPDATE maintenance_records SET
			description = $2, service_type = $3,
			start_date = $4, expected_end_date = $5, updated_at = $6
		WHERE id = $1`,
		rec.ID, rec.Description, rec.ServiceType,
		rec.StartDate, rec.ExpectedEndDate, rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return newRecordNotFoundError(rec.ID)
	}
	return nil
}

// DeleteRecord removes a record
func (r *Repository) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	tag, err := database.RetryableExec(ctx, r.db, `DELETE FROM maintenance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return newRecordNotFoundError(id)
	}
	return nil
}

// ListRecords returns a page of records, newest first. A nil vehicleID lists all vehicles.
func (r *Repository) ListRecords(ctx context.Context, vehicleID *uuid.UUID, limit, offset int) ([]Record, int64, error) {
	where, args := "TRUE", []any{}
	if vehicleID != nil {
		where, args = "vehicle_id = $1", []any{*vehicleID}
	}

	total, err := database.RetryableQueryRow(ctx, r.db,
		`SELECT COUNT(*) FROM maintenance_records WHERE `+where, args,
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
		SELECT id, vehicle_id, description, service_type,
			start_date, expected_end_date, created_at, updated_at
		FROM maintenance_records
		WHERE %s
		ORDER BY start_date DESC, id
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	records, err := database.RetryableQuery(ctx, r.db, query, append(args, limit, offset),
		func(rows pgx.Rows) ([]Record, error) {
			result := make([]Record, 0)
			for rows.Next() {
				rec, err := scanRecord(rows)
				if err != nil {
					return nil, err
				}
				result = append(result, *rec)
			}
			return result, rows.Err()
		},
	)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	rec := &Record{}
	err := row.Scan(
		&rec.ID, &rec.VehicleID, &rec.Description, &rec.ServiceType,
		&rec.StartDate, &rec.ExpectedEndDate, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
