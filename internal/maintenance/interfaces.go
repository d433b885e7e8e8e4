package maintenance

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the persistence operations used by Service
type RepositoryInterface interface {
	CreateRecord(ctx context.Context, r *Record) error
	GetRecordByID(ctx context.Context, id uuid.UUID) (*Record, error)
	UpdateRecord(ctx context.Context, r *Record) error
	DeleteRecord(ctx context.Context, id uuid.UUID) error
	ListRecords(ctx context.Context, vehicleID *uuid.UUID, limit, offset int) ([]Record, int64, error)
}
