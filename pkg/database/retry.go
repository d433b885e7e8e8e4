package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/richxcame/car-rental/pkg/resilience"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx the repositories use
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Constraint violation codes reported by PostgreSQL
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
)

func retryConfig() resilience.RetryConfig {
	config := resilience.DefaultRetryConfig()
	config.RetryableChecker = IsRetryable
	return config
}

// RetryableExec executes a statement, retrying transient failures
func RetryableExec(ctx context.Context, db Querier, query string, args ...any) (pgconn.CommandTag, error) {
	return resilience.Retry(ctx, retryConfig(), "database.exec", func(ctx context.Context) (pgconn.CommandTag, error) {
		return db.Exec(ctx, query, args...)
	})
}

// RetryableQueryRow runs a single-row query and scans it, retrying transient failures
func RetryableQueryRow[T any](ctx context.Context, db Querier, query string, args []any, scan func(pgx.Row) (T, error)) (T, error) {
	return resilience.Retry(ctx, retryConfig(), "database.query_row", func(ctx context.Context) (T, error) {
		return scan(db.QueryRow(ctx, query, args...))
	})
}

// RetryableQuery runs a multi-row query and scans it, retrying transient failures
func RetryableQuery[T any](ctx context.Context, db Querier, query string, args []any, scan func(pgx.Rows) (T, error)) (T, error) {
	return resilience.Retry(ctx, retryConfig(), "database.query", func(ctx context.Context) (T, error) {
		rows, err := db.Query(ctx, query, args...)
		if err != nil {
			var zero T
			return zero, err
		}
		defer rows.Close()
		return scan(rows)
	})
}

// IsUniqueViolation reports whether err is a unique constraint violation
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolation
}

// IsForeignKeyViolation reports whether err references a missing parent row
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == ForeignKeyViolation
}

// IsRetryable determines if a PostgreSQL error should be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03", // lock_not_available
			"53300", // too_many_connections
			"08000", "08003", "08006", // connection_exception
			"57P01", "57P03": // admin_shutdown, cannot_connect_now
			return true
		default:
			return false
		}
	}

	errMsg := strings.ToLower(err.Error())
	for _, msg := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"unexpected eof",
		"server closed",
	} {
		if strings.Contains(errMsg, msg) {
			return true
		}
	}

	return false
}
