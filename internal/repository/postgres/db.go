package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akryukov/gachamart/internal/apperrors"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so every repo works the
// same on the shared pool and inside a transaction
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// dbError wraps a raw pgx error.
// Deadlocks and serialization failures surface as apperrors.ErrConcurrencyConflict
// so callers know the whole unit rolled back and may retry from scratch.
func dbError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.DeadlockDetected, pgerrcode.SerializationFailure, pgerrcode.LockNotAvailable:
			return fmt.Errorf("db conflict: %w", apperrors.ErrConcurrencyConflict)
		}
	}

	return fmt.Errorf("db error: %w", err)
}
