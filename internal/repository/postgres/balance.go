package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/models"
)

type BalanceRepo struct {
	db DBTX
}

const createBalance = `-- name: CreateBalance
INSERT INTO balances (user_id, current)
VALUES ($1, 0)
RETURNING id
`

func (r *BalanceRepo) CreateBalance(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, createBalance, userID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("user balance already exists: %w", err)
		}

		return dbError(err)
	}

	return nil
}

const getBalance = `-- name: GetBalance
SELECT id, user_id, current FROM balances
WHERE user_id = $1
`

// Lock variant serializes concurrent balance mutations per user
const getBalanceForUpdate = getBalance + `FOR UPDATE
`

func (r *BalanceRepo) GetBalance(ctx context.Context, userID uuid.UUID, forUpdate bool) (models.Balance, error) {
	query := getBalance
	if forUpdate {
		query = getBalanceForUpdate
	}

	rows, _ := r.db.Query(ctx, query, userID)
	balance, err := pgx.CollectOneRow(rows, rowToBalance)

	switch {
	case err == nil:
		return balance, nil
	case errors.Is(err, pgx.ErrNoRows):
		return balance, apperrors.ErrUserNotFound
	default:
		return balance, dbError(err)
	}
}

const updateBalance = `-- name: UpdateBalance
UPDATE balances
SET current = current + $2
WHERE user_id = $1
RETURNING id, user_id, current
`

func (r *BalanceRepo) UpdateBalance(ctx context.Context, userID uuid.UUID, kind string, amount decimal.Decimal) (models.Balance, error) {
	var balance models.Balance

	var delta decimal.Decimal
	switch kind {
	case models.TransactionIncome:
		delta = amount
	case models.TransactionExpense:
		delta = amount.Neg()
	default:
		return balance, fmt.Errorf("kind '%s' can't move balance", kind)
	}

	rows, _ := r.db.Query(ctx, updateBalance, userID, delta)
	balance, err := pgx.CollectOneRow(rows, rowToBalance)

	switch {
	case err == nil:
		return balance, nil
	case errors.Is(err, pgx.ErrNoRows):
		return balance, apperrors.ErrUserNotFound
	default:
		// Balance has 'current >= 0' check, violation means overdraft
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return balance, apperrors.ErrBalanceInsufficient
		}

		return balance, dbError(err)
	}
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, created_at, user_id, kind, amount, description)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, user_id, kind, amount, description
`

func (r *BalanceRepo) CreateTransaction(ctx context.Context, tr models.Transaction) (models.Transaction, error) {
	rows, _ := r.db.Query(ctx, createTransaction, tr.ID, tr.CreatedAt, tr.UserID, tr.Kind, tr.Amount, tr.Description)
	tr, err := pgx.CollectOneRow(rows, rowToTransaction)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return tr, apperrors.ErrUserNotFound
		}

		return tr, dbError(err)
	}

	return tr, nil
}

const listTransactions = `-- name: ListTransactions
SELECT id, created_at, user_id, kind, amount, description FROM transactions
WHERE user_id = $1 AND ($2::text[] IS NULL OR kind = ANY($2))
ORDER BY created_at DESC
`

func (r *BalanceRepo) ListTransactions(ctx context.Context, userID uuid.UUID, kinds []string) ([]models.Transaction, error) {
	rows, _ := r.db.Query(ctx, listTransactions, userID, kinds)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)

	if err != nil {
		return nil, dbError(err)
	}

	return transactions, nil
}

func rowToBalance(row pgx.CollectableRow) (models.Balance, error) {
	var b models.Balance
	err := row.Scan(&b.ID, &b.UserID, &b.Current)
	return b, err
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.CreatedAt, &t.UserID, &t.Kind, &t.Amount, &t.Description)
	return t, err
}
