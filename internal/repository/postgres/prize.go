package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/models"
)

type PoolRepo struct {
	db DBTX
}

const getPool = `-- name: GetPool
SELECT id, created_at, name, unit_cost, active FROM pools
WHERE id = $1 AND active
`

func (r *PoolRepo) GetPool(ctx context.Context, poolID uuid.UUID) (models.Pool, error) {
	rows, _ := r.db.Query(ctx, getPool, poolID)
	pool, err := pgx.CollectOneRow(rows, rowToPool)

	switch {
	case err == nil:
		return pool, nil
	case errors.Is(err, pgx.ErrNoRows):
		return pool, apperrors.ErrPoolNotFound
	default:
		return pool, dbError(err)
	}
}

const listActivePrizes = `-- name: ListActivePrizes
SELECT id, pool_id, name, icon, value, weight, base_weight, rarity, stock, active, sort_order
FROM prizes
WHERE pool_id = $1 AND active
ORDER BY sort_order, id
`

// Lock variant serializes stock check-and-decrement across concurrent draws
const listActivePrizesForUpdate = listActivePrizes + `FOR UPDATE
`

func (r *PoolRepo) ListActivePrizes(ctx context.Context, poolID uuid.UUID, forUpdate bool) ([]models.Prize, error) {
	query := listActivePrizes
	if forUpdate {
		query = listActivePrizesForUpdate
	}

	rows, _ := r.db.Query(ctx, query, poolID)
	prizes, err := pgx.CollectRows(rows, rowToPrize)

	if err != nil {
		return nil, dbError(err)
	}

	return prizes, nil
}

const savePrizeState = `-- name: SavePrizeState
UPDATE prizes
SET weight = $2, base_weight = $3, stock = $4
WHERE id = $1
`

func (r *PoolRepo) SavePrizeState(ctx context.Context, prize models.Prize) error {
	tag, err := r.db.Exec(ctx, savePrizeState, prize.ID, prize.Weight, prize.BaseWeight, prize.Stock)
	if err != nil {
		return dbError(err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrPoolNotFound
	}

	return nil
}

const createPool = `-- name: CreatePool
INSERT INTO pools (id, name, unit_cost, active)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, name, unit_cost, active
`

func (r *PoolRepo) CreatePool(ctx context.Context, pool models.Pool) (models.Pool, error) {
	if pool.ID == uuid.Nil {
		pool.ID = uuid.New()
	}

	rows, _ := r.db.Query(ctx, createPool, pool.ID, pool.Name, pool.UnitCost, pool.Active)
	pool, err := pgx.CollectOneRow(rows, rowToPool)

	if err != nil {
		return pool, dbError(err)
	}

	return pool, nil
}

const createPrize = `-- name: CreatePrize
INSERT INTO prizes (id, pool_id, name, icon, value, weight, base_weight, rarity, stock, active, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, pool_id, name, icon, value, weight, base_weight, rarity, stock, active, sort_order
`

func (r *PoolRepo) CreatePrize(ctx context.Context, prize models.Prize) (models.Prize, error) {
	if prize.ID == uuid.Nil {
		prize.ID = uuid.New()
	}

	rows, _ := r.db.Query(ctx, createPrize,
		prize.ID, prize.PoolID, prize.Name, prize.Icon, prize.Value, prize.Weight,
		prize.BaseWeight, prize.Rarity, prize.Stock, prize.Active, prize.SortOrder,
	)
	prize, err := pgx.CollectOneRow(rows, rowToPrize)

	if err != nil {
		return prize, dbError(err)
	}

	return prize, nil
}

func rowToPool(row pgx.CollectableRow) (models.Pool, error) {
	var p models.Pool
	err := row.Scan(&p.ID, &p.CreatedAt, &p.Name, &p.UnitCost, &p.Active)
	return p, err
}

func rowToPrize(row pgx.CollectableRow) (models.Prize, error) {
	var p models.Prize
	err := row.Scan(&p.ID, &p.PoolID, &p.Name, &p.Icon, &p.Value, &p.Weight, &p.BaseWeight, &p.Rarity, &p.Stock, &p.Active, &p.SortOrder)
	return p, err
}
