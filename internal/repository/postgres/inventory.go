package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/models"
)

type InventoryRepo struct {
	db DBTX
}

const insertItem = `-- name: InsertItem
INSERT INTO inventory_items (id, user_id, prize_id, name, value, rarity, obtained_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, prize_id, name, value, rarity, obtained_at, decomposed, decomposed_at
`

func (r *InventoryRepo) InsertItems(ctx context.Context, items []models.InventoryItem) ([]models.InventoryItem, error) {
	inserted := make([]models.InventoryItem, 0, len(items))

	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}

		rows, _ := r.db.Query(ctx, insertItem,
			item.ID, item.UserID, item.PrizeID, item.Name, item.Value, item.Rarity, item.ObtainedAt,
		)
		item, err := pgx.CollectOneRow(rows, rowToItem)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return nil, apperrors.ErrUserNotFound
			}

			return nil, dbError(err)
		}

		inserted = append(inserted, item)
	}

	return inserted, nil
}

const lockItems = `-- name: LockItems
SELECT id, user_id, prize_id, name, value, rarity, obtained_at, decomposed, decomposed_at
FROM inventory_items
WHERE user_id = $1 AND id = ANY($2) AND NOT decomposed
ORDER BY id
FOR UPDATE
`

// LockItems locks matching rows until the enclosing transaction ends.
// Rows the user doesn't own or that are decomposed already are simply
// not returned, the caller compares counts.
func (r *InventoryRepo) LockItems(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]models.InventoryItem, error) {
	rows, _ := r.db.Query(ctx, lockItems, userID, itemIDs)
	items, err := pgx.CollectRows(rows, rowToItem)

	if err != nil {
		return nil, dbError(err)
	}

	return items, nil
}

const lockOwnedByPrize = `-- name: LockOwnedByPrize
SELECT id, user_id, prize_id, name, value, rarity, obtained_at, decomposed, decomposed_at
FROM inventory_items
WHERE user_id = $1 AND prize_id = $2 AND NOT decomposed
ORDER BY obtained_at, id
LIMIT $3
FOR UPDATE
`

func (r *InventoryRepo) LockOwnedByPrize(ctx context.Context, userID uuid.UUID, prizeID uuid.UUID, limit int32) ([]models.InventoryItem, error) {
	rows, _ := r.db.Query(ctx, lockOwnedByPrize, userID, prizeID, limit)
	items, err := pgx.CollectRows(rows, rowToItem)

	if err != nil {
		return nil, dbError(err)
	}

	return items, nil
}

const markDecomposed = `-- name: MarkDecomposed
UPDATE inventory_items
SET decomposed = true, decomposed_at = $2
WHERE id = ANY($1) AND NOT decomposed
`

func (r *InventoryRepo) MarkDecomposed(ctx context.Context, itemIDs []uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, markDecomposed, itemIDs, at)
	if err != nil {
		return dbError(err)
	}

	// Every named item must flip exactly once
	if tag.RowsAffected() != int64(len(itemIDs)) {
		return apperrors.ErrItemsUnavailable
	}

	return nil
}

const listItems = `-- name: ListItems
SELECT id, user_id, prize_id, name, value, rarity, obtained_at, decomposed, decomposed_at
FROM inventory_items
WHERE user_id = $1 AND ($2 OR NOT decomposed)
ORDER BY obtained_at DESC, id
`

func (r *InventoryRepo) ListItems(ctx context.Context, userID uuid.UUID, includeDecomposed bool) ([]models.InventoryItem, error) {
	rows, _ := r.db.Query(ctx, listItems, userID, includeDecomposed)
	items, err := pgx.CollectRows(rows, rowToItem)

	if err != nil {
		return nil, dbError(err)
	}

	return items, nil
}

func rowToItem(row pgx.CollectableRow) (models.InventoryItem, error) {
	var i models.InventoryItem
	err := row.Scan(&i.ID, &i.UserID, &i.PrizeID, &i.Name, &i.Value, &i.Rarity, &i.ObtainedAt, &i.Decomposed, &i.DecomposedAt)
	return i, err
}
