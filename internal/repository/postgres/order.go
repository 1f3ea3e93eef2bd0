package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/akryukov/gachamart/internal/models"
)

type OrderRepo struct {
	db DBTX
}

const createOrder = `-- name: CreateOrder
INSERT INTO orders (id, created_at, user_id, recipe_id, shop_item_id, target, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, user_id, recipe_id, shop_item_id, target, status
`

const createOrderItem = `-- name: CreateOrderItem
INSERT INTO order_items (order_id, item_id)
VALUES ($1, $2)
`

func (r *OrderRepo) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	itemIDs := order.ItemIDs

	rows, _ := r.db.Query(ctx, createOrder,
		order.ID, order.CreatedAt, order.UserID, order.RecipeID, order.ShopItemID, order.Target, order.Status,
	)
	order, err := pgx.CollectOneRow(rows, rowToOrder)
	if err != nil {
		return order, dbError(err)
	}

	for _, itemID := range itemIDs {
		_, err := r.db.Exec(ctx, createOrderItem, order.ID, itemID)
		if err != nil {
			return order, dbError(err)
		}
	}

	order.ItemIDs = itemIDs
	return order, nil
}

const listOrders = `-- name: ListOrders
SELECT o.id, o.created_at, o.user_id, o.recipe_id, o.shop_item_id, o.target, o.status
FROM orders o
WHERE o.user_id = $1
ORDER BY o.created_at DESC
`

const listOrderItems = `-- name: ListOrderItems
SELECT item_id FROM order_items
WHERE order_id = $1
ORDER BY item_id
`

func (r *OrderRepo) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, _ := r.db.Query(ctx, listOrders, userID)
	orders, err := pgx.CollectRows(rows, rowToOrder)

	if err != nil {
		return nil, dbError(err)
	}

	for i := range orders {
		rows, _ := r.db.Query(ctx, listOrderItems, orders[i].ID)
		orders[i].ItemIDs, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (uuid.UUID, error) {
			var id uuid.UUID
			err := row.Scan(&id)
			return id, err
		})
		if err != nil {
			return nil, dbError(err)
		}
	}

	return orders, nil
}

func rowToOrder(row pgx.CollectableRow) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.CreatedAt, &o.UserID, &o.RecipeID, &o.ShopItemID, &o.Target, &o.Status)
	return o, err
}
