package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akryukov/gachamart/internal/models"
)

// Storage gives access to every entity repository bound to the same
// database handle. InTx runs fn against a Storage bound to a single
// database transaction: if fn returns nil the transaction commits,
// otherwise it rolls back and no partial effect remains visible.
type Storage interface {
	User() UserRepo
	Balance() BalanceRepo
	Pool() PoolRepo
	Inventory() InventoryRepo
	Recipe() RecipeRepo
	Order() OrderRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Balance repository interface
type BalanceRepo interface {
	// Create zero balance for user, exactly one balance row per user
	CreateBalance(ctx context.Context, userID uuid.UUID) error

	// Get user balance
	// With forUpdate the row is locked until the enclosing transaction ends
	GetBalance(ctx context.Context, userID uuid.UUID, forUpdate bool) (models.Balance, error)

	// Apply amount to the running balance: income credits, expense debits.
	// Must return apperrors.ErrBalanceInsufficient when the result would be negative
	UpdateBalance(ctx context.Context, userID uuid.UUID, kind string, amount decimal.Decimal) (models.Balance, error)

	// Append one ledger record, records are never updated or deleted
	CreateTransaction(ctx context.Context, tr models.Transaction) (models.Transaction, error)

	// List user ledger records newest first, optionally filtered by kinds
	ListTransactions(ctx context.Context, userID uuid.UUID, kinds []string) ([]models.Transaction, error)
}

// Prize pool repository interface
type PoolRepo interface {
	// Get active pool by id
	// If pool not found or inactive must return apperrors.ErrPoolNotFound
	GetPool(ctx context.Context, poolID uuid.UUID) (models.Pool, error)

	// List active entries of the pool in stable pool order.
	// With forUpdate the rows are locked so concurrent draws against the
	// same pool serialize on its stock and weight columns
	ListActivePrizes(ctx context.Context, poolID uuid.UUID, forUpdate bool) ([]models.Prize, error)

	// Persist weight, base_weight and stock of a single entry
	SavePrizeState(ctx context.Context, prize models.Prize) error

	// Catalog writes, used by the admin boundary and tests
	CreatePool(ctx context.Context, pool models.Pool) (models.Pool, error)
	CreatePrize(ctx context.Context, prize models.Prize) (models.Prize, error)
}

// Inventory repository interface
type InventoryRepo interface {
	// Insert one row per drawn prize
	InsertItems(ctx context.Context, items []models.InventoryItem) ([]models.InventoryItem, error)

	// Lock the named items for update, filtered to the owner and not yet
	// decomposed. Items that don't match are silently absent from the result
	LockItems(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]models.InventoryItem, error)

	// Lock up to limit not decomposed items of the prize owned by user,
	// oldest first
	LockOwnedByPrize(ctx context.Context, userID uuid.UUID, prizeID uuid.UUID, limit int32) ([]models.InventoryItem, error)

	// Soft delete: set decomposed flag and timestamp
	MarkDecomposed(ctx context.Context, itemIDs []uuid.UUID, at time.Time) error

	// List user items, newest first
	ListItems(ctx context.Context, userID uuid.UUID, includeDecomposed bool) ([]models.InventoryItem, error)
}

// Exchange recipe repository interface
type RecipeRepo interface {
	// Get active recipe with lines
	// If recipe missing or inactive must return apperrors.ErrRecipeUnavailable
	GetActiveRecipe(ctx context.Context, recipeID uuid.UUID) (models.Recipe, error)

	// List active recipes with lines ordered by sort_order
	ListActiveRecipes(ctx context.Context) ([]models.Recipe, error)

	// Catalog write, used by the admin boundary and tests
	CreateRecipe(ctx context.Context, recipe models.Recipe) (models.Recipe, error)
}

// Fulfillment order repository interface
type OrderRepo interface {
	// Create order together with references to the consumed items
	CreateOrder(ctx context.Context, order models.Order) (models.Order, error)

	// List user orders newest first
	ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}
