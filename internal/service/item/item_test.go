package item

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/models"
	"github.com/akryukov/gachamart/internal/repository"
	"github.com/akryukov/gachamart/internal/repository/postgres"
	"github.com/akryukov/gachamart/internal/testutil"
)

// Seed a user with a balance and owned items worth 100 and 5
func seedOwner(t *testing.T, storage repository.Storage) (models.User, []models.InventoryItem) {
	t.Helper()

	user, err := storage.User().CreateUser(t.Context(), "collector", "hash")
	require.NoError(t, err)
	err = storage.Balance().CreateBalance(t.Context(), user.ID)
	require.NoError(t, err)

	pool, err := storage.Pool().CreatePool(t.Context(), models.Pool{Name: "main", UnitCost: decimal.NewFromInt(10), Active: true})
	require.NoError(t, err)
	prize, err := storage.Pool().CreatePrize(t.Context(), models.Prize{
		PoolID: pool.ID,
		Name:   "golden dragon",
		Value:  decimal.NewFromInt(100),
		Weight: decimal.NewFromInt(5),
		Rarity: models.RarityLegendary,
		Active: true,
	})
	require.NoError(t, err)

	items, err := storage.Inventory().InsertItems(t.Context(), []models.InventoryItem{
		{UserID: user.ID, PrizeID: prize.ID, Name: "golden dragon", Value: decimal.NewFromInt(100), Rarity: models.RarityLegendary, ObtainedAt: time.Now()},
		{UserID: user.ID, PrizeID: prize.ID, Name: "silver shield", Value: decimal.NewFromInt(5), Rarity: models.RarityRare, ObtainedAt: time.Now()},
	})
	require.NoError(t, err)

	return user, items
}

func TestDecompose(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, fn func(repository.Storage)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(postgres.NewStorage(tx))
		})
	}

	t.Run("credits recorded value", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			user, items := seedOwner(t, storage)
			svc := NewService(storage)

			result, err := svc.Decompose(t.Context(), user.ID, []uuid.UUID{items[0].ID}, decimal.NewFromInt(100))

			require.NoError(t, err, "decompose should not fail")
			require.True(t, result.Credited.Equal(decimal.NewFromInt(100)), "credited exactly the recorded value")
			require.True(t, result.Balance.Equal(decimal.NewFromInt(100)))

			left, err := storage.Inventory().ListItems(t.Context(), user.ID, false)
			require.NoError(t, err)
			require.Len(t, left, 1, "decomposed item leaves the active inventory")

			transactions, err := storage.Balance().ListTransactions(t.Context(), user.ID, []string{models.TransactionIncome})
			require.NoError(t, err)
			require.Len(t, transactions, 1)
			require.Equal(t, "golden dragon", transactions[0].Description)
		})
	})

	t.Run("multiple items summed", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			user, items := seedOwner(t, storage)
			svc := NewService(storage)

			result, err := svc.Decompose(t.Context(), user.ID, []uuid.UUID{items[0].ID, items[1].ID}, decimal.NewFromInt(105))

			require.NoError(t, err)
			require.True(t, result.Credited.Equal(decimal.NewFromInt(105)))
		})
	})

	t.Run("claimed total within epsilon accepted", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			user, items := seedOwner(t, storage)
			svc := NewService(storage)

			claimed := decimal.NewFromFloat(100.01)

			_, err := svc.Decompose(t.Context(), user.ID, []uuid.UUID{items[0].ID}, claimed)

			require.NoError(t, err, "one minor unit of drift is tolerated")
		})
	})

	t.Run("stale claimed total rejected", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			user, items := seedOwner(t, storage)
			svc := NewService(storage)

			_, err := svc.Decompose(t.Context(), user.ID, []uuid.UUID{items[0].ID}, decimal.NewFromInt(90))

			require.ErrorIs(t, err, apperrors.ErrValueMismatch)

			left, err := storage.Inventory().ListItems(t.Context(), user.ID, false)
			require.NoError(t, err)
			require.Len(t, left, 2, "rejected decompose must not consume items")

			balance, err := storage.Balance().GetBalance(t.Context(), user.ID, false)
			require.NoError(t, err)
			require.True(t, balance.Current.IsZero(), "rejected decompose must not credit")
		})
	})

	t.Run("decompose twice rejected", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			user, items := seedOwner(t, storage)
			svc := NewService(storage)

			_, err := svc.Decompose(t.Context(), user.ID, []uuid.UUID{items[0].ID}, decimal.NewFromInt(100))
			require.NoError(t, err)

			_, err = svc.Decompose(t.Context(), user.ID, []uuid.UUID{items[0].ID}, decimal.NewFromInt(100))

			require.ErrorIs(t, err, apperrors.ErrItemsUnavailable, "item converts to currency exactly once")

			balance, err := storage.Balance().GetBalance(t.Context(), user.ID, false)
			require.NoError(t, err)
			require.True(t, balance.Current.Equal(decimal.NewFromInt(100)), "no double credit")
		})
	})

	t.Run("foreign item rejected", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			user, items := seedOwner(t, storage)
			other, err := storage.User().CreateUser(t.Context(), "other", "hash")
			require.NoError(t, err)
			err = storage.Balance().CreateBalance(t.Context(), other.ID)
			require.NoError(t, err)

			svc := NewService(storage)

			_, err = svc.Decompose(t.Context(), other.ID, []uuid.UUID{items[0].ID}, decimal.NewFromInt(100))

			require.ErrorIs(t, err, apperrors.ErrItemsUnavailable, "item of another user looks unavailable")

			left, err := storage.Inventory().ListItems(t.Context(), user.ID, false)
			require.NoError(t, err)
			require.Len(t, left, 2, "owner's items untouched")
		})
	})

	t.Run("one bad item fails the whole set", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			user, items := seedOwner(t, storage)
			svc := NewService(storage)

			_, err := svc.Decompose(t.Context(), user.ID, []uuid.UUID{items[0].ID, uuid.New()}, decimal.NewFromInt(100))

			require.ErrorIs(t, err, apperrors.ErrItemsUnavailable)

			left, err := storage.Inventory().ListItems(t.Context(), user.ID, false)
			require.NoError(t, err)
			require.Len(t, left, 2, "all or nothing")
		})
	})

	t.Run("duplicate ids deduplicated", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			user, items := seedOwner(t, storage)
			svc := NewService(storage)

			result, err := svc.Decompose(t.Context(), user.ID, []uuid.UUID{items[0].ID, items[0].ID}, decimal.NewFromInt(100))

			require.NoError(t, err, "same id twice counts once")
			require.True(t, result.Credited.Equal(decimal.NewFromInt(100)))
		})
	})

	t.Run("empty set rejected", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			user, _ := seedOwner(t, storage)
			svc := NewService(storage)

			_, err := svc.Decompose(t.Context(), user.ID, nil, decimal.Zero)

			require.ErrorIs(t, err, apperrors.ErrItemsUnavailable)
		})
	})
}

// Two calls race to decompose the same item. Fixtures are committed on
// the real pool so the two transactions contend on the item row lock,
// the rollback helper can't be used here.
func TestDecomposeConcurrent(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	storage := postgres.NewStorage(pg.Pool)

	user, items := seedOwner(t, storage)
	svc := NewService(storage)

	start := make(chan struct{})
	errs := make(chan error, 2)

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			<-start
			_, err := svc.Decompose(t.Context(), user.ID, []uuid.UUID{items[0].ID}, decimal.NewFromInt(100))
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var done, rejected int
	for err := range errs {
		switch {
		case err == nil:
			done++
		case errors.Is(err, apperrors.ErrItemsUnavailable):
			rejected++
		default:
			t.Fatalf("unexpected decompose error: %v", err)
		}
	}
	require.Equal(t, 1, done, "exactly one call converts the item")
	require.Equal(t, 1, rejected, "the concurrent duplicate is rejected")

	balance, err := storage.Balance().GetBalance(t.Context(), user.ID, false)
	require.NoError(t, err)
	require.True(t, balance.Current.Equal(decimal.NewFromInt(100)), "value credited exactly once")

	transactions, err := storage.Balance().ListTransactions(t.Context(), user.ID, []string{models.TransactionIncome})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
}

func TestList(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, fn func(repository.Storage)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(postgres.NewStorage(tx))
		})
	}

	t.Run("active items only by default", func(t *testing.T) {
		inTx(t, func(storage repository.Storage) {
			user, items := seedOwner(t, storage)
			svc := NewService(storage)

			_, err := svc.Decompose(t.Context(), user.ID, []uuid.UUID{items[1].ID}, decimal.NewFromInt(5))
			require.NoError(t, err)

			got, err := svc.List(t.Context(), user.ID, false)

			require.NoError(t, err)
			require.Len(t, got, 1)

			all, err := svc.List(t.Context(), user.ID, true)

			require.NoError(t, err)
			require.Len(t, all, 2, "history view keeps decomposed items")
		})
	})
}
