package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/models"
	"github.com/akryukov/gachamart/internal/repository"
	"github.com/akryukov/gachamart/internal/testutil"
)

func TestPool(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	createPool := func(t *testing.T, storage repository.Storage, active bool) models.Pool {
		t.Helper()

		pool, err := storage.Pool().CreatePool(t.Context(), models.Pool{
			Name:     "main",
			UnitCost: decimal.NewFromInt(10),
			Active:   active,
		})
		require.NoError(t, err)
		return pool
	}

	t.Run("GetPool", func(t *testing.T) {
		t.Run("get active pool", func(t *testing.T) {
			inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
				pool := createPool(t, storage, true)

				got, err := storage.Pool().GetPool(t.Context(), pool.ID)

				require.NoError(t, err, "getting active pool should not fail")
				require.Equal(t, pool.ID, got.ID)
				require.Equal(t, "main", got.Name)
				require.True(t, got.UnitCost.Equal(decimal.NewFromInt(10)))
				require.False(t, got.CreatedAt.IsZero())
			})
		})

		t.Run("inactive pool hidden", func(t *testing.T) {
			inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
				pool := createPool(t, storage, false)

				_, err := storage.Pool().GetPool(t.Context(), pool.ID)

				require.ErrorIs(t, err, apperrors.ErrPoolNotFound, "inactive pool should look absent")
			})
		})

		t.Run("nonexistent pool", func(t *testing.T) {
			inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
				_, err := storage.Pool().GetPool(t.Context(), uuid.New())

				require.ErrorIs(t, err, apperrors.ErrPoolNotFound)
			})
		})
	})

	t.Run("ListActivePrizes", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			pool := createPool(t, storage, true)

			stock := int32(1)
			prizes := []models.Prize{
				{PoolID: pool.ID, Name: "common", Value: decimal.NewFromInt(1), Weight: decimal.NewFromInt(80), Rarity: models.RarityCommon, Active: true, SortOrder: 1},
				{PoolID: pool.ID, Name: "rare", Value: decimal.NewFromInt(5), Weight: decimal.NewFromInt(15), Rarity: models.RarityRare, Active: true, SortOrder: 2},
				{PoolID: pool.ID, Name: "legendary", Value: decimal.NewFromInt(100), Weight: decimal.NewFromInt(5), Rarity: models.RarityLegendary, Stock: &stock, Active: true, SortOrder: 3},
				{PoolID: pool.ID, Name: "retired", Value: decimal.NewFromInt(1), Weight: decimal.NewFromInt(10), Rarity: models.RarityCommon, Active: false, SortOrder: 4},
			}
			for _, p := range prizes {
				_, err := storage.Pool().CreatePrize(t.Context(), p)
				require.NoError(t, err)
			}

			t.Run("stable pool order, inactive hidden", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					got, err := storage.Pool().ListActivePrizes(t.Context(), pool.ID, false)

					require.NoError(t, err, "listing prizes should not fail")
					require.Len(t, got, 3, "inactive entry should be hidden")
					require.Equal(t, "common", got[0].Name)
					require.Equal(t, "rare", got[1].Name)
					require.Equal(t, "legendary", got[2].Name)

					require.Nil(t, got[0].Stock, "unlimited entry has nil stock")
					require.NotNil(t, got[2].Stock, "limited entry keeps its stock")
					require.EqualValues(t, 1, *got[2].Stock)
				})
			})

			t.Run("for update locks rows", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					got, err := storage.Pool().ListActivePrizes(t.Context(), pool.ID, true)

					require.NoError(t, err, "locking list should not fail")
					require.Len(t, got, 3)
				})
			})

			t.Run("empty pool", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					got, err := storage.Pool().ListActivePrizes(t.Context(), uuid.New(), false)

					require.NoError(t, err)
					require.Empty(t, got)
				})
			})
		})
	})

	t.Run("SavePrizeState", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			pool := createPool(t, storage, true)

			stock := int32(2)
			prize, err := storage.Pool().CreatePrize(t.Context(), models.Prize{
				PoolID: pool.ID,
				Name:   "legendary",
				Value:  decimal.NewFromInt(100),
				Weight: decimal.NewFromInt(5),
				Rarity: models.RarityLegendary,
				Stock:  &stock,
				Active: true,
			})
			require.NoError(t, err)

			t.Run("persist weight, base weight and stock", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					base := decimal.NewFromInt(5)
					prize.Weight = decimal.Zero
					prize.BaseWeight = &base
					zero := int32(0)
					prize.Stock = &zero

					err := storage.Pool().SavePrizeState(t.Context(), prize)
					require.NoError(t, err, "saving prize state should not fail")

					got, err := storage.Pool().ListActivePrizes(t.Context(), pool.ID, false)
					require.NoError(t, err)
					require.Len(t, got, 1)
					require.True(t, got[0].Weight.IsZero(), "weight should be persisted")
					require.NotNil(t, got[0].BaseWeight)
					require.True(t, got[0].BaseWeight.Equal(base), "base weight should be persisted")
					require.EqualValues(t, 0, *got[0].Stock, "stock should be persisted")
				})
			})

			t.Run("nonexistent prize", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					missing := prize
					missing.ID = uuid.New()

					err := storage.Pool().SavePrizeState(t.Context(), missing)

					require.Error(t, err, "saving state of unknown prize should fail")
				})
			})
		})
	})
}
