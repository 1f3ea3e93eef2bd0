package draw

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/models"
	"github.com/akryukov/gachamart/internal/repository"
	"github.com/akryukov/gachamart/internal/service/ledgertext"
)

const (
	MinCount = 1
	MaxCount = 10
)

type Service struct {
	storage repository.Storage
	rand    Rand
	now     func() time.Time
}

type Option func(*Service)

// WithRand substitutes the random source, used by tests
func WithRand(r Rand) Option {
	return func(s *Service) { s.rand = r }
}

// WithNow substitutes the clock, used by tests
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(storage repository.Storage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		rand:    DefaultRand,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Result of one successful draw call
type Result struct {
	Items   []models.InventoryItem
	Cost    decimal.Decimal
	Balance decimal.Decimal
}

// PoolPrizes returns the pool and its active entries with effective
// weights, normalized in memory only. Nothing is locked or persisted,
// this is the public odds view.
func (s *Service) PoolPrizes(ctx context.Context, poolID uuid.UUID) (models.Pool, []models.Prize, error) {
	pool, err := s.storage.Pool().GetPool(ctx, poolID)
	if err != nil {
		return pool, nil, err
	}

	prizes, err := s.storage.Pool().ListActivePrizes(ctx, poolID, false)
	if err != nil {
		return pool, nil, err
	}

	Normalize(prizes)

	return pool, prizes, nil
}

// Draw spends count * pool unit cost and awards count prizes.
//
// The whole flow runs in one storage transaction: the balance row and
// pool entries are locked first, so concurrent draws against the same
// finite stock entry serialize and stock never goes below zero. Any
// failure rolls everything back, there is no partial debit.
func (s *Service) Draw(ctx context.Context, userID uuid.UUID, poolID uuid.UUID, count int) (Result, error) {
	var result Result

	if count < MinCount || count > MaxCount {
		return result, apperrors.ErrDrawCountInvalid
	}

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		now := s.now()

		pool, err := st.Pool().GetPool(ctx, poolID)
		if err != nil {
			return err
		}

		balance, err := st.Balance().GetBalance(ctx, userID, true)
		if err != nil {
			return err
		}

		cost := pool.UnitCost.Mul(decimal.NewFromInt(int64(count)))
		if balance.Current.LessThan(cost) {
			return apperrors.ErrBalanceInsufficient
		}

		prizes, err := st.Pool().ListActivePrizes(ctx, poolID, true)
		if err != nil {
			return err
		}

		for _, p := range Normalize(prizes) {
			if err := st.Pool().SavePrizeState(ctx, p); err != nil {
				return err
			}
		}

		items := make([]models.InventoryItem, 0, count)
		for range count {
			won, err := Select(s.rand, prizes)
			if err != nil {
				return err
			}

			for i := range prizes {
				if prizes[i].ID != won.ID {
					continue
				}

				if Consume(&prizes[i]) {
					if err := st.Pool().SavePrizeState(ctx, prizes[i]); err != nil {
						return err
					}
				}
				break
			}

			items = append(items, models.InventoryItem{
				UserID:     userID,
				PrizeID:    won.ID,
				Name:       won.Name,
				Value:      won.Value,
				Rarity:     won.Rarity,
				ObtainedAt: now,
			})
		}

		balance, err = st.Balance().UpdateBalance(ctx, userID, models.TransactionExpense, cost)
		if err != nil {
			return err
		}

		_, err = st.Balance().CreateTransaction(ctx, models.Transaction{
			ID:          uuid.New(),
			CreatedAt:   now,
			UserID:      userID,
			Kind:        models.TransactionExpense,
			Amount:      cost,
			Description: ledgertext.Truncate(fmt.Sprintf("draw x%d from pool '%s'", count, pool.Name), ledgertext.MaxDescription),
		})
		if err != nil {
			return err
		}

		items, err = st.Inventory().InsertItems(ctx, items)
		if err != nil {
			return err
		}

		// Audit record of what was won, moves no balance
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.Name)
		}
		_, err = st.Balance().CreateTransaction(ctx, models.Transaction{
			ID:          uuid.New(),
			CreatedAt:   now,
			UserID:      userID,
			Kind:        models.TransactionNote,
			Amount:      decimal.Zero,
			Description: ledgertext.JoinNames(names),
		})
		if err != nil {
			return err
		}

		result = Result{Items: items, Cost: cost, Balance: balance.Current}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("draw failed: %w", err)
	}

	return result, nil
}
