package item

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

// Largest tolerated gap between the claimed and the server computed
// total, one minor currency unit
var valueEpsilon = decimal.New(1, -2)

type Service struct {
	storage repository.Storage
	now     func() time.Time
}

type Option func(*Service)

// WithNow substitutes the clock, used by tests
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(storage repository.Storage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Result of one successful decomposition
type Result struct {
	Credited decimal.Decimal
	Balance  decimal.Decimal
}

// Decompose converts the named items back into balance at their recorded
// value. The server computed sum is authoritative, claimedTotal is only a
// defensive check against a stale client view. All or nothing: one
// unavailable item fails the whole set with no mutation.
func (s *Service) Decompose(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID, claimedTotal decimal.Decimal) (Result, error) {
	var result Result

	itemIDs = dedupe(itemIDs)
	if len(itemIDs) == 0 {
		return result, apperrors.ErrItemsUnavailable
	}

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		now := s.now()

		items, err := st.Inventory().LockItems(ctx, userID, itemIDs)
		if err != nil {
			return err
		}

		// Not owned, decomposed already and nonexistent all look the
		// same to the caller: the item can't be decomposed
		if len(items) != len(itemIDs) {
			return apperrors.ErrItemsUnavailable
		}

		total := decimal.Zero
		names := make([]string, 0, len(items))
		for _, item := range items {
			total = total.Add(item.Value)
			names = append(names, item.Name)
		}

		if total.Sub(claimedTotal).Abs().GreaterThan(valueEpsilon) {
			return apperrors.ErrValueMismatch
		}

		if err := st.Inventory().MarkDecomposed(ctx, itemIDs, now); err != nil {
			return err
		}

		balance, err := st.Balance().UpdateBalance(ctx, userID, models.TransactionIncome, total)
		if err != nil {
			return err
		}

		_, err = st.Balance().CreateTransaction(ctx, models.Transaction{
			ID:          uuid.New(),
			CreatedAt:   now,
			UserID:      userID,
			Kind:        models.TransactionIncome,
			Amount:      total,
			Description: ledgertext.JoinNames(names),
		})
		if err != nil {
			return err
		}

		result = Result{Credited: total, Balance: balance.Current}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("decompose failed: %w", err)
	}

	return result, nil
}

// List returns user items, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, includeDecomposed bool) ([]models.InventoryItem, error) {
	return s.storage.Inventory().ListItems(ctx, userID, includeDecomposed)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	return unique
}
