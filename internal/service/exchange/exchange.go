package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/models"
	"github.com/akryukov/gachamart/internal/repository"
)

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

// Exchange consumes the recipe's required items and creates a pending
// fulfillment order. No currency moves: the reward is delivered out of
// band by the fulfillment collaborator. Consumed items end up in the
// same soft deleted state as decomposed ones.
func (s *Service) Exchange(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID, target string) (models.Order, error) {
	var order models.Order

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		now := s.now()

		recipe, err := st.Recipe().GetActiveRecipe(ctx, recipeID)
		if err != nil {
			return err
		}
		if len(recipe.Lines) == 0 {
			return apperrors.ErrRecipeUnavailable
		}

		var consumed []uuid.UUID
		for _, line := range recipe.Lines {
			items, err := st.Inventory().LockOwnedByPrize(ctx, userID, line.PrizeID, line.Quantity)
			if err != nil {
				return err
			}

			if int32(len(items)) < line.Quantity {
				return apperrors.ErrInsufficientMaterials
			}

			for _, item := range items {
				consumed = append(consumed, item.ID)
			}
		}

		if err := st.Inventory().MarkDecomposed(ctx, consumed, now); err != nil {
			return err
		}

		order, err = st.Order().CreateOrder(ctx, models.Order{
			ID:         uuid.New(),
			CreatedAt:  now,
			UserID:     userID,
			RecipeID:   recipe.ID,
			ShopItemID: recipe.ShopItemID,
			Target:     target,
			Status:     models.OrderStatusPending,
			ItemIDs:    consumed,
		})

		return err
	})
	if err != nil {
		return models.Order{}, fmt.Errorf("exchange failed: %w", err)
	}

	return order, nil
}

// ListRecipes returns the active recipe catalog
func (s *Service) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	return s.storage.Recipe().ListActiveRecipes(ctx)
}

// ListOrders returns user orders, newest first
func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.storage.Order().ListOrders(ctx, userID)
}
