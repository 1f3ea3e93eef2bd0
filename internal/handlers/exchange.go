package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/handlers/render"
	"github.com/akryukov/gachamart/internal/handlers/userctx"
	"github.com/akryukov/gachamart/internal/logger"
)

func handleExchange(exchangeService exchangeService, l logger.Logger) http.Handler {
	type request struct {
		RecipeID uuid.UUID `json:"recipe_id" validate:"required"`
		Target   string    `json:"target" validate:"required,max=128"`
	}

	type response struct {
		OrderID   uuid.UUID `json:"order_id"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		order, err := exchangeService.Exchange(r.Context(), user.ID, req.RecipeID, req.Target)

		switch {
		case err == nil:
			render.JSONWithStatus(w, response{order.ID, order.Status, order.CreatedAt}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrRecipeUnavailable):
			render.ServiceError(w, "Recipe not available", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInsufficientMaterials):
			render.ServiceError(w, "Not enough items for this recipe", http.StatusConflict)
		case errors.Is(err, apperrors.ErrConcurrencyConflict):
			render.ServiceError(w, "Conflicting update, retry the request", http.StatusConflict)
		default:
			l.Error("Failed to exchange", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListRecipes(exchangeService exchangeService, l logger.Logger) http.Handler {
	type lineView struct {
		PrizeID  uuid.UUID `json:"prize_id"`
		Quantity int32     `json:"quantity"`
	}

	type recipeView struct {
		ID    uuid.UUID  `json:"id"`
		Name  string     `json:"name"`
		Lines []lineView `json:"lines"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recipes, err := exchangeService.ListRecipes(r.Context())

		switch err {
		case nil:
			views := make([]recipeView, 0, len(recipes))
			for _, recipe := range recipes {
				lines := make([]lineView, 0, len(recipe.Lines))
				for _, line := range recipe.Lines {
					lines = append(lines, lineView{line.PrizeID, line.Quantity})
				}
				views = append(views, recipeView{recipe.ID, recipe.Name, lines})
			}
			render.JSON(w, views)
		default:
			l.Error("Failed to list recipes", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListOrders(exchangeService exchangeService, l logger.Logger) http.Handler {
	type orderView struct {
		ID        uuid.UUID   `json:"id"`
		RecipeID  uuid.UUID   `json:"recipe_id"`
		Target    string      `json:"target"`
		Status    string      `json:"status"`
		CreatedAt time.Time   `json:"created_at"`
		ItemIDs   []uuid.UUID `json:"item_ids"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		orders, err := exchangeService.ListOrders(r.Context(), user.ID)

		switch err {
		case nil:
			views := make([]orderView, 0, len(orders))
			for _, order := range orders {
				views = append(views, orderView{
					ID:        order.ID,
					RecipeID:  order.RecipeID,
					Target:    order.Target,
					Status:    order.Status,
					CreatedAt: order.CreatedAt,
					ItemIDs:   order.ItemIDs,
				})
			}
			render.JSON(w, views)
		default:
			l.Error("Failed to list orders", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
