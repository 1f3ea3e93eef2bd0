package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/handlers/render"
	"github.com/akryukov/gachamart/internal/handlers/userctx"
	"github.com/akryukov/gachamart/internal/logger"
)

func handleListItems(itemService itemService, l logger.Logger) http.Handler {
	type itemView struct {
		ID           uuid.UUID  `json:"id"`
		PrizeID      uuid.UUID  `json:"prize_id"`
		Name         string     `json:"name"`
		Value        float64    `json:"value"`
		Rarity       string     `json:"rarity"`
		ObtainedAt   time.Time  `json:"obtained_at"`
		Decomposed   bool       `json:"decomposed"`
		DecomposedAt *time.Time `json:"decomposed_at,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		includeDecomposed := r.URL.Query().Get("all") == "true"

		items, err := itemService.List(r.Context(), user.ID, includeDecomposed)

		switch err {
		case nil:
			views := make([]itemView, 0, len(items))
			for _, item := range items {
				value, _ := item.Value.Float64()
				views = append(views, itemView{
					ID:           item.ID,
					PrizeID:      item.PrizeID,
					Name:         item.Name,
					Value:        value,
					Rarity:       item.Rarity,
					ObtainedAt:   item.ObtainedAt,
					Decomposed:   item.Decomposed,
					DecomposedAt: item.DecomposedAt,
				})
			}
			render.JSON(w, views)
		default:
			l.Error("Failed to list items", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDecompose(itemService itemService, l logger.Logger) http.Handler {
	type request struct {
		ItemIDs    []uuid.UUID     `json:"item_ids" validate:"required,min=1"`
		TotalValue decimal.Decimal `json:"total_value"`
	}

	type response struct {
		Credited float64 `json:"credited"`
		Balance  float64 `json:"balance"`
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

		result, err := itemService.Decompose(r.Context(), user.ID, req.ItemIDs, req.TotalValue)

		switch {
		case err == nil:
			credited, _ := result.Credited.Float64()
			balance, _ := result.Balance.Float64()
			render.JSON(w, response{credited, balance})
		case errors.Is(err, apperrors.ErrItemsUnavailable):
			render.ServiceError(w, "Some items can't be decomposed", http.StatusConflict)
		case errors.Is(err, apperrors.ErrValueMismatch):
			render.ServiceError(w, "Claimed value differs from actual", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrConcurrencyConflict):
			render.ServiceError(w, "Conflicting update, retry the request", http.StatusConflict)
		default:
			l.Error("Failed to decompose items", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
