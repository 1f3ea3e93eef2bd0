package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/handlers/render"
	"github.com/akryukov/gachamart/internal/handlers/userctx"
	"github.com/akryukov/gachamart/internal/logger"
)

type drawnItem struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Value  float64   `json:"value"`
	Rarity string    `json:"rarity"`
}

func handleDraw(drawService drawService, l logger.Logger) http.Handler {
	type request struct {
		PoolID uuid.UUID `json:"pool_id" validate:"required"`
		Count  int       `json:"count" validate:"required,min=1,max=10"`
	}

	type response struct {
		Items   []drawnItem `json:"items"`
		Cost    float64     `json:"cost"`
		Balance float64     `json:"balance"`
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

		result, err := drawService.Draw(r.Context(), user.ID, req.PoolID, req.Count)

		switch {
		case err == nil:
			items := make([]drawnItem, 0, len(result.Items))
			for _, item := range result.Items {
				value, _ := item.Value.Float64()
				items = append(items, drawnItem{item.ID, item.Name, value, item.Rarity})
			}
			cost, _ := result.Cost.Float64()
			balance, _ := result.Balance.Float64()
			render.JSON(w, response{items, cost, balance})
		case errors.Is(err, apperrors.ErrPoolNotFound):
			render.ServiceError(w, "Prize pool not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrBalanceInsufficient):
			render.ServiceError(w, "Insufficient balance", http.StatusPaymentRequired)
		case errors.Is(err, apperrors.ErrNoEligiblePrizes):
			render.ServiceError(w, "Pool has no eligible prizes", http.StatusConflict)
		case errors.Is(err, apperrors.ErrDrawCountInvalid):
			render.ServiceError(w, "Draw count out of range", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrConcurrencyConflict):
			render.ServiceError(w, "Conflicting update, retry the draw", http.StatusConflict)
		default:
			l.Error("Failed to draw", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListPrizes(drawService drawService, l logger.Logger) http.Handler {
	type prizeView struct {
		ID     uuid.UUID `json:"id"`
		Name   string    `json:"name"`
		Icon   string    `json:"icon,omitempty"`
		Value  float64   `json:"value"`
		Rarity string    `json:"rarity"`
		Chance float64   `json:"chance"`
	}

	type response struct {
		PoolID   uuid.UUID   `json:"pool_id"`
		Name     string      `json:"name"`
		UnitCost float64     `json:"unit_cost"`
		Prizes   []prizeView `json:"prizes"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		poolID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid pool id", http.StatusBadRequest)
			return
		}

		pool, prizes, err := drawService.PoolPrizes(r.Context(), poolID)

		switch {
		case err == nil:
			total := 0.0
			for _, p := range prizes {
				weight, _ := p.Weight.Float64()
				total += weight
			}

			views := make([]prizeView, 0, len(prizes))
			for _, p := range prizes {
				value, _ := p.Value.Float64()
				weight, _ := p.Weight.Float64()
				chance := 0.0
				if total > 0 {
					chance = weight / total
				}
				views = append(views, prizeView{p.ID, p.Name, p.Icon, value, p.Rarity, chance})
			}

			unitCost, _ := pool.UnitCost.Float64()
			render.JSON(w, response{pool.ID, pool.Name, unitCost, views})
		case errors.Is(err, apperrors.ErrPoolNotFound):
			render.ServiceError(w, "Prize pool not found", http.StatusNotFound)
		default:
			l.Error("Failed to list prizes", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
