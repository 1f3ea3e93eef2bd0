package handlers

import (
	"net/http"
	"time"

	"github.com/akryukov/gachamart/internal/handlers/render"
	"github.com/akryukov/gachamart/internal/handlers/userctx"
	"github.com/akryukov/gachamart/internal/logger"
)

func handleUserBalance(userService userService, l logger.Logger) http.Handler {
	type response struct {
		Current float64 `json:"current"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		balance, err := userService.GetBalance(r.Context(), user.ID)

		switch err {
		case nil:
			current, _ := balance.Current.Float64()
			render.JSON(w, response{current})
		default:
			l.Error("Failed to get balance", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListTransactions(userService userService, l logger.Logger) http.Handler {
	type transactionView struct {
		Kind        string    `json:"kind"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		var kinds []string
		if kind := r.URL.Query().Get("kind"); kind != "" {
			kinds = []string{kind}
		}

		transactions, err := userService.ListTransactions(r.Context(), user.ID, kinds)

		switch err {
		case nil:
			views := make([]transactionView, 0, len(transactions))
			for _, tr := range transactions {
				amount, _ := tr.Amount.Float64()
				views = append(views, transactionView{
					Kind:        tr.Kind,
					Amount:      amount,
					Description: tr.Description,
					CreatedAt:   tr.CreatedAt,
				})
			}
			render.JSON(w, views)
		default:
			l.Error("Failed to list transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
