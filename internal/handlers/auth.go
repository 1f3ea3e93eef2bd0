package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/handlers/render"
	"github.com/akryukov/gachamart/internal/logger"
)

func handleRegister(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"login" validate:"required,min=3"`
		Password string `json:"password" validate:"required,min=8"`
	}

	type response struct {
		AccessToken string    `json:"access_token"`
		ExpiresAt   time.Time `json:"expires_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, err := authService.Register(r.Context(), req.Username, req.Password)

		switch {
		case err == nil:
			render.JSON(w, response{token.Value, token.ExpiresAt})
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Username already taken", http.StatusConflict)
		default:
			l.Error("Failed to register user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Username string `json:"login" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	type response struct {
		AccessToken string    `json:"access_token"`
		ExpiresAt   time.Time `json:"expires_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, err := authService.Login(r.Context(), req.Username, req.Password)

		switch {
		case err == nil:
			render.JSON(w, response{token.Value, token.ExpiresAt})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "Invalid username or password", http.StatusUnauthorized)
		default:
			l.Error("Failed to login user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
