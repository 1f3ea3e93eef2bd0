package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akryukov/gachamart/internal/handlers/middleware"
	"github.com/akryukov/gachamart/internal/logger"
	"github.com/akryukov/gachamart/internal/models"
	drawservice "github.com/akryukov/gachamart/internal/service/draw"
	itemservice "github.com/akryukov/gachamart/internal/service/item"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	drawService drawService,
	itemService itemService,
	exchangeService exchangeService,
	userService userService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	apiuser := http.NewServeMux()

	apiuser.Handle("POST /login", handleLogin(authService, logger))
	apiuser.Handle("POST /register", handleRegister(authService, logger))

	apiuser.Handle("POST /draw", withAuth(handleDraw(drawService, logger)))
	apiuser.Handle("GET /items", withAuth(handleListItems(itemService, logger)))
	apiuser.Handle("POST /items/decompose", withAuth(handleDecompose(itemService, logger)))
	apiuser.Handle("POST /exchange", withAuth(handleExchange(exchangeService, logger)))
	apiuser.Handle("GET /orders", withAuth(handleListOrders(exchangeService, logger)))
	apiuser.Handle("GET /balance", withAuth(handleUserBalance(userService, logger)))
	apiuser.Handle("GET /transactions", withAuth(handleListTransactions(userService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/user/", http.StripPrefix("/api/user", apiuser))
	root.Handle("GET /api/pools/{id}/prizes", handleListPrizes(drawService, logger))
	root.Handle("GET /api/recipes", handleListRecipes(exchangeService, logger))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, username string, password string) (models.IssuedToken, error)

	// Login user with username and password
	// Has to return apperrors.ErrUserNotFound if user not found
	Login(ctx context.Context, username string, password string) (models.IssuedToken, error)

	// Get request and return user if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type drawService interface {
	Draw(ctx context.Context, userID uuid.UUID, poolID uuid.UUID, count int) (drawservice.Result, error)
	PoolPrizes(ctx context.Context, poolID uuid.UUID) (models.Pool, []models.Prize, error)
}

type itemService interface {
	Decompose(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID, claimedTotal decimal.Decimal) (itemservice.Result, error)
	List(ctx context.Context, userID uuid.UUID, includeDecomposed bool) ([]models.InventoryItem, error)
}

type exchangeService interface {
	Exchange(ctx context.Context, userID uuid.UUID, recipeID uuid.UUID, target string) (models.Order, error)
	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

type userService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (models.Balance, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, kinds []string) ([]models.Transaction, error)
}
