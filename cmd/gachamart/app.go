package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/akryukov/gachamart/internal/db"
	"github.com/akryukov/gachamart/internal/handlers"
	"github.com/akryukov/gachamart/internal/logger"
	"github.com/akryukov/gachamart/internal/repository/postgres"
	"github.com/akryukov/gachamart/internal/service/auth"
	"github.com/akryukov/gachamart/internal/service/auth/tokenmanager"
	"github.com/akryukov/gachamart/internal/service/draw"
	"github.com/akryukov/gachamart/internal/service/exchange"
	"github.com/akryukov/gachamart/internal/service/item"
	"github.com/akryukov/gachamart/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger, prod environment logs JSON
	log := logger.NewLogger(c.LogLevel)
	if c.Environment == "prod" {
		log = logger.NewJSONLogger(c.LogLevel)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	authService := auth.NewService(storage, auth.DefaultHasher, tokenManager)
	drawService := draw.NewService(storage)
	itemService := item.NewService(storage)
	exchangeService := exchange.NewService(storage)
	userService := user.NewService(storage)

	mux := handlers.NewRouter(
		authService,
		drawService,
		itemService,
		exchangeService,
		userService,
		log,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
