package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/akryukov/gachamart/internal/models"
	"github.com/akryukov/gachamart/internal/repository"
)

// Service serves the read side of a user's economy: current balance and
// ledger history. Every mutation goes through the draw, item or exchange
// services instead.
type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (models.Balance, error) {
	return s.storage.Balance().GetBalance(ctx, userID, false)
}

func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, kinds []string) ([]models.Transaction, error) {
	return s.storage.Balance().ListTransactions(ctx, userID, kinds)
}
