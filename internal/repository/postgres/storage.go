package postgres

import (
	"context"
	"fmt"

	"github.com/akryukov/gachamart/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{db: s.db}
}

func (s *Storage) Balance() repository.BalanceRepo {
	return &BalanceRepo{db: s.db}
}

func (s *Storage) Pool() repository.PoolRepo {
	return &PoolRepo{db: s.db}
}

func (s *Storage) Inventory() repository.InventoryRepo {
	return &InventoryRepo{db: s.db}
}

func (s *Storage) Recipe() repository.RecipeRepo {
	return &RecipeRepo{db: s.db}
}

func (s *Storage) Order() repository.OrderRepo {
	return &OrderRepo{db: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = dbError(commitErr)
			}
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
