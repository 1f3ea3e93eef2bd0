package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

type Pool struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Name      string
	UnitCost  decimal.Decimal
	Active    bool
}

// Prize is a weighted pool entry.
// Weight is the effective weight used for selection. BaseWeight keeps the
// pre-depletion weight of a stock limited entry so eligibility stays a pure
// function of remaining stock: stock 0 forces Weight to zero, restocking
// restores Weight to BaseWeight.
type Prize struct {
	ID         uuid.UUID
	PoolID     uuid.UUID
	Name       string
	Icon       string
	Value      decimal.Decimal
	Weight     decimal.Decimal
	BaseWeight *decimal.Decimal
	Rarity     string
	Stock      *int32 // nil means unlimited
	Active     bool
	SortOrder  int32
}

// Limited reports whether the entry has a finite stock.
func (p *Prize) Limited() bool {
	return p.Stock != nil
}
