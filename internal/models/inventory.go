package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is an obtained prize copy owned by a single user.
// Name, value and rarity are denormalized at draw time so later catalog
// edits don't rewrite what the user already owns.
//
// Decomposition is a soft delete: the row stays for history, Decomposed
// flips once and never back. An item consumed by an exchange ends up in
// the same state as a decomposed one.
type InventoryItem struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	PrizeID      uuid.UUID
	Name         string
	Value        decimal.Decimal
	Rarity       string
	ObtainedAt   time.Time
	Decomposed   bool
	DecomposedAt *time.Time
}
