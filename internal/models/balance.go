package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// Balance moving ledger kinds
	TransactionIncome  = "income"
	TransactionExpense = "expense"

	// Audit only record, amount is always zero
	TransactionNote = "note"
)

type Balance struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Current decimal.Decimal
}

// Transaction is a single append-only ledger record.
// The running balance lives on the Balance row; both are written in the
// same storage transaction so they can't drift apart.
type Transaction struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UserID      uuid.UUID
	Kind        string
	Amount      decimal.Decimal
	Description string
}
