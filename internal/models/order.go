package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Order is a pending fulfillment request created by an exchange.
// Status transitions past 'pending' belong to the fulfillment collaborator,
// this service only creates the record.
type Order struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	UserID     uuid.UUID
	RecipeID   uuid.UUID
	ShopItemID uuid.UUID
	Target     string
	Status     string
	ItemIDs    []uuid.UUID
}
