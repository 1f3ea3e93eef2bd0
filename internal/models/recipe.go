package models

import (
	"github.com/google/uuid"
)

// Recipe describes which items a legendary exchange consumes and which
// shop item it produces. Maintained by the admin catalog, read-only here.
type Recipe struct {
	ID         uuid.UUID
	Name       string
	ShopItemID uuid.UUID
	Active     bool
	SortOrder  int32
	Lines      []RecipeLine
}

type RecipeLine struct {
	PrizeID  uuid.UUID
	Quantity int32
}
