package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrPoolNotFound     = errors.New("prize pool not found")
	ErrNoEligiblePrizes = errors.New("no eligible prizes in pool")
	ErrDrawCountInvalid = errors.New("draw count out of allowed range")

	ErrBalanceInsufficient = errors.New("insufficient balance")

	ErrItemsUnavailable = errors.New("items not owned, already decomposed or missing")
	ErrValueMismatch    = errors.New("claimed value differs from server computed value")

	ErrRecipeUnavailable     = errors.New("recipe missing or inactive")
	ErrInsufficientMaterials = errors.New("not enough items to satisfy recipe")

	// Lock or serialization conflict detected by the store.
	// The whole operation rolled back, safe to retry from scratch.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)
