package draw

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/models"
)

// Rand yields uniform values from [0, 1).
// Injected so tests can drive selection deterministically.
type Rand interface {
	Float64() float64
}

type mathRand struct{}

func (mathRand) Float64() float64 { return rand.Float64() }

// DefaultRand is the process wide random source used outside tests.
var DefaultRand Rand = mathRand{}

// Select picks one entry from prizes proportionally to its weight.
//
// Entries partition [0, W) into consecutive intervals in pool order; the
// first entry whose cumulative weight reaches the scaled random value is
// chosen. Zero weight entries own an empty interval and can never win.
// If rounding drift leaves the target uncovered the last positive weight
// entry wins, a draw must not fail because of accumulated rounding.
func Select(r Rand, prizes []models.Prize) (models.Prize, error) {
	total := decimal.Zero
	for _, p := range prizes {
		total = total.Add(p.Weight)
	}

	if !total.IsPositive() {
		return models.Prize{}, apperrors.ErrNoEligiblePrizes
	}

	target := total.Mul(decimal.NewFromFloat(r.Float64()))

	var fallback models.Prize
	cumulative := decimal.Zero
	for _, p := range prizes {
		if !p.Weight.IsPositive() {
			continue
		}

		fallback = p
		cumulative = cumulative.Add(p.Weight)
		if cumulative.GreaterThanOrEqual(target) {
			return p, nil
		}
	}

	return fallback, nil
}
