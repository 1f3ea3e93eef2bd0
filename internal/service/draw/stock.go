package draw

import (
	"github.com/shopspring/decimal"

	"github.com/akryukov/gachamart/internal/models"
)

// Normalize applies the stock policy to every entry before a draw and
// returns the entries whose persisted state changed.
//
// For stock limited entries the effective weight is a pure function of
// remaining stock: depleted stock forces weight to zero, anything else
// restores weight to base_weight. A NULL base_weight (catalog rows
// imported before the column existed) is captured from the current
// weight on first touch.
func Normalize(prizes []models.Prize) []models.Prize {
	var changed []models.Prize

	for i := range prizes {
		p := &prizes[i]
		if !p.Limited() {
			continue
		}

		captured := false
		if p.BaseWeight == nil {
			base := p.Weight
			p.BaseWeight = &base
			captured = true
		}

		want := *p.BaseWeight
		if *p.Stock <= 0 {
			want = decimal.Zero
		}

		if captured || !p.Weight.Equal(want) {
			p.Weight = want
			changed = append(changed, *p)
		}
	}

	return changed
}

// Consume decrements the stock of a selected entry and reports whether
// its persisted state changed. Unlimited entries are untouched. An entry
// hitting zero stock gets zero weight immediately, so the very next
// selection in the same draw can't pick it again.
func Consume(p *models.Prize) bool {
	if !p.Limited() {
		return false
	}

	*p.Stock--
	if *p.Stock <= 0 {
		p.Weight = decimal.Zero
	}

	return true
}
