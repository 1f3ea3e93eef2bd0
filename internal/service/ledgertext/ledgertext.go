// Package ledgertext builds human readable descriptions for ledger records.
package ledgertext

import (
	"strings"
)

// MaxDescription is the longest description a ledger record carries.
const MaxDescription = 255

// Truncate cuts s to at most max runes.
// Counting runes instead of bytes keeps multibyte names intact.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max])
}

// JoinNames joins item names for a ledger description, truncated to
// MaxDescription runes.
func JoinNames(names []string) string {
	return Truncate(strings.Join(names, ", "), MaxDescription)
}
