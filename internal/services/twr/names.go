package twr

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes characters and removes combining marks, so that
// "Crédit" and "Credit" compare equal.
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName lowercases, trims and accent-strips a portfolio name for
// freeze-window matching.
func normalizeName(s string) string {
	stripped, _, err := transform.String(accentStripper, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}
