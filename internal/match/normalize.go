package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize produces the canonical comparable form of an identity text field:
// upper-cased, accents removed via Unicode decomposition ("É" becomes "E"),
// trimmed, with internal whitespace runs collapsed to a single space.
//
// Empty input yields an empty string. Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}
	return strings.Join(strings.Fields(s), " ")
}
