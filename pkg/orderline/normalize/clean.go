package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Clean produces the comparison form of a menu name or token window:
// lowercase, accents folded ("jalapeño" -> "jalapeno"), apostrophes
// dropped, hyphens turned into spaces and everything outside [a-z0-9 ]
// removed. Whitespace is collapsed.
func Clean(s string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '-' || unicode.IsSpace(r):
			b.WriteByte(' ')
		case r == '\'':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return collapseSpaces(b.String())
}

// Compact removes all spaces, so compound spellings compare equal
// ("oat milk" and "oatmilk").
func Compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
