// Package similarity provides the bounded edit-distance comparator shared by
// item and modifier matching.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Distance is the Levenshtein distance between a and b in runes.
// Insertions, deletions and substitutions each cost 1.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	return matchr.Levenshtein(a, b)
}

// Tolerance is the number of edits accepted for a string of n runes.
// Short strings tolerate almost no error, long ones absorb more noise.
func Tolerance(n int) int {
	switch {
	case n <= 3:
		return 0
	case n <= 5:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// IsCloseMatch reports whether a and b are within the tolerance allowed for
// the longer of the two.
func IsCloseMatch(a, b string) bool {
	if a == b {
		return true
	}
	return Distance(a, b) <= Tolerance(max(runeLen(a), runeLen(b)))
}

// Score is 1 - distance/maxLen, in [0,1] with 1 meaning identical.
func Score(a, b string) float64 {
	longest := max(runeLen(a), runeLen(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(Distance(a, b))/float64(longest)
}

// NormalizedDistance is 1 - Score: 0 for identical strings, 1 for nothing
// in common.
func NormalizedDistance(a, b string) float64 {
	return 1 - Score(a, b)
}

// TokenDistance compares two single words for alignment purposes.
//
// A word that is a prefix of the other (at least 3 runes) counts as a
// truncation ("parm" for "parmesan") and scores half its missing share.
// Words that are not a close match score 1.
func TokenDistance(a, b string) float64 {
	if a == b {
		return 0
	}
	if short, long, ok := Truncation(a, b); ok {
		return 0.5 * (1 - float64(runeLen(short))/float64(runeLen(long)))
	}
	return WordDistance(a, b)
}

// WordDistance is TokenDistance without the truncation rule.
func WordDistance(a, b string) float64 {
	if IsCloseMatch(a, b) {
		return NormalizedDistance(a, b)
	}
	return 1
}

// Truncation reports whether the shorter of a and b, at least 3 runes long,
// is a proper prefix of the other.
func Truncation(a, b string) (short, long string, ok bool) {
	short, long = a, b
	if runeLen(short) > runeLen(long) {
		short, long = long, short
	}
	if runeLen(short) >= 3 && short != long && strings.HasPrefix(long, short) {
		return short, long, true
	}
	return "", "", false
}

// SharesBigram reports whether a and b have at least one 2-rune substring
// in common.
func SharesBigram(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return false
	}
	grams := make(map[[2]rune]struct{}, len(ra)-1)
	for i := 0; i+1 < len(ra); i++ {
		grams[[2]rune{ra[i], ra[i+1]}] = struct{}{}
	}
	for i := 0; i+1 < len(rb); i++ {
		if _, ok := grams[[2]rune{rb[i], rb[i+1]}]; ok {
			return true
		}
	}
	return false
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
