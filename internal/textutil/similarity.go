package textutil

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity returns 1 - distance/maxLen computed over runes, in [0, 1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

// FuzzyEqual reports whether two already-normalized names match exactly,
// after token sorting, or with similarity at or above threshold on either the
// direct or the token-sorted form.
func FuzzyEqual(a, b string, threshold float64) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	sortedA, sortedB := TokenSort(a), TokenSort(b)
	if sortedA == sortedB {
		return true
	}
	if Similarity(a, b) >= threshold {
		return true
	}
	return Similarity(sortedA, sortedB) >= threshold
}
