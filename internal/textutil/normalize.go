package textutil

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a person name or title for comparison.
// The result is deterministic for a given input.
func Normalize(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	transliterated := TransliterateJapanese(value)
	if transliterated == value {
		transliterated = TransliterateKorean(value)
	}
	return Fold(transliterated)
}

// czechMarkers are letters a metadata service never emits in a romanized
// name but a Czech transcription does.
const czechMarkers = "ščžřěůáéíóúý"

// NormalizeRomanized canonicalizes a name that a metadata service already
// romanized (Hepburn, Revised Romanization or a Western spelling). The Czech
// transcription rules run only when a Czech-only letter is present, so
// "Juzo Itami" stays "juzo itami" instead of being read as Czech "ju".
func NormalizeRomanized(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if !strings.ContainsAny(norm.NFC.String(value), czechMarkers) {
		return Fold(value)
	}
	return Normalize(value)
}

// Fold strips diacritics, lowercases, keeps only letters, digits and
// whitespace, and collapses runs of whitespace to a single space. Hyphenated
// parts are joined ("Kar-wai" folds to "karwai").
func Fold(value string) string {
	if value == "" {
		return ""
	}
	decomposed, _, err := transform.String(diacriticStripper(), value)
	if err != nil {
		decomposed = value
	}
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// diacriticStripper returns a fresh transformer; transform chains carry
// state and must not be shared between goroutines.
func diacriticStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// TokenSort orders whitespace-separated tokens so that "wong karwai" and
// "karwai wong" compare equal.
func TokenSort(value string) string {
	tokens := strings.Fields(value)
	if len(tokens) < 2 {
		return strings.Join(tokens, " ")
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
