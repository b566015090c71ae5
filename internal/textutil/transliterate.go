package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// japaneseSyllables maps Czech transcription of kana to Hepburn.
var japaneseSyllables = map[string]string{
	"a": "a", "i": "i", "u": "u", "e": "e", "o": "o",
	"ka": "ka", "ki": "ki", "ku": "ku", "ke": "ke", "ko": "ko",
	"kja": "kya", "kju": "kyu", "kjo": "kyo",
	"sa": "sa", "ši": "shi", "su": "su", "se": "se", "so": "so",
	"ša": "sha", "šu": "shu", "še": "she", "šo": "sho",
	"ta": "ta", "či": "chi", "cu": "tsu", "te": "te", "to": "to",
	"ča": "cha", "ču": "chu", "če": "che", "čo": "cho",
	"na": "na", "ni": "ni", "nu": "nu", "ne": "ne", "no": "no",
	"nja": "nya", "nju": "nyu", "njo": "nyo",
	"ha": "ha", "hi": "hi", "fu": "fu", "he": "he", "ho": "ho",
	"hja": "hya", "hju": "hyu", "hjo": "hyo",
	"ma": "ma", "mi": "mi", "mu": "mu", "me": "me", "mo": "mo",
	"mja": "mya", "mju": "myu", "mjo": "myo",
	"ja": "ya", "ju": "yu", "jo": "yo",
	"ra": "ra", "ri": "ri", "ru": "ru", "re": "re", "ro": "ro",
	"rja": "rya", "rju": "ryu", "rjo": "ryo",
	"wa": "wa", "wo": "wo",
	"ga": "ga", "gi": "gi", "gu": "gu", "ge": "ge", "go": "go",
	"gja": "gya", "gju": "gyu", "gjo": "gyo",
	"za": "za", "dži": "ji", "zu": "zu", "ze": "ze", "zo": "zo",
	"dža": "ja", "džu": "ju", "dže": "je", "džo": "jo",
	"da": "da", "de": "de", "do": "do",
	"ba": "ba", "bi": "bi", "bu": "bu", "be": "be", "bo": "bo",
	"bja": "bya", "bju": "byu", "bjo": "byo",
	"pa": "pa", "pi": "pi", "pu": "pu", "pe": "pe", "po": "po",
	"pja": "pya", "pju": "pyu", "pjo": "pyo",
	"n": "n",
}

// geminates lists consonants that may double before a syllable, with the
// Hepburn letter written for the first half.
var geminates = map[rune]string{
	'k': "k", 's': "s", 't': "t", 'p': "p", 'š': "s", 'č': "t",
}

// longVowels drops Czech vowel-length marks; Hepburn macrons are folded
// away later anyway.
var longVowels = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ů", "u")

const maxSyllableRunes = 3

// TransliterateJapanese rewrites a lowercased Czech transcription of a
// Japanese name to Hepburn. Values where any word fails to segment into
// transcribed kana are returned unchanged.
func TransliterateJapanese(value string) string {
	source := longVowels.Replace(norm.NFC.String(value))
	var out strings.Builder
	var word []rune
	words := 0
	flush := func() bool {
		if len(word) == 0 {
			return true
		}
		converted, ok := segmentJapanese(word)
		if !ok {
			return false
		}
		out.WriteString(converted)
		word = word[:0]
		words++
		return true
	}
	for _, r := range source {
		if unicode.IsLetter(r) {
			word = append(word, r)
			continue
		}
		if !flush() {
			return value
		}
		out.WriteRune(r)
	}
	if !flush() || words == 0 {
		return value
	}
	return out.String()
}

func segmentJapanese(word []rune) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(word); {
		if i+1 < len(word) && word[i] == word[i+1] {
			if first, ok := geminates[word[i]]; ok {
				b.WriteString(first)
				i++
				continue
			}
		}
		matched := false
		for size := maxSyllableRunes; size > 0; size-- {
			if i+size > len(word) {
				continue
			}
			if hepburn, ok := japaneseSyllables[string(word[i:i+size])]; ok {
				b.WriteString(hepburn)
				i += size
				matched = true
				break
			}
		}
		if !matched {
			return "", false
		}
	}
	return b.String(), true
}

// koreanMarkers are spellings that only occur in Czech transcription of
// Korean; without one of them the Korean rules are not applied.
var koreanMarkers = []string{"ŏ", "ŭ", "ǔ", "čch", "kch", "tch", "pch"}

// koreanRules rewrites Czech transcription toward Revised Romanization.
// "dž" is deliberately absent: it is a distinct Korean sound and stays as is.
// Earlier pairs win at the same position, so longer spellings come first.
var koreanRules = strings.NewReplacer(
	"čch", "ch",
	"kch", "k",
	"tch", "t",
	"pch", "p",
	"čč", "jj",
	"č", "j",
	"wŏ", "wo",
	"jŏ", "yeo",
	"jŭ", "yeu",
	"ŏ", "eo",
	"ŭ", "eu",
	"ǔ", "eu",
	"š", "s",
	"jä", "yae",
	"ä", "ae",
	"ja", "ya",
	"je", "ye",
	"jo", "yo",
	"ju", "yu",
)

// TransliterateKorean rewrites a lowercased Czech transcription of a Korean
// name. Values without a Korean-only spelling are returned unchanged.
func TransliterateKorean(value string) string {
	source := norm.NFC.String(value)
	for _, marker := range koreanMarkers {
		if strings.Contains(source, marker) {
			return koreanRules.Replace(source)
		}
	}
	return value
}
