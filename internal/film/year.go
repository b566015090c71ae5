package film

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minPlausibleYear = 1870
	maxPlausibleYear = 2100
)

var (
	yearPattern        = regexp.MustCompile(`(^|[^0-9])([0-9]{4})([^0-9]|$)`)
	listingDatePattern = regexp.MustCompile(`\(([^()]*)\)`)
)

// ParseYear returns the first plausible four-digit year found in free text
// such as "1970", "1969-1970" or "cca 1970".
func ParseYear(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for len(raw) > 0 {
		loc := yearPattern.FindStringSubmatchIndex(raw)
		if loc == nil {
			return 0, false
		}
		year, err := strconv.Atoi(raw[loc[4]:loc[5]])
		if err == nil && year >= minPlausibleYear && year <= maxPlausibleYear {
			return year, true
		}
		raw = raw[loc[5]:]
	}
	return 0, false
}

// ParseReleaseDate parses a YYYY-MM-DD release date.
func ParseReleaseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if len(raw) > len("2006-01-02") {
		raw = raw[:len("2006-01-02")]
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// FormatYear renders a year for a free-text field. Zero renders empty.
func FormatYear(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}
