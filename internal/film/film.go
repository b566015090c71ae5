package film

import (
	"strings"
	"time"
)

// Service identifies one of the external metadata services.
type Service string

const (
	// ServiceIMDb is service A. Ids look like tt0066498.
	ServiceIMDb Service = "imdb"
	// ServiceTMDB is service B. Ids are decimal integers.
	ServiceTMDB Service = "tmdb"
)

func (s Service) String() string { return string(s) }

// SourceRecord is a film entry produced by the catalog collector.
type SourceRecord struct {
	ID              int64               `json:"id"`
	Title           string              `json:"title"`
	OriginalTitle   string              `json:"original_title,omitempty"`
	Year            string              `json:"year,omitempty"`
	Directors       []string            `json:"directors,omitempty"`
	Cast            []string            `json:"cast,omitempty"`
	Crew            map[string][]string `json:"crew,omitempty"`
	LocalizedTitles map[string]string   `json:"localized_titles,omitempty"`
	Origin          string              `json:"origin,omitempty"`
	Genres          []string            `json:"genres,omitempty"`
	Synopsis        string              `json:"synopsis,omitempty"`
	PosterURL       string              `json:"poster_url,omitempty"`
	RuntimeMinutes  int                 `json:"runtime_minutes,omitempty"`
	IMDbID          string              `json:"imdb_id,omitempty"`
	LowConfidence   bool                `json:"low_confidence,omitempty"`
}

// KnownYear returns the parsed source year, if any.
func (s SourceRecord) KnownYear() (int, bool) {
	return ParseYear(s.Year)
}

// CandidateMatch is an unvalidated hit returned by a service search.
type CandidateMatch struct {
	Service Service `json:"service"`
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Year    int     `json:"year,omitempty"`
	Listing string  `json:"listing,omitempty"`
	Kind    Kind    `json:"kind,omitempty"`
}

// HasYear reports whether the candidate carries its own year.
func (c CandidateMatch) HasYear() bool { return c.Year > 0 }

// ListingYear recovers the release year shown in the search listing snippet.
// Listings read "Title (date) ..."; only the first parenthesized segment after
// the title counts, so a numeric title such as "1984" is never taken for a year.
func (c CandidateMatch) ListingYear() (int, bool) {
	listing := strings.TrimSpace(c.Listing)
	if title := strings.TrimSpace(c.Title); title != "" && strings.HasPrefix(listing, title) {
		listing = listing[len(title):]
	}
	match := listingDatePattern.FindStringSubmatch(listing)
	if match == nil {
		return 0, false
	}
	return ParseYear(match[1])
}

// Key returns the namespaced identifier, e.g. "imdb:tt0066498".
func (c CandidateMatch) Key() string {
	return string(c.Service) + ":" + c.ID
}

// EnrichedRecord is the metadata a service returns for a confirmed id.
type EnrichedRecord struct {
	Service       Service  `json:"service"`
	ID            string   `json:"id"`
	Kind          Kind     `json:"kind,omitempty"`
	Title         string   `json:"title,omitempty"`
	OriginalTitle string   `json:"original_title,omitempty"`
	ReleaseDate   string   `json:"release_date,omitempty"`
	Year          int      `json:"year,omitempty"`
	Synopsis      string   `json:"synopsis,omitempty"`
	PosterURL     string   `json:"poster_url,omitempty"`
	BackdropURL   string   `json:"backdrop_url,omitempty"`
	RatingAverage float64  `json:"rating_average,omitempty"`
	RatingCount   int64    `json:"rating_count,omitempty"`
	Popularity    float64  `json:"popularity,omitempty"`
	Language      string   `json:"language,omitempty"`
	Adult         bool     `json:"adult,omitempty"`
	TrailerURL    string   `json:"trailer_url,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Runtime       int      `json:"runtime,omitempty"`
	Directors     []string `json:"directors,omitempty"`
}

// Candidate converts the detail payload into a CandidateMatch so a directly
// linked id can go through the same validation as a search hit.
func (e EnrichedRecord) Candidate() CandidateMatch {
	year := e.Year
	if year == 0 {
		year, _ = ParseYear(e.ReleaseDate)
	}
	return CandidateMatch{
		Service: e.Service,
		ID:      e.ID,
		Title:   e.Title,
		Year:    year,
		Kind:    e.Kind,
	}
}

// MergedRecord is the canonical persisted record for one source film.
type MergedRecord struct {
	SourceID int64  `json:"source_id"`
	IMDbID   string `json:"imdb_id,omitempty"`
	TMDBID   string `json:"tmdb_id,omitempty"`

	Title           string              `json:"title,omitempty"`
	OriginalTitle   string              `json:"original_title,omitempty"`
	Year            string              `json:"year,omitempty"`
	Synopsis        string              `json:"synopsis,omitempty"`
	EnglishSynopsis string              `json:"english_synopsis,omitempty"`
	Genres          []string            `json:"genres,omitempty"`
	Cast            []string            `json:"cast,omitempty"`
	Directors       []string            `json:"directors,omitempty"`
	Crew            map[string][]string `json:"crew,omitempty"`
	Origin          string              `json:"origin,omitempty"`
	LocalizedTitles map[string]string   `json:"localized_titles,omitempty"`
	RuntimeMinutes  int                 `json:"runtime_minutes,omitempty"`

	ReleaseDate string `json:"release_date,omitempty"`
	Language    string `json:"language,omitempty"`
	Adult       bool   `json:"adult,omitempty"`
	TrailerURL  string `json:"trailer_url,omitempty"`

	PosterURL       string  `json:"poster_url,omitempty"`
	BackdropURL     string  `json:"backdrop_url,omitempty"`
	SourcePosterURL string  `json:"source_poster_url,omitempty"`
	RatingAverage   float64 `json:"rating_average,omitempty"`
	RatingCount     int64   `json:"rating_count,omitempty"`
	Popularity      float64 `json:"popularity,omitempty"`
	IMDbRating      float64 `json:"imdb_rating,omitempty"`
	IMDbVotes       int64   `json:"imdb_votes,omitempty"`

	IMDbRung string    `json:"imdb_rung,omitempty"`
	TMDBRung string    `json:"tmdb_rung,omitempty"`
	StoredAt time.Time `json:"stored_at"`
}

// ConfirmedID returns the stored id for the given service.
func (m *MergedRecord) ConfirmedID(service Service) string {
	if m == nil {
		return ""
	}
	switch service {
	case ServiceIMDb:
		return strings.TrimSpace(m.IMDbID)
	case ServiceTMDB:
		return strings.TrimSpace(m.TMDBID)
	default:
		return ""
	}
}

// Release parses the stored release date. Only full dates count.
func (m *MergedRecord) Release() (time.Time, bool) {
	if m == nil {
		return time.Time{}, false
	}
	return ParseReleaseDate(m.ReleaseDate)
}
