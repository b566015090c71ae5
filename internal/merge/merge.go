// Package merge fuses a catalog record with the two service records into the
// canonical persisted record.
//
// Source-authored text wins when present. Service B owns the visual and
// statistical fields; the source poster is the fallback and is always kept
// under its own field. Anything the current inputs leave empty is back-filled
// from the previous merged record, so a field never regresses to empty.
package merge

import (
	"maps"
	"slices"
	"strings"
	"time"

	"filmbridge/internal/film"
)

// Input bundles one merge cycle's data. A and B may be nil when a service did
// not resolve or returned nothing.
type Input struct {
	Source film.SourceRecord
	A      *film.EnrichedRecord
	B      *film.EnrichedRecord
	Prev   *film.MergedRecord

	// IMDbID and TMDBID are the ids confirmed this cycle. They may be set
	// even when the matching detail record is nil.
	IMDbID   string
	TMDBID   string
	IMDbRung string
	TMDBRung string
}

// Merge produces the merged record. It is a pure function of its input and
// now; merging the same input twice yields identical records.
func Merge(in Input, now time.Time) film.MergedRecord {
	src := in.Source
	out := film.MergedRecord{
		SourceID: src.ID,
		IMDbID:   firstNonEmpty(in.IMDbID, idOf(in.A)),
		TMDBID:   firstNonEmpty(in.TMDBID, idOf(in.B)),
		IMDbRung: strings.TrimSpace(in.IMDbRung),
		TMDBRung: strings.TrimSpace(in.TMDBRung),
		StoredAt: now.UTC(),
	}

	// Source-authored fields.
	out.Title = strings.TrimSpace(src.Title)
	out.OriginalTitle = strings.TrimSpace(src.OriginalTitle)
	out.Year = strings.TrimSpace(src.Year)
	out.Synopsis = strings.TrimSpace(src.Synopsis)
	out.Origin = strings.TrimSpace(src.Origin)
	out.Genres = cleanList(src.Genres)
	out.Cast = cleanList(src.Cast)
	out.Directors = cleanList(src.Directors)
	out.Crew = cleanCrew(src.Crew)
	out.LocalizedTitles = cleanTitles(src.LocalizedTitles)
	out.RuntimeMinutes = src.RuntimeMinutes
	out.SourcePosterURL = strings.TrimSpace(src.PosterURL)

	// Enriched fields fill what the source left empty.
	out.OriginalTitle = firstNonEmpty(out.OriginalTitle, originalTitleOf(in.B), originalTitleOf(in.A))
	if out.Year == "" {
		out.Year = film.FormatYear(firstPositive(yearOf(in.B), yearOf(in.A)))
	}
	if len(out.Genres) == 0 {
		out.Genres = cleanList(firstList(genresOf(in.B), genresOf(in.A)))
	}
	if len(out.Directors) == 0 {
		out.Directors = cleanList(firstList(directorsOf(in.B), directorsOf(in.A)))
	}
	if out.RuntimeMinutes == 0 {
		out.RuntimeMinutes = firstPositive(runtimeOf(in.B), runtimeOf(in.A))
	}
	out.EnglishSynopsis = firstNonEmpty(synopsisOf(in.B), synopsisOf(in.A))

	if b := in.B; b != nil {
		out.ReleaseDate = strings.TrimSpace(b.ReleaseDate)
		out.Language = strings.TrimSpace(b.Language)
		out.Adult = b.Adult
		out.TrailerURL = strings.TrimSpace(b.TrailerURL)
		out.PosterURL = strings.TrimSpace(b.PosterURL)
		out.BackdropURL = strings.TrimSpace(b.BackdropURL)
		out.RatingAverage = b.RatingAverage
		out.RatingCount = b.RatingCount
		out.Popularity = b.Popularity
	}
	if a := in.A; a != nil {
		out.ReleaseDate = firstNonEmpty(out.ReleaseDate, a.ReleaseDate)
		out.Language = firstNonEmpty(out.Language, a.Language)
		out.IMDbRating = a.RatingAverage
		out.IMDbVotes = a.RatingCount
	}

	backfill(&out, in.Prev)

	if out.PosterURL == "" {
		out.PosterURL = out.SourcePosterURL
	}
	return out
}

// backfill copies every field still empty from the previous record.
func backfill(out *film.MergedRecord, prev *film.MergedRecord) {
	if prev == nil {
		return
	}
	out.IMDbID = firstNonEmpty(out.IMDbID, prev.IMDbID)
	out.TMDBID = firstNonEmpty(out.TMDBID, prev.TMDBID)
	out.IMDbRung = firstNonEmpty(out.IMDbRung, prev.IMDbRung)
	out.TMDBRung = firstNonEmpty(out.TMDBRung, prev.TMDBRung)

	out.Title = firstNonEmpty(out.Title, prev.Title)
	out.OriginalTitle = firstNonEmpty(out.OriginalTitle, prev.OriginalTitle)
	out.Year = firstNonEmpty(out.Year, prev.Year)
	out.Synopsis = firstNonEmpty(out.Synopsis, prev.Synopsis)
	out.EnglishSynopsis = firstNonEmpty(out.EnglishSynopsis, prev.EnglishSynopsis)
	out.Origin = firstNonEmpty(out.Origin, prev.Origin)
	if len(out.Genres) == 0 {
		out.Genres = slices.Clone(prev.Genres)
	}
	if len(out.Cast) == 0 {
		out.Cast = slices.Clone(prev.Cast)
	}
	if len(out.Directors) == 0 {
		out.Directors = slices.Clone(prev.Directors)
	}
	if len(out.Crew) == 0 {
		out.Crew = cleanCrew(prev.Crew)
	}
	if len(out.LocalizedTitles) == 0 {
		out.LocalizedTitles = maps.Clone(prev.LocalizedTitles)
	}
	out.RuntimeMinutes = firstPositive(out.RuntimeMinutes, prev.RuntimeMinutes)

	out.ReleaseDate = firstNonEmpty(out.ReleaseDate, prev.ReleaseDate)
	out.Language = firstNonEmpty(out.Language, prev.Language)
	out.Adult = out.Adult || prev.Adult
	out.TrailerURL = firstNonEmpty(out.TrailerURL, prev.TrailerURL)

	// A previously stored poster may itself be the source fallback; only a
	// service poster is worth keeping over the current source poster.
	if out.PosterURL == "" && prev.PosterURL != "" && prev.PosterURL != prev.SourcePosterURL {
		out.PosterURL = prev.PosterURL
	}
	out.BackdropURL = firstNonEmpty(out.BackdropURL, prev.BackdropURL)
	out.SourcePosterURL = firstNonEmpty(out.SourcePosterURL, prev.SourcePosterURL)
	if out.RatingAverage == 0 && out.RatingCount == 0 {
		out.RatingAverage = prev.RatingAverage
		out.RatingCount = prev.RatingCount
	}
	if out.Popularity == 0 {
		out.Popularity = prev.Popularity
	}
	if out.IMDbRating == 0 && out.IMDbVotes == 0 {
		out.IMDbRating = prev.IMDbRating
		out.IMDbVotes = prev.IMDbVotes
	}
}

func idOf(r *film.EnrichedRecord) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.ID)
}

func originalTitleOf(r *film.EnrichedRecord) string {
	if r == nil {
		return ""
	}
	return r.OriginalTitle
}

func synopsisOf(r *film.EnrichedRecord) string {
	if r == nil {
		return ""
	}
	return r.Synopsis
}

func yearOf(r *film.EnrichedRecord) int {
	if r == nil {
		return 0
	}
	return r.Candidate().Year
}

func genresOf(r *film.EnrichedRecord) []string {
	if r == nil {
		return nil
	}
	return r.Genres
}

func directorsOf(r *film.EnrichedRecord) []string {
	if r == nil {
		return nil
	}
	return r.Directors
}

func runtimeOf(r *film.EnrichedRecord) int {
	if r == nil {
		return 0
	}
	return r.Runtime
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, value := range values {
		if value > 0 {
			return value
		}
	}
	return 0
}

func firstList(lists ...[]string) []string {
	for _, list := range lists {
		if len(list) > 0 {
			return list
		}
	}
	return nil
}

func cleanList(values []string) []string {
	var out []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func cleanCrew(crew map[string][]string) map[string][]string {
	if len(crew) == 0 {
		return nil
	}
	out := make(map[string][]string, len(crew))
	for role, names := range crew {
		role = strings.TrimSpace(role)
		if names = cleanList(names); role != "" && len(names) > 0 {
			out[role] = names
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cleanTitles(titles map[string]string) map[string]string {
	if len(titles) == 0 {
		return nil
	}
	out := make(map[string]string, len(titles))
	for label, title := range titles {
		label, title = strings.TrimSpace(label), strings.TrimSpace(title)
		if label != "" && title != "" {
			out[label] = title
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
