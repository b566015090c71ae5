// Package validation decides whether a search candidate plausibly is the
// catalog film being resolved.
package validation

import (
	"filmbridge/internal/film"
	"filmbridge/internal/textutil"
)

// DefaultDirectorThreshold is the minimum similarity for a fuzzy director match.
const DefaultDirectorThreshold = 0.70

// Rejection reasons reported by Check.
const (
	ReasonAccepted            = "accepted"
	ReasonExcludedKind        = "excluded-kind"
	ReasonYearMismatch        = "year-mismatch"
	ReasonNoCandidateDirector = "no-candidate-directors"
	ReasonDirectorMismatch    = "director-mismatch"
)

// excludedKinds are never a feature film. Anything else, including kinds
// this code has never seen, is accepted.
var excludedKinds = map[film.Kind]struct{}{
	film.KindPodcastSeries:  {},
	film.KindPodcastEpisode: {},
	film.KindTVSeries:       {},
	film.KindTVEpisode:      {},
	film.KindVideoGame:      {},
	film.KindMusicVideo:     {},
}

// Verdict is the outcome of a validation check.
type Verdict struct {
	Valid  bool
	Reason string
}

// Validator applies the kind, year and director rules.
type Validator struct {
	threshold float64
}

// Option customizes a Validator.
type Option func(*Validator)

// WithDirectorThreshold overrides the fuzzy director threshold.
func WithDirectorThreshold(threshold float64) Option {
	return func(v *Validator) {
		if threshold > 0 && threshold <= 1 {
			v.threshold = threshold
		}
	}
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{threshold: DefaultDirectorThreshold}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// KindAllowed reports whether the classification may be a feature film.
func (v *Validator) KindAllowed(kind film.Kind) bool {
	_, excluded := excludedKinds[film.ParseKind(string(kind))]
	return !excluded
}

// YearValid applies the year tolerance. An unknown source year always passes.
// Otherwise the candidate year must be within one year, or the listing year
// must equal the source year exactly.
func (v *Validator) YearValid(source film.SourceRecord, candidate film.CandidateMatch) bool {
	sourceYear, ok := source.KnownYear()
	if !ok {
		return true
	}
	if candidate.HasYear() {
		diff := candidate.Year - sourceYear
		if diff >= -1 && diff <= 1 {
			return true
		}
	}
	if listingYear, ok := candidate.ListingYear(); ok && listingYear == sourceYear {
		return true
	}
	return false
}

// DirectorsMatch accepts when at least one source director matches at least
// one credited director. A source without directors has nothing to falsify;
// a candidate without credited directors cannot be confirmed.
func (v *Validator) DirectorsMatch(sourceDirectors, candidateDirectors []string) bool {
	source := normalizeAll(sourceDirectors, textutil.Normalize)
	if len(source) == 0 {
		return true
	}
	candidates := normalizeAll(candidateDirectors, textutil.NormalizeRomanized)
	if len(candidates) == 0 {
		return false
	}
	for _, want := range source {
		for _, got := range candidates {
			if textutil.FuzzyEqual(want, got, v.threshold) {
				return true
			}
		}
	}
	return false
}

// NeedsDirectors reports whether the director rule can reject anything for
// this source, i.e. whether fetching credits is worth a round-trip.
func (v *Validator) NeedsDirectors(source film.SourceRecord) bool {
	return len(normalizeAll(source.Directors, textutil.Normalize)) > 0
}

// Prefilter runs the checks that need no extra service call.
func (v *Validator) Prefilter(source film.SourceRecord, candidate film.CandidateMatch) Verdict {
	if !v.KindAllowed(candidate.Kind) {
		return Verdict{Reason: ReasonExcludedKind}
	}
	if !v.YearValid(source, candidate) {
		return Verdict{Reason: ReasonYearMismatch}
	}
	return Verdict{Valid: true, Reason: ReasonAccepted}
}

// Check runs every rule against a candidate and its credited directors.
func (v *Validator) Check(source film.SourceRecord, candidate film.CandidateMatch, directors []string) Verdict {
	if verdict := v.Prefilter(source, candidate); !verdict.Valid {
		return verdict
	}
	if !v.NeedsDirectors(source) {
		return Verdict{Valid: true, Reason: ReasonAccepted}
	}
	if len(normalizeAll(directors, textutil.NormalizeRomanized)) == 0 {
		return Verdict{Reason: ReasonNoCandidateDirector}
	}
	if !v.DirectorsMatch(source.Directors, directors) {
		return Verdict{Reason: ReasonDirectorMismatch}
	}
	return Verdict{Valid: true, Reason: ReasonAccepted}
}

// normalizeAll applies normalize to every name and drops empty results.
// Source names use the full transcription pipeline; credited names from a
// service are already romanized.
func normalizeAll(names []string, normalize func(string) string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if normalized := normalize(name); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}
