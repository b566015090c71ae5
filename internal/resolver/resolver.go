package resolver

import (
	"context"
	"log/slog"
	"strings"

	"filmbridge/internal/film"
	"filmbridge/internal/lookup"
	"filmbridge/internal/logging"
	"filmbridge/internal/services"
	"filmbridge/internal/validation"
)

const defaultMaxCandidates = 5

// Status is the tri-state result of one ladder run.
type Status string

const (
	StatusResolved   Status = "resolved"
	StatusUnresolved Status = "unresolved"
	StatusFailed     Status = "failed"
)

// Rung names the ladder step that produced (or last attempted) a match.
const (
	RungKnownID       = "known-id"
	RungDirectLink    = "direct-link"
	RungBridge        = "bridge"
	RungFeature       = "search-feature"
	RungRelaxed       = "search-relaxed"
	RungYearNext      = "search-year-next"
	RungYearPrev      = "search-year-prev"
	RungUnconstrained = "search-unconstrained"
)

// Outcome is returned by value; a ladder never panics or returns an error.
type Outcome struct {
	Service film.Service
	Status  Status
	ID      string
	Rung    string
	Query   string
	Record  *film.EnrichedRecord
	Err     error
}

// Resolved reports whether a confirmed id was found.
func (o Outcome) Resolved() bool { return o.Status == StatusResolved }

// Resolver runs the identity ladder against one metadata service.
type Resolver struct {
	source        lookup.Source
	validator     *validation.Validator
	maxCandidates int
	englishLabels []string
	logger        *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithValidator replaces the default validator.
func WithValidator(v *validation.Validator) Option {
	return func(r *Resolver) {
		if v != nil {
			r.validator = v
		}
	}
}

// WithMaxCandidates bounds how many ranked hits per search are examined.
func WithMaxCandidates(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxCandidates = n
		}
	}
}

// WithEnglishMarketLabels sets the localized-title labels treated as
// English-market titles, in preference order.
func WithEnglishMarketLabels(labels []string) Option {
	return func(r *Resolver) {
		r.englishLabels = append([]string(nil), labels...)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New constructs a Resolver for source.
func New(source lookup.Source, opts ...Option) *Resolver {
	r := &Resolver{
		source:        source,
		validator:     validation.New(),
		maxCandidates: defaultMaxCandidates,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")
	return r
}

// Service names the service this resolver targets.
func (r *Resolver) Service() film.Service {
	return r.source.Service()
}

// Resolve runs the ladder for one record. prev is the previously stored
// merged record, if any. bridgeID is the service A id confirmed during this
// cycle; it is only used when this resolver targets service B.
func (r *Resolver) Resolve(ctx context.Context, source film.SourceRecord, prev *film.MergedRecord, bridgeID string) Outcome {
	service := r.source.Service()
	ctx = services.WithService(ctx, string(service))
	run := &ladder{
		r:         r,
		source:    source,
		service:   service,
		logger:    logging.WithContext(ctx, r.logger),
		directors: make(map[string][]string),
		rejected:  make(map[string]string),
	}

	steps := []func(context.Context) (Outcome, bool){
		func(ctx context.Context) (Outcome, bool) { return run.knownID(ctx, prev.ConfirmedID(service)) },
	}
	if service == film.ServiceIMDb {
		steps = append(steps, func(ctx context.Context) (Outcome, bool) { return run.directLink(ctx) })
	}
	if service == film.ServiceTMDB {
		steps = append(steps, func(ctx context.Context) (Outcome, bool) { return run.bridge(ctx, bridgeID) })
	}
	steps = append(steps, func(ctx context.Context) (Outcome, bool) { return run.search(ctx) })

	for _, step := range steps {
		if outcome, done := step(ctx); done {
			run.logResult(outcome)
			return outcome
		}
	}
	outcome := Outcome{Service: service, Status: StatusUnresolved, Rung: run.lastRung}
	run.logResult(outcome)
	return outcome
}

type ladder struct {
	r        *Resolver
	source   film.SourceRecord
	service  film.Service
	logger   *slog.Logger
	lastRung string

	// directors caches credit lookups per candidate; rejected remembers why a
	// candidate failed so later escalations skip it without a round-trip.
	directors map[string][]string
	rejected  map[string]string
}

func (l *ladder) failed(rung string, err error) (Outcome, bool) {
	return Outcome{Service: l.service, Status: StatusFailed, Rung: rung, Err: err}, true
}

// knownID trusts an id confirmed on an earlier cycle. The id stays
// authoritative even when the fetch yields nothing this time.
func (l *ladder) knownID(ctx context.Context, id string) (Outcome, bool) {
	if id == "" {
		return Outcome{}, false
	}
	l.lastRung = RungKnownID
	record, err := l.r.source.FetchByID(ctx, id)
	if err != nil {
		return l.failed(RungKnownID, err)
	}
	return Outcome{Service: l.service, Status: StatusResolved, ID: id, Rung: RungKnownID, Record: record}, true
}

// directLink validates the service A id embedded in the source page.
func (l *ladder) directLink(ctx context.Context) (Outcome, bool) {
	id := strings.TrimSpace(l.source.IMDbID)
	if id == "" {
		return Outcome{}, false
	}
	l.lastRung = RungDirectLink
	record, err := l.r.source.FetchByID(ctx, id)
	if err != nil {
		return l.failed(RungDirectLink, err)
	}
	if record == nil {
		l.logRejection(RungDirectLink, id, "no-data")
		return Outcome{}, false
	}
	candidate := record.Candidate()
	if candidate.ID == "" {
		candidate.ID = id
	}
	directors := record.Directors
	if len(directors) == 0 && l.r.validator.NeedsDirectors(l.source) {
		directors, err = l.r.source.FetchCreditedDirectors(ctx, id)
		if err != nil {
			return l.failed(RungDirectLink, err)
		}
	}
	verdict := l.r.validator.Check(l.source, candidate, directors)
	if !verdict.Valid {
		l.logRejection(RungDirectLink, id, verdict.Reason)
		return Outcome{}, false
	}
	return Outcome{Service: l.service, Status: StatusResolved, ID: id, Rung: RungDirectLink, Record: record}, true
}

// bridge maps the service A id onto service B. Bridged entries are the same
// film by construction, so only kind and year are checked.
func (l *ladder) bridge(ctx context.Context, imdbID string) (Outcome, bool) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return Outcome{}, false
	}
	l.lastRung = RungBridge
	matches, err := l.r.source.FindByExternalID(ctx, imdbID)
	if err != nil {
		return l.failed(RungBridge, err)
	}
	for _, match := range matches {
		verdict := l.r.validator.Prefilter(l.source, match)
		if !verdict.Valid {
			l.logRejection(RungBridge, match.ID, verdict.Reason)
			continue
		}
		return l.accept(ctx, RungBridge, imdbID, match)
	}
	return Outcome{}, false
}

type searchStep struct {
	rung  string
	year  int
	kinds []film.Kind
}

func escalation(year int, known bool) []searchStep {
	if !known {
		return []searchStep{
			{rung: RungFeature, kinds: film.FeatureKinds()},
			{rung: RungRelaxed, kinds: film.RelaxedKinds()},
			{rung: RungUnconstrained},
		}
	}
	return []searchStep{
		{rung: RungFeature, year: year, kinds: film.FeatureKinds()},
		{rung: RungRelaxed, year: year, kinds: film.RelaxedKinds()},
		{rung: RungYearNext, year: year + 1, kinds: film.RelaxedKinds()},
		{rung: RungYearPrev, year: year - 1, kinds: film.RelaxedKinds()},
	}
}

// search walks every query title through the escalation steps and returns
// the first candidate passing every validation rule.
func (l *ladder) search(ctx context.Context) (Outcome, bool) {
	year, known := l.source.KnownYear()
	steps := escalation(year, known)
	for _, query := range QueryTitles(l.source, l.r.englishLabels) {
		for _, step := range steps {
			l.lastRung = step.rung
			matches, err := l.r.source.Search(ctx, query, step.year, step.kinds)
			if err != nil {
				return l.failed(step.rung, err)
			}
			if len(matches) > l.r.maxCandidates {
				matches = matches[:l.r.maxCandidates]
			}
			for _, match := range matches {
				ok, err := l.validate(ctx, step.rung, match)
				if err != nil {
					return l.failed(step.rung, err)
				}
				if ok {
					return l.accept(ctx, step.rung, query, match)
				}
			}
		}
	}
	return Outcome{}, false
}

// validate applies the cheap checks first and fetches credited directors
// only for candidates that survive them.
func (l *ladder) validate(ctx context.Context, rung string, match film.CandidateMatch) (bool, error) {
	if match.ID == "" {
		return false, nil
	}
	key := match.Key()
	if _, seen := l.rejected[key]; seen {
		return false, nil
	}
	if verdict := l.r.validator.Prefilter(l.source, match); !verdict.Valid {
		l.reject(rung, match, verdict.Reason)
		return false, nil
	}
	var directors []string
	if l.r.validator.NeedsDirectors(l.source) {
		cached, ok := l.directors[key]
		if !ok {
			fetched, err := l.r.source.FetchCreditedDirectors(ctx, match.ID)
			if err != nil {
				return false, err
			}
			l.directors[key] = fetched
			cached = fetched
		}
		directors = cached
	}
	verdict := l.r.validator.Check(l.source, match, directors)
	if !verdict.Valid {
		l.reject(rung, match, verdict.Reason)
		return false, nil
	}
	return true, nil
}

// reject remembers failures that do not depend on the search step. A year
// mismatch is rechecked because the same hit may come back with a listing
// that recovers the year.
func (l *ladder) reject(rung string, match film.CandidateMatch, reason string) {
	if reason != validation.ReasonYearMismatch {
		l.rejected[match.Key()] = reason
	}
	l.logRejection(rung, match.ID, reason)
}

func (l *ladder) accept(ctx context.Context, rung, query string, match film.CandidateMatch) (Outcome, bool) {
	record, err := l.r.source.FetchByID(ctx, match.ID)
	if err != nil {
		return l.failed(rung, err)
	}
	return Outcome{
		Service: l.service,
		Status:  StatusResolved,
		ID:      match.ID,
		Rung:    rung,
		Query:   query,
		Record:  record,
	}, true
}

func (l *ladder) logRejection(rung, id, reason string) {
	l.logger.Debug("candidate rejected",
		logging.Args(append(logging.DecisionAttrs("candidate_validation", "rejected", reason),
			logging.String("rung", rung),
			logging.String("external_id", id),
		)...)...,
	)
}

func (l *ladder) logResult(outcome Outcome) {
	attrs := append(logging.DecisionAttrs("identity_resolution", string(outcome.Status), outcome.Rung),
		logging.String("external_id", outcome.ID),
	)
	if outcome.Query != "" {
		attrs = append(attrs, logging.String("query", outcome.Query))
	}
	if outcome.Err != nil {
		attrs = append(attrs, logging.Error(outcome.Err))
		logging.ErrorWithContext(l.logger, "identity resolution failed", "resolution_failed", attrs...)
		return
	}
	l.logger.Debug("identity resolution finished", logging.Args(attrs...)...)
}
