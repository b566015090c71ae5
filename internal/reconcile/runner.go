package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"

	"filmbridge/internal/film"
	"filmbridge/internal/logging"
	"filmbridge/internal/merge"
	"filmbridge/internal/refresh"
	"filmbridge/internal/resolver"
	"filmbridge/internal/services"
)

const defaultWorkers = 10

// Store is the persistence the runner needs.
type Store interface {
	Get(ctx context.Context, sourceID int64) (*film.MergedRecord, error)
	Upsert(ctx context.Context, record film.MergedRecord) error
}

// Status is the per-record outcome class.
type Status string

const (
	StatusResolved   Status = "resolved"
	StatusUnresolved Status = "unresolved"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Skip reasons not produced by the refresh policy.
const (
	ReasonLowConfidence = "low-confidence"
	ReasonCanceled      = "canceled"
	ReasonDuplicate     = "duplicate"
)

// Result is the outcome of one record.
type Result struct {
	SourceID int64         `json:"source_id"`
	Title    string        `json:"title"`
	Status   Status        `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	IMDbID   string        `json:"imdb_id,omitempty"`
	IMDbRung string        `json:"imdb_rung,omitempty"`
	TMDBID   string        `json:"tmdb_id,omitempty"`
	TMDBRung string        `json:"tmdb_rung,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	// CorrelationID matches the correlation_id on every log line of this record.
	CorrelationID string `json:"correlation_id,omitempty"`
	Err           error  `json:"-"`
}

// Report aggregates a batch run.
type Report struct {
	BatchID    string         `json:"batch_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Counts     map[Status]int `json:"counts"`
	Results    []Result       `json:"results"`
}

// Count returns the number of results with the given status.
func (r Report) Count(status Status) int {
	return r.Counts[status]
}

// Runner drives records through refresh, resolution, merge and persistence.
type Runner struct {
	store     Store
	a         *resolver.Resolver
	b         *resolver.Resolver
	policy    refresh.Policy
	workers   int
	queueSize int
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithPolicy overrides the refresh policy.
func WithPolicy(policy refresh.Policy) Option {
	return func(r *Runner) { r.policy = policy }
}

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithQueueSize bounds the pool's pending task queue. Zero leaves it unbounded.
func WithQueueSize(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.queueSize = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// New constructs a Runner. a resolves service A and b service B; either may
// be nil to leave that service out.
func New(store Store, a, b *resolver.Resolver, opts ...Option) *Runner {
	r := &Runner{
		store:   store,
		a:       a,
		b:       b,
		policy:  refresh.DefaultPolicy(),
		workers: defaultWorkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = logging.NewComponentLogger(r.logger, "reconcile")
	return r
}

// Run processes sources on a bounded worker pool. Cancellation is checked
// before each record starts; a record already in its ladder runs to
// completion and is stored. Records never started are reported as skipped.
func (r *Runner) Run(ctx context.Context, sources []film.SourceRecord) (Report, error) {
	if r.store == nil {
		return Report{}, fmt.Errorf("reconcile runner has no store")
	}
	report := Report{BatchID: uuid.NewString(), StartedAt: r.now().UTC()}
	ctx = services.WithBatchID(ctx, report.BatchID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("sync batch started",
		logging.Int("records", len(sources)),
		logging.Int("workers", r.workers),
	)

	results := make([]Result, len(sources))
	started := make([]bool, len(sources))
	seen := make(map[int64]struct{}, len(sources))

	pool := pond.NewPool(r.workers, pond.WithQueueSize(r.queueSize), pond.WithContext(ctx))

	for i, source := range sources {
		if _, dup := seen[source.ID]; dup {
			results[i] = Result{SourceID: source.ID, Title: source.Title, Status: StatusSkipped, Reason: ReasonDuplicate}
			started[i] = true
			continue
		}
		seen[source.ID] = struct{}{}
		if ctx.Err() != nil {
			break
		}
		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			started[i] = true
			// A started record finishes its ladder and its write even if the
			// batch is canceled meanwhile.
			results[i] = r.process(context.WithoutCancel(ctx), source, false)
		})
	}
	pool.StopAndWait()

	for i := range results {
		if !started[i] {
			results[i] = Result{SourceID: sources[i].ID, Title: sources[i].Title, Status: StatusSkipped, Reason: ReasonCanceled}
		}
	}

	report.Results = results
	report.finish(r.now().UTC())
	logger.Info("sync batch finished",
		logging.Int("resolved", report.Count(StatusResolved)),
		logging.Int("unresolved", report.Count(StatusUnresolved)),
		logging.Int("skipped", report.Count(StatusSkipped)),
		logging.Int("failed", report.Count(StatusFailed)),
		logging.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, ctx.Err()
}

// ResolveOne runs the pipeline for a single record regardless of the
// refresh policy.
func (r *Runner) ResolveOne(ctx context.Context, source film.SourceRecord) Result {
	ctx = services.WithBatchID(ctx, uuid.NewString())
	return r.process(ctx, source, true)
}

func (r *Runner) process(ctx context.Context, source film.SourceRecord, force bool) Result {
	start := time.Now()
	ctx = services.WithSourceID(ctx, source.ID)
	correlationID := uuid.NewString()
	ctx = services.WithRequestID(ctx, correlationID)
	logger := logging.WithContext(ctx, r.logger)

	result := r.reconcile(ctx, logger, source, force)
	result.SourceID = source.ID
	result.Title = source.Title
	result.CorrelationID = correlationID
	result.Duration = time.Since(start)
	if result.Err != nil {
		result.Error = result.Err.Error()
	}

	switch result.Status {
	case StatusFailed:
		logging.ErrorWithContext(logger, "record failed", "record_failed",
			logging.Error(result.Err),
			logging.String(logging.FieldErrorHint, "inspect the service payload for this record"),
		)
	default:
		logger.Info("record reconciled",
			logging.String("status", string(result.Status)),
			logging.String("reason", result.Reason),
			logging.String("imdb_id", result.IMDbID),
			logging.String("tmdb_id", result.TMDBID),
		)
	}
	return result
}

func (r *Runner) reconcile(ctx context.Context, logger *slog.Logger, source film.SourceRecord, force bool) Result {
	prev, err := r.store.Get(ctx, source.ID)
	if err != nil {
		return Result{Status: StatusFailed, Err: fmt.Errorf("load previous record: %w", err)}
	}
	now := r.now()

	if source.LowConfidence {
		merged := merge.Merge(merge.Input{Source: source, Prev: prev}, now)
		if err := r.store.Upsert(ctx, merged); err != nil {
			return Result{Status: StatusFailed, Err: fmt.Errorf("store merged record: %w", err)}
		}
		return Result{Status: StatusSkipped, Reason: ReasonLowConfidence, IMDbID: merged.IMDbID, TMDBID: merged.TMDBID}
	}

	if !force {
		decision := r.policy.Decide(prev, now)
		outcome := "skip"
		if decision.Resolve {
			outcome = "resolve"
		}
		logger.Debug("refresh decision", logging.Args(logging.DecisionAttrs("refresh", outcome, decision.Reason)...)...)
		if !decision.Resolve {
			return Result{Status: StatusSkipped, Reason: decision.Reason, IMDbID: prev.ConfirmedID(film.ServiceIMDb), TMDBID: prev.ConfirmedID(film.ServiceTMDB)}
		}
	}

	var outA, outB resolver.Outcome
	if r.a != nil {
		outA = r.a.Resolve(ctx, source, prev, "")
		if outA.Status == resolver.StatusFailed {
			return Result{Status: StatusFailed, IMDbRung: outA.Rung, Err: outA.Err}
		}
	}
	if r.b != nil {
		outB = r.b.Resolve(ctx, source, prev, bridgeID(outA, prev))
		if outB.Status == resolver.StatusFailed {
			return Result{Status: StatusFailed, IMDbID: outA.ID, TMDBRung: outB.Rung, Err: outB.Err}
		}
	}

	merged := merge.Merge(merge.Input{
		Source:   source,
		A:        outA.Record,
		B:        outB.Record,
		Prev:     prev,
		IMDbID:   outA.ID,
		TMDBID:   outB.ID,
		IMDbRung: outA.Rung,
		TMDBRung: outB.Rung,
	}, now)
	if err := r.store.Upsert(ctx, merged); err != nil {
		return Result{Status: StatusFailed, Err: fmt.Errorf("store merged record: %w", err)}
	}

	status := StatusUnresolved
	if outA.Resolved() || outB.Resolved() {
		status = StatusResolved
	}
	return Result{
		Status:   status,
		IMDbID:   merged.IMDbID,
		IMDbRung: outA.Rung,
		TMDBID:   merged.TMDBID,
		TMDBRung: outB.Rung,
	}
}

// bridgeID prefers the service A id confirmed this cycle and falls back to
// one stored earlier.
func bridgeID(a resolver.Outcome, prev *film.MergedRecord) string {
	if a.Resolved() && a.ID != "" {
		return a.ID
	}
	return prev.ConfirmedID(film.ServiceIMDb)
}

func (r *Report) finish(at time.Time) {
	r.FinishedAt = at
	sort.SliceStable(r.Results, func(i, j int) bool { return r.Results[i].SourceID < r.Results[j].SourceID })
	r.Counts = make(map[Status]int, 4)
	for _, result := range r.Results {
		r.Counts[result.Status]++
	}
}
