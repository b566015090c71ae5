package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"filmbridge/internal/film"
	"filmbridge/internal/logging"
	"filmbridge/internal/services"
)

const defaultSearchCacheTTL = 10 * time.Minute

type searchCacheEntry struct {
	results []film.CandidateMatch
	expires time.Time
}

// Guard enforces the boundary contract around a Client.
type Guard struct {
	client  Client
	limiter *rate.Limiter
	logger  *slog.Logger

	mu       sync.Mutex
	cache    map[string]searchCacheEntry
	cacheTTL time.Duration
	now      func() time.Time
}

var _ Source = (*Guard)(nil)

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithRateLimit caps requests per second against the wrapped client.
// Non-positive values disable limiting.
func WithRateLimit(perSecond float64) GuardOption {
	return func(g *Guard) {
		if perSecond > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			g.limiter = nil
		}
	}
}

// WithSearchCacheTTL sets how long search results are reused. Zero disables
// the cache.
func WithSearchCacheTTL(ttl time.Duration) GuardOption {
	return func(g *Guard) {
		if ttl < 0 {
			ttl = 0
		}
		g.cacheTTL = ttl
	}
}

// WithLogger attaches the logger used for absorbed failures.
func WithLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// NewGuard wraps client.
func NewGuard(client Client, opts ...GuardOption) *Guard {
	g := &Guard{
		client:   client,
		cache:    make(map[string]searchCacheEntry),
		cacheTTL: defaultSearchCacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.logger = logging.NewComponentLogger(g.logger, "lookup")
	return g
}

// Service names the wrapped service.
func (g *Guard) Service() film.Service {
	if g == nil || g.client == nil {
		return ""
	}
	return g.client.Service()
}

// Search returns ranked candidates, or nil when the service is unavailable.
func (g *Guard) Search(ctx context.Context, query string, year int, kinds []film.Kind) ([]film.CandidateMatch, error) {
	query = strings.TrimSpace(query)
	if g == nil || g.client == nil || query == "" {
		return nil, nil
	}
	key := searchCacheKey(query, year, kinds)
	if results, ok := g.cached(key); ok {
		return results, nil
	}
	if err := g.wait(ctx); err != nil {
		return nil, g.absorb(ctx, "search", err, logging.String("query", query))
	}
	results, err := g.client.Search(ctx, query, year, kinds)
	if err != nil {
		return nil, g.absorb(ctx, "search", err, logging.String("query", query), logging.Int("year", year))
	}
	g.store(key, results)
	return cloneCandidates(results), nil
}

// FetchByID returns the detail record, or nil when unavailable.
func (g *Guard) FetchByID(ctx context.Context, id string) (*film.EnrichedRecord, error) {
	id = strings.TrimSpace(id)
	if g == nil || g.client == nil || id == "" {
		return nil, nil
	}
	if err := g.wait(ctx); err != nil {
		return nil, g.absorb(ctx, "fetch", err, logging.String("external_id", id))
	}
	record, err := g.client.FetchByID(ctx, id)
	if err != nil {
		return nil, g.absorb(ctx, "fetch", err, logging.String("external_id", id))
	}
	return record, nil
}

// FetchCreditedDirectors returns credited director names, or nil when unavailable.
func (g *Guard) FetchCreditedDirectors(ctx context.Context, id string) ([]string, error) {
	id = strings.TrimSpace(id)
	if g == nil || g.client == nil || id == "" {
		return nil, nil
	}
	if err := g.wait(ctx); err != nil {
		return nil, g.absorb(ctx, "directors", err, logging.String("external_id", id))
	}
	names, err := g.client.FetchCreditedDirectors(ctx, id)
	if err != nil {
		return nil, g.absorb(ctx, "directors", err, logging.String("external_id", id))
	}
	return names, nil
}

// FindByExternalID bridges a service A id, or returns nil when the wrapped
// client cannot bridge or the service is unavailable.
func (g *Guard) FindByExternalID(ctx context.Context, imdbID string) ([]film.CandidateMatch, error) {
	imdbID = strings.TrimSpace(imdbID)
	if g == nil || g.client == nil || imdbID == "" {
		return nil, nil
	}
	bridger, ok := g.client.(Bridger)
	if !ok {
		return nil, nil
	}
	if err := g.wait(ctx); err != nil {
		return nil, g.absorb(ctx, "bridge", err, logging.String("imdb_id", imdbID))
	}
	results, err := bridger.FindByExternalID(ctx, imdbID)
	if err != nil {
		return nil, g.absorb(ctx, "bridge", err, logging.String("imdb_id", imdbID))
	}
	return results, nil
}

func (g *Guard) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return services.Wrap(services.ErrTimeout, string(g.Service()), "rate limit", "wait canceled", err)
	}
	return nil
}

// absorb logs err and returns nil unless err marks a malformed payload.
func (g *Guard) absorb(ctx context.Context, operation string, err error, attrs ...logging.Attr) error {
	if err == nil {
		return nil
	}
	if !services.Absorbable(err) {
		return err
	}
	logger := logging.WithContext(ctx, g.logger)
	if errors.Is(err, services.ErrNotFound) {
		logger.Debug("service returned no data", logging.Args(append(attrs,
			logging.String("operation", operation),
			logging.String(logging.FieldService, string(g.Service())),
		)...)...)
		return nil
	}
	attrs = append(attrs,
		logging.String("operation", operation),
		logging.String(logging.FieldService, string(g.Service())),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check service availability and credentials"),
		logging.String(logging.FieldImpact, "treated as no data; resolution escalates to the next step"),
	)
	logging.WarnWithContext(logger, "service lookup failed", "lookup_failed", attrs...)
	return nil
}

func (g *Guard) cached(key string) ([]film.CandidateMatch, bool) {
	if g.cacheTTL <= 0 {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.cache[key]
	if !ok {
		return nil, false
	}
	if !g.now().Before(entry.expires) {
		delete(g.cache, key)
		return nil, false
	}
	return cloneCandidates(entry.results), true
}

func (g *Guard) store(key string, results []film.CandidateMatch) {
	if g.cacheTTL <= 0 {
		return
	}
	g.mu.Lock()
	g.cache[key] = searchCacheEntry{results: cloneCandidates(results), expires: g.now().Add(g.cacheTTL)}
	g.mu.Unlock()
}

func searchCacheKey(query string, year int, kinds []film.Kind) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(query))
	b.WriteString("|y=")
	b.WriteString(strconv.Itoa(year))
	b.WriteString("|k=")
	for i, kind := range kinds {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(kind))
	}
	return b.String()
}

func cloneCandidates(in []film.CandidateMatch) []film.CandidateMatch {
	if in == nil {
		return nil
	}
	out := make([]film.CandidateMatch, len(in))
	copy(out, in)
	return out
}
