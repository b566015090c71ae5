package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"filmbridge/internal/film"
	"filmbridge/internal/services"
)

type stubClient struct {
	searchCalls int
	searchErr   error
	results     []film.CandidateMatch
	record      *film.EnrichedRecord
	fetchErr    error
	directors   []string
	directorErr error
}

func (s *stubClient) Service() film.Service { return film.ServiceTMDB }

func (s *stubClient) Search(_ context.Context, _ string, _ int, _ []film.Kind) ([]film.CandidateMatch, error) {
	s.searchCalls++
	return s.results, s.searchErr
}

func (s *stubClient) FetchByID(context.Context, string) (*film.EnrichedRecord, error) {
	return s.record, s.fetchErr
}

func (s *stubClient) FetchCreditedDirectors(context.Context, string) ([]string, error) {
	return s.directors, s.directorErr
}

type stubBridgeClient struct {
	stubClient
	bridged []film.CandidateMatch
	err     error
}

func (s *stubBridgeClient) FindByExternalID(context.Context, string) ([]film.CandidateMatch, error) {
	return s.bridged, s.err
}

func TestGuardAbsorbsTransportFailures(t *testing.T) {
	transient := services.Wrap(services.ErrTransient, "tmdb", "search", "down", errors.New("dial"))
	client := &stubClient{
		searchErr:   transient,
		fetchErr:    services.Wrap(services.ErrNotFound, "tmdb", "fetch", "404", nil),
		directorErr: services.Wrap(services.ErrExternal, "tmdb", "credits", "401", nil),
	}
	guard := NewGuard(client)

	results, err := guard.Search(context.Background(), "Ucho", 1970, film.FeatureKinds())
	if err != nil || results != nil {
		t.Fatalf("Search = %v, %v; want nil, nil", results, err)
	}
	record, err := guard.FetchByID(context.Background(), "123")
	if err != nil || record != nil {
		t.Fatalf("FetchByID = %v, %v; want nil, nil", record, err)
	}
	names, err := guard.FetchCreditedDirectors(context.Background(), "123")
	if err != nil || names != nil {
		t.Fatalf("FetchCreditedDirectors = %v, %v; want nil, nil", names, err)
	}
}

func TestGuardSurfacesMalformedPayloads(t *testing.T) {
	malformed := services.Wrap(services.ErrMalformed, "tmdb", "fetch", "decode response", errors.New("unexpected EOF"))
	guard := NewGuard(&stubClient{fetchErr: malformed})

	_, err := guard.FetchByID(context.Background(), "123")
	if !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("expected malformed error to cross the boundary, got %v", err)
	}
}

func TestGuardCachesSearches(t *testing.T) {
	client := &stubClient{results: []film.CandidateMatch{{Service: film.ServiceTMDB, ID: "1", Title: "Ucho"}}}
	guard := NewGuard(client, WithSearchCacheTTL(time.Minute))
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		results, err := guard.Search(context.Background(), "Ucho", 1970, film.FeatureKinds())
		if err != nil || len(results) != 1 {
			t.Fatalf("Search = %v, %v", results, err)
		}
	}
	if client.searchCalls != 1 {
		t.Fatalf("expected one upstream search, got %d", client.searchCalls)
	}

	if _, err := guard.Search(context.Background(), "ucho", 1971, film.FeatureKinds()); err != nil {
		t.Fatal(err)
	}
	if client.searchCalls != 2 {
		t.Fatalf("different year should miss the cache, got %d calls", client.searchCalls)
	}

	current = current.Add(2 * time.Minute)
	if _, err := guard.Search(context.Background(), "Ucho", 1970, film.FeatureKinds()); err != nil {
		t.Fatal(err)
	}
	if client.searchCalls != 3 {
		t.Fatalf("expired entry should be refetched, got %d calls", client.searchCalls)
	}
}

func TestGuardCacheReturnsCopies(t *testing.T) {
	client := &stubClient{results: []film.CandidateMatch{{ID: "1", Title: "Ucho"}}}
	guard := NewGuard(client)

	first, _ := guard.Search(context.Background(), "Ucho", 0, nil)
	first[0].Title = "mutated"
	second, _ := guard.Search(context.Background(), "Ucho", 0, nil)
	if second[0].Title != "Ucho" {
		t.Fatalf("cache entry was mutated through a returned slice: %q", second[0].Title)
	}
}

func TestGuardFailedSearchNotCached(t *testing.T) {
	client := &stubClient{searchErr: services.Wrap(services.ErrTransient, "tmdb", "search", "", nil)}
	guard := NewGuard(client)

	_, _ = guard.Search(context.Background(), "Ucho", 0, nil)
	client.searchErr = nil
	client.results = []film.CandidateMatch{{ID: "1"}}
	results, _ := guard.Search(context.Background(), "Ucho", 0, nil)
	if len(results) != 1 {
		t.Fatalf("expected fresh results after failure, got %v", results)
	}
}

func TestGuardBridge(t *testing.T) {
	plain := NewGuard(&stubClient{})
	if results, err := plain.FindByExternalID(context.Background(), "tt0066498"); err != nil || results != nil {
		t.Fatalf("non-bridging client should yield nothing, got %v %v", results, err)
	}

	bridging := NewGuard(&stubBridgeClient{bridged: []film.CandidateMatch{{ID: "42"}}})
	results, err := bridging.FindByExternalID(context.Background(), "tt0066498")
	if err != nil || len(results) != 1 || results[0].ID != "42" {
		t.Fatalf("FindByExternalID = %v, %v", results, err)
	}
}

func TestGuardRateLimitHonorsCancellation(t *testing.T) {
	client := &stubClient{results: []film.CandidateMatch{{ID: "1"}}}
	guard := NewGuard(client, WithRateLimit(0.001), WithSearchCacheTTL(0))

	if _, err := guard.Search(context.Background(), "first", 0, nil); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := guard.Search(ctx, "second", 0, nil)
	if err != nil || results != nil {
		t.Fatalf("canceled wait should degrade to no data, got %v %v", results, err)
	}
	if client.searchCalls != 1 {
		t.Fatalf("expected the second search to be skipped, got %d calls", client.searchCalls)
	}
}

func TestGuardBlankInput(t *testing.T) {
	client := &stubClient{}
	guard := NewGuard(client)
	if results, _ := guard.Search(context.Background(), "   ", 0, nil); results != nil {
		t.Fatal("blank query should not search")
	}
	if client.searchCalls != 0 {
		t.Fatal("blank query reached the client")
	}
}
