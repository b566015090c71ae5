package resolver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filmbridge/internal/film"
	"filmbridge/internal/lookup/httpx"
	"filmbridge/internal/lookup/tmdb"
	"filmbridge/internal/resolver"
)

// A title search ignores the requested year loosely, so the 1956 adaptation
// comes back for every step of the 1984 ladder. Its listing starts with the
// numeric title and must not pass for a 1984 release.
func TestResolveNumericTitleWithClientListing(t *testing.T) {
	var creditLookups int
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"id":9831,"title":"1984","original_title":"1984","release_date":"1956-03-06","genre_ids":[18]}
		]}`))
	})
	mux.HandleFunc("/movie/9831/credits", func(w http.ResponseWriter, r *http.Request) {
		creditLookups++
		_, _ = w.Write([]byte(`{"crew":[{"name":"Michael Radford","job":"Director"}]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	transport := httpx.New("tmdb", httpx.WithRetryBudget(50*time.Millisecond), httpx.WithInitialInterval(5*time.Millisecond))
	client, err := tmdb.New("key", server.URL, "en-US", tmdb.WithTransport(transport))
	if err != nil {
		t.Fatal(err)
	}

	record := film.SourceRecord{ID: 11, Title: "1984", Year: "1984", Directors: []string{"Michael Radford"}}
	outcome := resolver.New(client).Resolve(context.Background(), record, nil, "")
	if outcome.Status != resolver.StatusUnresolved || outcome.ID != "" {
		t.Fatalf("the 1956 film must not resolve for a 1984 record, got %#v", outcome)
	}
	if creditLookups != 0 {
		t.Fatalf("year check should reject before credits are fetched, got %d lookups", creditLookups)
	}
}
