package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filmbridge/internal/film"
	"filmbridge/internal/lookup/httpx"
	"filmbridge/internal/lookup/tmdb"
	"filmbridge/internal/services"
	"filmbridge/internal/validation"
)

func fastTransport() *httpx.Client {
	return httpx.New("tmdb", httpx.WithRetryBudget(50*time.Millisecond), httpx.WithInitialInterval(5*time.Millisecond))
}

func newClient(t *testing.T, handler http.HandlerFunc) *tmdb.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := tmdb.New("key", server.URL, "en-US", tmdb.WithTransport(fastTransport()), tmdb.WithImageBaseURL("https://img.test/t/p/w500/"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
	if _, err := tmdb.New("key", " ", "en-US"); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestSearchSendsYearAndMapsKinds(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("api_key") != "key" {
			t.Errorf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if query.Get("primary_release_year") != "1970" {
			t.Errorf("expected primary_release_year=1970, got %q", query.Get("primary_release_year"))
		}
		if query.Get("query") != "Ucho" {
			t.Errorf("expected query=Ucho, got %q", query.Get("query"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"id":42,"title":"The Ear","original_title":"Ucho","release_date":"1970-01-01","genre_ids":[18]},
			{"id":43,"title":"Ucho TV","release_date":"1970-05-01","genre_ids":[10770]}
		]}`))
	})

	matches, err := client.Search(context.Background(), "Ucho", 1970, film.FeatureKinds())
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected tv movie filtered out, got %#v", matches)
	}
	got := matches[0]
	if got.ID != "42" || got.Year != 1970 || got.Kind != film.KindMovie || got.Service != film.ServiceTMDB {
		t.Fatalf("unexpected candidate %#v", got)
	}
	if got.Listing != "The Ear (1970-01-01) Ucho" {
		t.Fatalf("unexpected listing %q", got.Listing)
	}

	relaxed, err := client.Search(context.Background(), "Ucho", 1970, film.RelaxedKinds())
	if err != nil {
		t.Fatal(err)
	}
	if len(relaxed) != 2 || relaxed[1].Kind != film.KindTVMovie {
		t.Fatalf("expected tv movie with relaxed kinds, got %#v", relaxed)
	}
}

func TestSearchOmitsYearWhenUnknown(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("primary_release_year") {
			t.Errorf("year should be omitted, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	matches, err := client.Search(context.Background(), "Ucho", 0, nil)
	if err != nil || len(matches) != 0 {
		t.Fatalf("Search = %v, %v", matches, err)
	}
}

func TestSearchHTTPError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status_code":500}`))
	})
	_, err := client.Search(context.Background(), "fail", 0, nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error when TMDB returns 500, got %v", err)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.Search(context.Background(), "  ", 0, nil); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestFetchByIDMapsDetails(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/42" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("append_to_response") != "videos,credits" {
			t.Errorf("expected appended videos and credits, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{
			"id":42,"imdb_id":"tt0066498","title":"The Ear","original_title":"Ucho",
			"original_language":"cs","overview":" A paranoid night. ","release_date":"1970-01-01",
			"poster_path":"/poster.jpg","backdrop_path":"/back.jpg",
			"vote_average":7.4,"vote_count":310,"popularity":3.2,"runtime":94,
			"genres":[{"id":18,"name":"Drama"},{"id":53,"name":"Thriller"}],
			"videos":{"results":[
				{"key":"teaser","site":"YouTube","type":"Teaser","official":true},
				{"key":"fan","site":"YouTube","type":"Trailer","official":false},
				{"key":"main","site":"YouTube","type":"Trailer","official":true}
			]},
			"credits":{"crew":[
				{"name":"Karel Kachyňa","job":"Director"},
				{"name":"Jan Procházka","job":"Screenplay"},
				{"name":"Karel Kachyňa","job":"Director"}
			]}
		}`))
	})

	record, err := client.FetchByID(context.Background(), "42")
	if err != nil {
		t.Fatalf("FetchByID returned error: %v", err)
	}
	if record.ID != "42" || record.Year != 1970 || record.Kind != film.KindMovie {
		t.Fatalf("unexpected identity fields %#v", record)
	}
	if record.Synopsis != "A paranoid night." {
		t.Fatalf("synopsis not trimmed: %q", record.Synopsis)
	}
	if record.PosterURL != "https://img.test/t/p/w500/poster.jpg" || record.BackdropURL != "https://img.test/t/p/w500/back.jpg" {
		t.Fatalf("unexpected image urls %q %q", record.PosterURL, record.BackdropURL)
	}
	if record.TrailerURL != "https://www.youtube.com/watch?v=main" {
		t.Fatalf("expected official trailer, got %q", record.TrailerURL)
	}
	if len(record.Directors) != 1 || record.Directors[0] != "Karel Kachyňa" {
		t.Fatalf("unexpected directors %v", record.Directors)
	}
	if len(record.Genres) != 2 || record.Runtime != 94 || record.RatingCount != 310 {
		t.Fatalf("unexpected stats %#v", record)
	}
}

func TestFetchByIDRejectsBadID(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	if _, err := client.FetchByID(context.Background(), "tt0066498"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFetchByIDNotFound(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if _, err := client.FetchByID(context.Background(), "7"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFetchCreditedDirectors(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/42/credits" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"crew":[{"name":"Karel Kachyňa","job":"Director"},{"name":"Someone","job":"Editor"}]}`))
	})
	names, err := client.FetchCreditedDirectors(context.Background(), "42")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "Karel Kachyňa" {
		t.Fatalf("unexpected directors %v", names)
	}
}

func TestFindByExternalID(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find/tt0066498" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("external_source") != "imdb_id" {
			t.Errorf("expected external_source=imdb_id, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{
			"movie_results":[{"id":42,"title":"The Ear","release_date":"1970-01-01"}],
			"tv_results":[{"id":9,"name":"Ear Show","first_air_date":"1999-02-01"}]
		}`))
	})
	matches, err := client.FindByExternalID(context.Background(), "tt0066498")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected two matches, got %#v", matches)
	}
	if matches[0].ID != "42" || matches[0].Kind != film.KindMovie {
		t.Fatalf("unexpected movie match %#v", matches[0])
	}
	if matches[1].Kind != film.KindTVSeries || matches[1].Year != 1999 {
		t.Fatalf("unexpected tv match %#v", matches[1])
	}
}

func TestSearchListingYearFeedsValidation(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"id":9831,"title":"1984","original_title":"1984","release_date":"1956-03-06","genre_ids":[18]},
			{"id":9314,"title":"Nineteen Eighty-Four","original_title":"1984","release_date":"1984-10-10","genre_ids":[18]}
		]}`))
	})
	matches, err := client.Search(context.Background(), "1984", 1984, film.FeatureKinds())
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected two candidates, got %#v", matches)
	}
	v := validation.New()
	source := film.SourceRecord{Title: "1984", Year: "1984"}

	if matches[0].Listing != "1984 (1956-03-06)" {
		t.Fatalf("unexpected listing %q", matches[0].Listing)
	}
	if v.YearValid(source, matches[0]) {
		t.Fatal("the 1956 adaptation must not validate for a 1984 record")
	}
	if !v.YearValid(source, matches[1]) {
		t.Fatalf("the 1984 release should validate, listing %q", matches[1].Listing)
	}
}
