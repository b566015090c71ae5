package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Path prefixes served by NewServiceServer.
const (
	SuggestPath = "/suggestion"
	GraphQLPath = "/graphql"
	TMDBPath    = "/tmdb"
)

// Fixture identifiers for Ucho (1970), the one film NewServiceServer knows.
const (
	UchoIMDbID = "tt0066498"
	UchoTMDBID = "42"
)

const uchoDirectors = `"directors":{"edges":[{"node":{"name":{"nameText":{"text":"Karel Kachyňa"}}}}]}`

// NewServiceServer serves IMDb suggestion and GraphQL payloads plus TMDB
// find and detail payloads for Ucho. Every other lookup is a 404 or a null
// GraphQL title. The suggestion list leads with a podcast of the same name so
// classification filtering is exercised.
func NewServiceServer(t testing.TB) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(SuggestPath+"/x/Ucho.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"d":[
			{"id":"tt1234567","l":"Ucho","y":1970,"q":"podcast series","qid":"podcastSeries"},
			{"id":"tt0066498","l":"Ucho","y":1970,"q":"feature","qid":"movie","s":"Radoslav Brzobohatý"}
		]}`))
	})
	mux.HandleFunc(GraphQLPath, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OperationName string            `json:"operationName"`
			Variables     map[string]string `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Variables["id"] != UchoIMDbID {
			_, _ = w.Write([]byte(`{"data":{"title":null}}`))
			return
		}
		if body.OperationName == "Directors" {
			_, _ = w.Write([]byte(`{"data":{"title":{"id":"tt0066498",` + uchoDirectors + `}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"title":{
			"id":"tt0066498","titleText":{"text":"The Ear"},"titleType":{"id":"movie"},
			"releaseYear":{"year":1970},"ratingsSummary":{"aggregateRating":7.9,"voteCount":2513},
			"plot":{"plotText":{"plainText":"IMDb plot."}},` + uchoDirectors + `}}}`))
	})
	mux.HandleFunc(TMDBPath+"/find/"+UchoIMDbID, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"movie_results":[{"id":42,"title":"The Ear","release_date":"1970-01-01"}]}`))
	})
	mux.HandleFunc(TMDBPath+"/movie/"+UchoTMDBID, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":42,"title":"The Ear","original_title":"Ucho","release_date":"1970-01-01",
			"overview":"A paranoid night.","poster_path":"/poster.jpg","vote_average":7.4,"vote_count":310,
			"popularity":3.2,"original_language":"cs","credits":{"crew":[{"name":"Karel Kachyňa","job":"Director"}]}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
