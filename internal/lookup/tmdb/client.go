package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"filmbridge/internal/film"
	"filmbridge/internal/lookup"
	"filmbridge/internal/lookup/httpx"
	"filmbridge/internal/services"
)

const (
	defaultImageBaseURL = "https://image.tmdb.org/t/p/original"
	genreTVMovie        = 10770
	component           = "tmdb"
)

// Result represents a single TMDB search match.
type Result struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	GenreIDs      []int   `json:"genre_ids"`
	Popularity    float64 `json:"popularity"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int64   `json:"vote_count"`
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// CrewMember is one crew credit.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits is the movie credits payload.
type Credits struct {
	Crew []CrewMember `json:"crew"`
}

// Video is one entry of the videos payload.
type Video struct {
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// Genre is a named TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the /movie/{id} payload with appended videos and credits.
type MovieDetails struct {
	ID               int64   `json:"id"`
	IMDbID           string  `json:"imdb_id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
	Runtime          int     `json:"runtime"`
	Genres           []Genre `json:"genres"`
	Videos           struct {
		Results []Video `json:"results"`
	} `json:"videos"`
	Credits Credits `json:"credits"`
}

// FindResponse is the /find/{external_id} payload.
type FindResponse struct {
	MovieResults []Result `json:"movie_results"`
	TVResults    []struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		FirstAirDate string `json:"first_air_date"`
	} `json:"tv_results"`
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey       string
	baseURL      string
	language     string
	imageBaseURL string
	http         *httpx.Client
}

var (
	_ lookup.Client  = (*Client)(nil)
	_ lookup.Bridger = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithTransport overrides the default JSON transport.
func WithTransport(transport *httpx.Client) Option {
	return func(c *Client) {
		if transport != nil {
			c.http = transport
		}
	}
}

// WithImageBaseURL overrides the prefix used to build poster and backdrop URLs.
func WithImageBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.imageBaseURL = base
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		language:     strings.TrimSpace(language),
		imageBaseURL: defaultImageBaseURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.http == nil {
		client.http = httpx.New(component)
	}
	return client, nil
}

// Service identifies TMDB as service B.
func (c *Client) Service() film.Service { return film.ServiceTMDB }

// Search performs a movie search. TMDB only indexes movies here, so the kinds
// filter is applied to the derived classification.
func (c *Client) Search(ctx context.Context, query string, year int, kinds []film.Kind) ([]film.CandidateMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := c.params()
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}

	var payload Response
	if err := c.http.GetJSON(ctx, "search", c.endpoint("/search/movie", params), &payload); err != nil {
		return nil, err
	}

	matches := make([]film.CandidateMatch, 0, len(payload.Results))
	for _, result := range payload.Results {
		match := result.candidate()
		if !film.ContainsKind(kinds, match.Kind) {
			continue
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// FetchByID fetches movie details with videos and credits appended.
func (c *Client) FetchByID(ctx context.Context, id string) (*film.EnrichedRecord, error) {
	movieID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	params := c.params()
	params.Set("append_to_response", "videos,credits")

	var payload MovieDetails
	if err := c.http.GetJSON(ctx, "fetch", c.endpoint(fmt.Sprintf("/movie/%d", movieID), params), &payload); err != nil {
		return nil, err
	}
	if payload.ID == 0 {
		return nil, services.Wrap(services.ErrMalformed, component, "fetch", "movie payload without id", nil)
	}
	return c.enriched(payload), nil
}

// FetchCreditedDirectors returns crew members credited with the Director job.
func (c *Client) FetchCreditedDirectors(ctx context.Context, id string) ([]string, error) {
	movieID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var payload Credits
	if err := c.http.GetJSON(ctx, "credits", c.endpoint(fmt.Sprintf("/movie/%d/credits", movieID), c.params()), &payload); err != nil {
		return nil, err
	}
	return directorsFrom(payload.Crew), nil
}

// FindByExternalID maps an IMDb id to TMDB entries.
func (c *Client) FindByExternalID(ctx context.Context, imdbID string) ([]film.CandidateMatch, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, errors.New("imdb id must not be empty")
	}
	params := c.params()
	params.Set("external_source", "imdb_id")

	var payload FindResponse
	if err := c.http.GetJSON(ctx, "find", c.endpoint("/find/"+url.PathEscape(imdbID), params), &payload); err != nil {
		return nil, err
	}
	matches := make([]film.CandidateMatch, 0, len(payload.MovieResults)+len(payload.TVResults))
	for _, result := range payload.MovieResults {
		matches = append(matches, result.candidate())
	}
	for _, show := range payload.TVResults {
		year, _ := film.ParseYear(show.FirstAirDate)
		matches = append(matches, film.CandidateMatch{
			Service: film.ServiceTMDB,
			ID:      strconv.FormatInt(show.ID, 10),
			Title:   show.Name,
			Year:    year,
			Kind:    film.KindTVSeries,
		})
	}
	return matches, nil
}

func (c *Client) params() url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	return params
}

func (c *Client) endpoint(path string, params url.Values) string {
	return c.baseURL + path + "?" + params.Encode()
}

func (c *Client) image(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) enriched(payload MovieDetails) *film.EnrichedRecord {
	year, _ := film.ParseYear(payload.ReleaseDate)
	record := &film.EnrichedRecord{
		Service:       film.ServiceTMDB,
		ID:            strconv.FormatInt(payload.ID, 10),
		Kind:          kindFromGenres(genreIDs(payload.Genres)),
		Title:         payload.Title,
		OriginalTitle: payload.OriginalTitle,
		ReleaseDate:   payload.ReleaseDate,
		Year:          year,
		Synopsis:      strings.TrimSpace(payload.Overview),
		PosterURL:     c.image(payload.PosterPath),
		BackdropURL:   c.image(payload.BackdropPath),
		RatingAverage: payload.VoteAverage,
		RatingCount:   payload.VoteCount,
		Popularity:    payload.Popularity,
		Language:      payload.OriginalLanguage,
		Adult:         payload.Adult,
		TrailerURL:    trailerURL(payload.Videos.Results),
		Runtime:       payload.Runtime,
		Directors:     directorsFrom(payload.Credits.Crew),
	}
	for _, genre := range payload.Genres {
		if name := strings.TrimSpace(genre.Name); name != "" {
			record.Genres = append(record.Genres, name)
		}
	}
	return record
}

func (r Result) candidate() film.CandidateMatch {
	year, _ := film.ParseYear(r.ReleaseDate)
	listing := r.Title
	if r.ReleaseDate != "" {
		listing += " (" + r.ReleaseDate + ")"
	}
	if r.OriginalTitle != "" && r.OriginalTitle != r.Title {
		listing += " " + r.OriginalTitle
	}
	return film.CandidateMatch{
		Service: film.ServiceTMDB,
		ID:      strconv.FormatInt(r.ID, 10),
		Title:   r.Title,
		Year:    year,
		Listing: listing,
		Kind:    kindFromGenres(r.GenreIDs),
	}
}

func kindFromGenres(ids []int) film.Kind {
	for _, id := range ids {
		if id == genreTVMovie {
			return film.KindTVMovie
		}
	}
	return film.KindMovie
}

func genreIDs(genres []Genre) []int {
	ids := make([]int, 0, len(genres))
	for _, genre := range genres {
		ids = append(ids, genre.ID)
	}
	return ids
}

func directorsFrom(crew []CrewMember) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, member := range crew {
		if !strings.EqualFold(member.Job, "Director") {
			continue
		}
		name := strings.TrimSpace(member.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func trailerURL(videos []Video) string {
	var fallback string
	for _, video := range videos {
		if !strings.EqualFold(video.Site, "YouTube") || video.Key == "" || !strings.EqualFold(video.Type, "Trailer") {
			continue
		}
		link := "https://www.youtube.com/watch?v=" + video.Key
		if video.Official {
			return link
		}
		if fallback == "" {
			fallback = link
		}
	}
	return fallback
}

func parseID(id string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || value <= 0 {
		return 0, services.Wrap(services.ErrValidation, component, "parse id", fmt.Sprintf("invalid movie id %q", id), err)
	}
	return value, nil
}
