package imdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"filmbridge/internal/film"
	"filmbridge/internal/lookup"
	"filmbridge/internal/lookup/httpx"
	"filmbridge/internal/services"
)

const component = "imdb"

var titleIDPattern = regexp.MustCompile(`^tt[0-9]{5,10}$`)

const titleQuery = `query Title($id: ID!) {
  title(id: $id) {
    id
    titleText { text }
    originalTitleText { text }
    titleType { id }
    releaseYear { year }
    releaseDate { day month year }
    ratingsSummary { aggregateRating voteCount }
    plot { plotText { plainText } }
    primaryImage { url }
    runtime { seconds }
    genres { genres { text } }
    directors: credits(first: 25, filter: { categories: ["director"] }) {
      edges { node { name { nameText { text } } } }
    }
  }
}`

const directorsQuery = `query Directors($id: ID!) {
  title(id: $id) {
    id
    directors: credits(first: 25, filter: { categories: ["director"] }) {
      edges { node { name { nameText { text } } } }
    }
  }
}`

// Suggestion is one entry of the suggestion endpoint.
type Suggestion struct {
	ID       string `json:"id"`
	Label    string `json:"l"`
	Year     int    `json:"y"`
	Range    string `json:"yr"`
	Type     string `json:"q"`
	TypeID   string `json:"qid"`
	Starring string `json:"s"`
}

type suggestionResponse struct {
	Data []Suggestion `json:"d"`
}

type textValue struct {
	Text string `json:"text"`
}

type creditEdges struct {
	Edges []struct {
		Node struct {
			Name struct {
				NameText textValue `json:"nameText"`
			} `json:"name"`
		} `json:"node"`
	} `json:"edges"`
}

type title struct {
	ID                string     `json:"id"`
	TitleText         *textValue `json:"titleText"`
	OriginalTitleText *textValue `json:"originalTitleText"`
	TitleType         *struct {
		ID string `json:"id"`
	} `json:"titleType"`
	ReleaseYear *struct {
		Year int `json:"year"`
	} `json:"releaseYear"`
	ReleaseDate *struct {
		Day   int `json:"day"`
		Month int `json:"month"`
		Year  int `json:"year"`
	} `json:"releaseDate"`
	RatingsSummary *struct {
		AggregateRating float64 `json:"aggregateRating"`
		VoteCount       int64   `json:"voteCount"`
	} `json:"ratingsSummary"`
	Plot *struct {
		PlotText *struct {
			PlainText string `json:"plainText"`
		} `json:"plotText"`
	} `json:"plot"`
	PrimaryImage *struct {
		URL string `json:"url"`
	} `json:"primaryImage"`
	Runtime *struct {
		Seconds int `json:"seconds"`
	} `json:"runtime"`
	Genres *struct {
		Genres []textValue `json:"genres"`
	} `json:"genres"`
	Directors *creditEdges `json:"directors"`
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data struct {
		Title *title `json:"title"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// Client queries IMDb suggestion search and the GraphQL title API.
type Client struct {
	suggestURL string
	graphQLURL string
	http       *httpx.Client
}

var _ lookup.Client = (*Client)(nil)

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

// New creates an IMDb client.
func New(suggestURL, graphQLURL string, opts ...Option) (*Client, error) {
	suggestURL = strings.TrimRight(strings.TrimSpace(suggestURL), "/")
	graphQLURL = strings.TrimSpace(graphQLURL)
	if suggestURL == "" {
		return nil, errors.New("imdb suggest url required")
	}
	if graphQLURL == "" {
		return nil, errors.New("imdb graphql url required")
	}
	client := &Client{suggestURL: suggestURL, graphQLURL: graphQLURL}
	for _, opt := range opts {
		opt(client)
	}
	if client.http == nil {
		client.http = httpx.New(component)
	}
	return client, nil
}

// Service identifies IMDb as service A.
func (c *Client) Service() film.Service { return film.ServiceIMDb }

// Search queries the suggestion endpoint. The endpoint has no server-side
// filters, so year and kinds are applied to the returned entries.
func (c *Client) Search(ctx context.Context, query string, year int, kinds []film.Kind) ([]film.CandidateMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint := fmt.Sprintf("%s/x/%s.json", c.suggestURL, url.PathEscape(query))

	var payload suggestionResponse
	if err := c.http.GetJSON(ctx, "search", endpoint, &payload); err != nil {
		return nil, err
	}

	matches := make([]film.CandidateMatch, 0, len(payload.Data))
	for _, entry := range payload.Data {
		if !titleIDPattern.MatchString(entry.ID) {
			continue
		}
		match := entry.candidate()
		if year > 0 && match.Year != year {
			continue
		}
		if !film.ContainsKind(kinds, match.Kind) {
			continue
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// FetchByID fetches the title record.
func (c *Client) FetchByID(ctx context.Context, id string) (*film.EnrichedRecord, error) {
	t, err := c.title(ctx, "fetch", "Title", titleQuery, id)
	if err != nil {
		return nil, err
	}
	return t.enriched(), nil
}

// FetchCreditedDirectors returns the credited directors of a title.
func (c *Client) FetchCreditedDirectors(ctx context.Context, id string) ([]string, error) {
	t, err := c.title(ctx, "directors", "Directors", directorsQuery, id)
	if err != nil {
		return nil, err
	}
	return t.Directors.names(), nil
}

func (c *Client) title(ctx context.Context, operation, name, query, id string) (*title, error) {
	id = strings.TrimSpace(id)
	if !titleIDPattern.MatchString(id) {
		return nil, services.Wrap(services.ErrValidation, component, operation, fmt.Sprintf("invalid title id %q", id), nil)
	}
	request := graphQLRequest{
		Query:         query,
		OperationName: name,
		Variables:     map[string]any{"id": id},
	}
	var payload graphQLResponse
	if err := c.http.PostJSON(ctx, operation, c.graphQLURL, request, &payload); err != nil {
		return nil, err
	}
	if len(payload.Errors) > 0 && payload.Data.Title == nil {
		return nil, services.Wrap(services.ErrExternal, component, operation, payload.Errors[0].Message, nil)
	}
	if payload.Data.Title == nil {
		return nil, services.Wrap(services.ErrNotFound, component, operation, fmt.Sprintf("title %s not found", id), nil)
	}
	if payload.Data.Title.ID == "" {
		return nil, services.Wrap(services.ErrMalformed, component, operation, "title payload without id", nil)
	}
	return payload.Data.Title, nil
}

func (s Suggestion) candidate() film.CandidateMatch {
	return film.CandidateMatch{
		Service: film.ServiceIMDb,
		ID:      s.ID,
		Title:   s.Label,
		Year:    s.Year,
		Listing: s.listing(),
		Kind:    film.ParseKind(s.TypeID),
	}
}

func (s Suggestion) listing() string {
	var b strings.Builder
	b.WriteString(s.Label)
	switch {
	case s.Range != "":
		b.WriteString(" (" + s.Range + ")")
	case s.Year > 0:
		fmt.Fprintf(&b, " (%d)", s.Year)
	}
	if s.Type != "" {
		b.WriteString(" " + s.Type)
	}
	if s.Starring != "" {
		b.WriteString(", " + s.Starring)
	}
	return b.String()
}

func (t *title) enriched() *film.EnrichedRecord {
	record := &film.EnrichedRecord{
		Service: film.ServiceIMDb,
		ID:      t.ID,
	}
	if t.TitleText != nil {
		record.Title = t.TitleText.Text
	}
	if t.OriginalTitleText != nil {
		record.OriginalTitle = t.OriginalTitleText.Text
	}
	if t.TitleType != nil {
		record.Kind = film.ParseKind(t.TitleType.ID)
	}
	if t.ReleaseYear != nil {
		record.Year = t.ReleaseYear.Year
	}
	if d := t.ReleaseDate; d != nil && d.Year > 0 && d.Month > 0 && d.Day > 0 {
		record.ReleaseDate = fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
		if record.Year == 0 {
			record.Year = d.Year
		}
	}
	if r := t.RatingsSummary; r != nil {
		record.RatingAverage = r.AggregateRating
		record.RatingCount = r.VoteCount
	}
	if t.Plot != nil && t.Plot.PlotText != nil {
		record.Synopsis = strings.TrimSpace(t.Plot.PlotText.PlainText)
	}
	if t.PrimaryImage != nil {
		record.PosterURL = t.PrimaryImage.URL
	}
	if t.Runtime != nil && t.Runtime.Seconds > 0 {
		record.Runtime = t.Runtime.Seconds / 60
	}
	if t.Genres != nil {
		for _, genre := range t.Genres.Genres {
			if text := strings.TrimSpace(genre.Text); text != "" {
				record.Genres = append(record.Genres, text)
			}
		}
	}
	record.Directors = t.Directors.names()
	return record
}

func (c *creditEdges) names() []string {
	if c == nil {
		return nil
	}
	var names []string
	for _, edge := range c.Edges {
		if name := strings.TrimSpace(edge.Node.Name.NameText.Text); name != "" {
			names = append(names, name)
		}
	}
	return names
}
