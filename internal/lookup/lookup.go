// Package lookup is the boundary between the resolution core and the external
// metadata services.
//
// Client is what a concrete service integration implements. Guard wraps a
// Client and enforces the boundary contract: requests are rate limited,
// searches are cached, and transport faults degrade to "no data" with a
// structured warning instead of crossing into the resolver. Only malformed
// payloads, which indicate a broken record rather than a flaky service, are
// surfaced as errors.
package lookup

import (
	"context"

	"filmbridge/internal/film"
)

// Client is implemented by each metadata service integration.
type Client interface {
	Service() film.Service
	// Search returns ranked candidates. year of 0 means no year constraint;
	// an empty kinds slice means no classification filter.
	Search(ctx context.Context, query string, year int, kinds []film.Kind) ([]film.CandidateMatch, error)
	FetchByID(ctx context.Context, id string) (*film.EnrichedRecord, error)
	FetchCreditedDirectors(ctx context.Context, id string) ([]string, error)
}

// Bridger is implemented by services that can look up their own ids from a
// service A id.
type Bridger interface {
	FindByExternalID(ctx context.Context, imdbID string) ([]film.CandidateMatch, error)
}

// Source is the contract the resolver consumes. Implementations return empty
// results instead of transport errors.
type Source interface {
	Client
	Bridger
}
