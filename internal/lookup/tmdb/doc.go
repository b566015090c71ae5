// Package tmdb provides the TMDB API client used as metadata service B.
//
// It authenticates requests and exposes movie search with an optional
// release-year filter, movie detail retrieval (videos and credits appended),
// director credits, and the IMDb id bridge. Responses are mapped onto the
// shared film types. Options allow tests to supply a custom transport without
// modifying production code.
package tmdb
