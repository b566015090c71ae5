// Package imdb implements metadata service A on top of IMDb's public
// suggestion endpoint (search) and GraphQL title API (details and director
// credits).
package imdb
