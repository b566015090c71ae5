// Package logging assembles the slog loggers used across filmbridge.
//
// Console output puts the component and record ("#7/imdb") at the head of
// each line; JSON output nests source_id, service, batch_id and
// correlation_id under a "record" object. WithContext copies those fields
// from a context populated by the services package.
package logging
