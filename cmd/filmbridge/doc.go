// Package main hosts the filmbridge CLI.
//
// The Cobra command tree imports catalog records, runs reconciliation batches
// against IMDb and TMDB, forces single records through the resolver, and
// prints stored merged records. Configuration is resolved once per invocation
// and shared by every subcommand through commandContext.
package main
