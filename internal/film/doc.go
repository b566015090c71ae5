// Package film defines the records that flow through reconciliation.
//
// A SourceRecord is the catalog's own entry for a film. CandidateMatch values
// are unvalidated search hits from one of the two metadata services, and an
// EnrichedRecord is the full metadata fetched for a confirmed id. The
// MergedRecord is the persisted, fused result keyed by the source id.
//
// The package also owns the small parsing helpers shared by every stage: free
// text year extraction, listing-year recovery, and the Kind classification
// vocabulary the services map their own taxonomies onto.
package film
