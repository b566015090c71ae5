// Package reconcile is the batch driver. For each catalog record it loads the
// previously merged record, consults the refresh policy, resolves service A,
// resolves service B (bridging through the service A id), merges, and
// upserts. Records run in parallel on a bounded pond worker pool; the steps
// for a single record run strictly in order.
//
// Every record ends in exactly one of four classes: Resolved, Unresolved,
// Skipped (with a reason) or Failed (with the error). A failed record never
// aborts the batch.
package reconcile
