// Package services defines shared utilities consumed by the resolution
// pipeline and the metadata service clients.
//
// Key responsibilities:
//   - Context helpers that stamp source record IDs, service names, batch IDs,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into absorbable service faults and record-level failures.
//
// Use these helpers when wiring new clients so error handling and
// observability stay uniform across the pipeline.
package services
