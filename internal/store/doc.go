// Package store persists catalog records and merged records in SQLite.
//
// The database runs in WAL mode with a busy timeout, and writes retry briefly
// on SQLITE_BUSY so concurrent batch workers can upsert different records
// without coordinating. Records are stored as JSON payloads; the external ids
// and stored-at timestamp are mirrored into indexed columns. The schema is
// embedded and versioned; a version mismatch is reported rather than
// migrated.
package store
