package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"filmbridge/internal/film"
)

const upsertSourceSQL = `INSERT INTO source_records (id, title, payload, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET title = excluded.title, payload = excluded.payload, updated_at = excluded.updated_at`

// PutSource inserts or replaces a catalog record.
func (s *Store) PutSource(ctx context.Context, record film.SourceRecord) error {
	payload, err := encodeSource(record)
	if err != nil {
		return err
	}
	if err := s.exec(ctx, upsertSourceSQL, record.ID, record.Title, payload, formatTime(time.Now())); err != nil {
		return fmt.Errorf("put source record %d: %w", record.ID, err)
	}
	return nil
}

// PutSources inserts or replaces catalog records in one transaction. Either
// every record is stored or none is.
func (s *Store) PutSources(ctx context.Context, records []film.SourceRecord) error {
	payloads := make([]string, len(records))
	for i, record := range records {
		payload, err := encodeSource(record)
		if err != nil {
			return fmt.Errorf("record %d of %d: %w", i+1, len(records), err)
		}
		payloads[i] = payload
	}
	if len(records) == 0 {
		return nil
	}
	updatedAt := formatTime(time.Now())

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin import tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, upsertSourceSQL)
		if err != nil {
			return fmt.Errorf("prepare source upsert: %w", err)
		}
		defer stmt.Close()

		for i, record := range records {
			if _, err := stmt.ExecContext(ctx, record.ID, record.Title, payloads[i], updatedAt); err != nil {
				return fmt.Errorf("put source record %d: %w", record.ID, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit import tx: %w", err)
		}
		return nil
	})
}

func encodeSource(record film.SourceRecord) (string, error) {
	if record.ID <= 0 {
		return "", fmt.Errorf("source record id must be positive, got %d", record.ID)
	}
	if strings.TrimSpace(record.Title) == "" {
		return "", fmt.Errorf("source record %d has no title", record.ID)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal source record: %w", err)
	}
	return string(payload), nil
}

// GetSource returns a catalog record, or nil when absent.
func (s *Store) GetSource(ctx context.Context, id int64) (*film.SourceRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM source_records WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get source record: %w", err)
	}
	var record film.SourceRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("decode source record %d: %w", id, err)
	}
	return &record, nil
}

// ListSources returns catalog records ordered by id. A positive limit caps
// the result.
func (s *Store) ListSources(ctx context.Context, limit int) ([]film.SourceRecord, error) {
	query := `SELECT payload FROM source_records ORDER BY id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list source records: %w", err)
	}
	defer rows.Close()

	var records []film.SourceRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan source record: %w", err)
		}
		var record film.SourceRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("decode source record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Get returns the merged record for a source id, or nil when none is stored.
func (s *Store) Get(ctx context.Context, sourceID int64) (*film.MergedRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM merged_records WHERE source_id = ?`, sourceID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get merged record: %w", err)
	}
	return decodeMerged(payload)
}

// Upsert stores a merged record keyed by its source id.
func (s *Store) Upsert(ctx context.Context, record film.MergedRecord) error {
	if record.SourceID <= 0 {
		return fmt.Errorf("merged record source id must be positive, got %d", record.SourceID)
	}
	if record.StoredAt.IsZero() {
		record.StoredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal merged record: %w", err)
	}
	err = s.exec(ctx,
		`INSERT INTO merged_records (source_id, imdb_id, tmdb_id, stored_at, payload) VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(source_id) DO UPDATE SET
             imdb_id = excluded.imdb_id, tmdb_id = excluded.tmdb_id,
             stored_at = excluded.stored_at, payload = excluded.payload`,
		record.SourceID,
		nullableString(record.IMDbID),
		nullableString(record.TMDBID),
		formatTime(record.StoredAt),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("upsert merged record %d: %w", record.SourceID, err)
	}
	return nil
}

// ListMerged returns every merged record ordered by source id.
func (s *Store) ListMerged(ctx context.Context) ([]film.MergedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM merged_records ORDER BY source_id`)
	if err != nil {
		return nil, fmt.Errorf("list merged records: %w", err)
	}
	defer rows.Close()

	var records []film.MergedRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan merged record: %w", err)
		}
		record, err := decodeMerged(payload)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// FindByExternalID returns the merged record confirmed to a service id.
func (s *Store) FindByExternalID(ctx context.Context, service film.Service, id string) (*film.MergedRecord, error) {
	var column string
	switch service {
	case film.ServiceIMDb:
		column = "imdb_id"
	case film.ServiceTMDB:
		column = "tmdb_id"
	default:
		return nil, fmt.Errorf("unknown service %q", service)
	}
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM merged_records WHERE `+column+` = ? ORDER BY source_id LIMIT 1`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find merged record by %s: %w", column, err)
	}
	return decodeMerged(payload)
}

func decodeMerged(payload string) (*film.MergedRecord, error) {
	var record film.MergedRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("decode merged record: %w", err)
	}
	return &record, nil
}
