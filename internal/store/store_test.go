package store_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"filmbridge/internal/config"
	"filmbridge/internal/film"
	"filmbridge/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenPath(filepath.Join(t.TempDir(), "filmbridge.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenFromConfig(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	s, err := store.Open(&cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()
	if s.Path() != cfg.DatabasePath() {
		t.Fatalf("Path() = %q, want %q", s.Path(), cfg.DatabasePath())
	}
}

func TestSourceRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	record := film.SourceRecord{
		ID:              7,
		Title:           "Ucho",
		Year:            "1970",
		Directors:       []string{"Karel Kachyňa"},
		LocalizedTitles: map[string]string{"USA": "The Ear"},
		Origin:          "Československo",
	}
	if err := s.PutSource(ctx, record); err != nil {
		t.Fatalf("PutSource failed: %v", err)
	}
	record.Year = "1969"
	if err := s.PutSource(ctx, record); err != nil {
		t.Fatalf("PutSource replace failed: %v", err)
	}
	if err := s.PutSource(ctx, film.SourceRecord{ID: 3, Title: "Obchod na korze"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSource(ctx, 7)
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if got == nil || got.Year != "1969" || got.LocalizedTitles["USA"] != "The Ear" {
		t.Fatalf("unexpected source record %#v", got)
	}

	missing, err := s.GetSource(ctx, 99)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing record, got %#v %v", missing, err)
	}

	all, err := s.ListSources(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != 3 || all[1].ID != 7 {
		t.Fatalf("expected records ordered by id, got %#v", all)
	}
	limited, err := s.ListSources(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit not applied: %v %v", limited, err)
	}
}

func TestPutSourceValidates(t *testing.T) {
	s := openStore(t)
	if err := s.PutSource(context.Background(), film.SourceRecord{ID: 0, Title: "x"}); err == nil {
		t.Fatal("expected error for zero id")
	}
	if err := s.PutSource(context.Background(), film.SourceRecord{ID: 1}); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestPutSourcesIsAllOrNothing(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	batch := []film.SourceRecord{
		{ID: 7, Title: "Ucho"},
		{ID: 3, Title: "Obchod na korze"},
		{ID: 9},
	}
	if err := s.PutSources(ctx, batch); err == nil {
		t.Fatal("expected error for the untitled record")
	}
	all, err := s.ListSources(ctx, 0)
	if err != nil || len(all) != 0 {
		t.Fatalf("rejected batch must store nothing, got %d records (%v)", len(all), err)
	}

	batch[2].Title = "Neznámý film"
	if err := s.PutSources(ctx, batch); err != nil {
		t.Fatalf("PutSources failed: %v", err)
	}
	all, err = s.ListSources(ctx, 0)
	if err != nil || len(all) != 3 || all[0].ID != 3 {
		t.Fatalf("expected three records ordered by id, got %#v (%v)", all, err)
	}
	if err := s.PutSources(ctx, nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}
}

func TestMergedUpsertAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	stored := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	record := film.MergedRecord{SourceID: 7, IMDbID: "tt0066498", Title: "Ucho", StoredAt: stored}
	if err := s.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	record.TMDBID = "42"
	record.StoredAt = stored.Add(time.Hour)
	if err := s.Upsert(ctx, record); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := s.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.TMDBID != "42" || !got.StoredAt.Equal(stored.Add(time.Hour)) {
		t.Fatalf("unexpected merged record %#v", got)
	}

	byTMDB, err := s.FindByExternalID(ctx, film.ServiceTMDB, "42")
	if err != nil || byTMDB == nil || byTMDB.SourceID != 7 {
		t.Fatalf("FindByExternalID = %#v, %v", byTMDB, err)
	}

	all, err := s.ListMerged(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListMerged = %v, %v", all, err)
	}

	none, err := s.Get(ctx, 8)
	if err != nil || none != nil {
		t.Fatalf("expected nil for missing merged record, got %#v %v", none, err)
	}
}

func TestUpsertStampsMissingStoredAt(t *testing.T) {
	s := openStore(t)
	if err := s.Upsert(context.Background(), film.MergedRecord{SourceID: 1}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(context.Background(), 1)
	if err != nil || got == nil || got.StoredAt.IsZero() {
		t.Fatalf("expected stored_at to be stamped, got %#v %v", got, err)
	}
}

func TestConcurrentUpserts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	errs := make(chan error, 20)
	for i := 1; i <= 20; i++ {
		go func(id int64) {
			errs <- s.Upsert(ctx, film.MergedRecord{SourceID: id, Title: "x", StoredAt: time.Now()})
		}(int64(i))
	}
	for i := 0; i < 20; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent upsert failed: %v", err)
		}
	}
	all, err := s.ListMerged(ctx)
	if err != nil || len(all) != 20 {
		t.Fatalf("expected 20 records, got %d (%v)", len(all), err)
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filmbridge.db")
	for i := 0; i < 2; i++ {
		s, err := store.OpenPath(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		_ = s.Close()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var applied int
	if err := db.QueryRow("SELECT COUNT(1) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatal(err)
	}
	if applied != 3 {
		t.Fatalf("expected three recorded migrations, got %d", applied)
	}
	var indexes int
	if err := db.QueryRow("SELECT COUNT(1) FROM sqlite_master WHERE type='index' AND name LIKE 'idx_merged_records_%'").Scan(&indexes); err != nil {
		t.Fatal(err)
	}
	if indexes != 3 {
		t.Fatalf("expected stored_at, imdb_id and tmdb_id indexes, got %d", indexes)
	}
}

func TestSchemaVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filmbridge.db")
	s, err := store.OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES ('9999_future', datetime('now'))"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if _, err := store.OpenPath(path); !errors.Is(err, store.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
