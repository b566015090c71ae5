package main

import (
	"io"
	"strings"
	"testing"
	"time"

	"filmbridge/internal/film"
	"filmbridge/internal/reconcile"
)

func TestRenderStatusNoColor(t *testing.T) {
	got := renderStatus(reconcile.Result{Status: reconcile.StatusSkipped, Reason: "fresh-enough"}, false)
	if got != "skipped (fresh-enough)" {
		t.Fatalf("renderStatus = %q", got)
	}
}

func TestRenderStatusWithColor(t *testing.T) {
	got := renderStatus(reconcile.Result{Status: reconcile.StatusFailed}, true)
	if !strings.HasPrefix(got, ansiRed) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected red status, got %q", got)
	}
}

func TestRenderCountLineColorsOnlyNonZero(t *testing.T) {
	if got := renderCountLine(reconcile.StatusFailed, 0, true); strings.Contains(got, ansiRed) {
		t.Fatalf("zero count should not be colored: %q", got)
	}
	if got := renderCountLine(reconcile.StatusResolved, 3, true); !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green count line, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestMergedRowsSkipsEmptyFields(t *testing.T) {
	rows := mergedRows(&film.MergedRecord{
		SourceID: 7,
		Title:    "Ucho",
		IMDbID:   "tt0066498",
		IMDbRung: "direct-link",
		StoredAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	fields := make(map[string]string, len(rows))
	for _, row := range rows {
		fields[row[0]] = row[1]
	}
	if fields["IMDb"] != "tt0066498 (direct-link)" {
		t.Fatalf("unexpected IMDb row %q", fields["IMDb"])
	}
	if _, ok := fields["TMDB"]; ok {
		t.Fatal("empty TMDB id should not be listed")
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d: %v", len(rows), rows)
	}
}
