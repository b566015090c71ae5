package services_test

import (
	"errors"
	"strings"
	"testing"

	"filmbridge/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternal, "tmdb", "search", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"tmdb", "search", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestAbsorbable(t *testing.T) {
	malformed := services.Wrap(services.ErrMalformed, "imdb", "decode", "bad json", errors.New("eof"))
	if services.Absorbable(malformed) {
		t.Fatal("malformed payloads must not be absorbed")
	}
	for _, marker := range []error{services.ErrTransient, services.ErrExternal, services.ErrNotFound, services.ErrTimeout} {
		if !services.Absorbable(services.Wrap(marker, "tmdb", "fetch", "", nil)) {
			t.Fatalf("expected %v to be absorbable", marker)
		}
	}
	if !services.Absorbable(nil) {
		t.Fatal("nil should be absorbable")
	}
}

func TestRetryable(t *testing.T) {
	if !services.Retryable(services.Wrap(services.ErrTransient, "tmdb", "search", "", nil)) {
		t.Fatal("transient should be retryable")
	}
	if services.Retryable(services.Wrap(services.ErrNotFound, "tmdb", "fetch", "", nil)) {
		t.Fatal("not found should not be retryable")
	}
}

func TestMarker(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{services.Wrap(services.ErrNotFound, "tmdb", "fetch", "returned 404", nil), services.ErrNotFound},
		{services.Wrap(services.ErrTransient, "imdb", "search", "", errors.New("reset")), services.ErrTransient},
		{services.Wrap(services.ErrMalformed, "imdb", "decode", "", services.Wrap(services.ErrTransient, "", "", "", nil)), services.ErrMalformed},
		{errors.New("plain"), nil},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := services.Marker(tt.err); got != tt.want {
			t.Errorf("Marker(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
