package testsupport

import (
	"path/filepath"
	"testing"

	"filmbridge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Rate limits are lifted and the retry budget shortened so tests never wait
// on the network policy.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test-key-1234"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.IMDb.RequestsPerSecond = 1000
	cfgVal.TMDB.RequestsPerSecond = 1000
	cfgVal.HTTP.RetryMaxElapsedSeconds = 1
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithServiceServer points both service clients at a server built by
// NewServiceServer.
func WithServiceServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.IMDb.SuggestURL = baseURL + SuggestPath
		b.cfg.IMDb.GraphQLURL = baseURL + GraphQLPath
		b.cfg.TMDB.BaseURL = baseURL + TMDBPath
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
