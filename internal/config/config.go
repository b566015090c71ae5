package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// IMDb contains configuration for the suggestion and GraphQL endpoints.
type IMDb struct {
	SuggestURL        string  `toml:"suggest_url"`
	GraphQLURL        string  `toml:"graphql_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Language          string  `toml:"language"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// HTTP contains transport settings shared by both service clients.
type HTTP struct {
	TimeoutSeconds         int    `toml:"timeout_seconds"`
	RetryMaxElapsedSeconds int    `toml:"retry_max_elapsed_seconds"`
	UserAgent              string `toml:"user_agent"`
}

// Resolution contains identity resolution tuning.
type Resolution struct {
	MaxCandidates         int      `toml:"max_candidates"`
	EnglishMarketLabels   []string `toml:"english_market_labels"`
	SearchCacheTTLSeconds int      `toml:"search_cache_ttl_seconds"`
	DirectorThreshold     float64  `toml:"director_threshold"`
}

// Refresh contains the staleness windows, in days.
type Refresh struct {
	ReleaseWindowDays   int `toml:"release_window_days"`
	RecentDays          int `toml:"recent_days"`
	RecentIntervalDays  int `toml:"recent_interval_days"`
	ArchiveIntervalDays int `toml:"archive_interval_days"`
}

// Batch contains worker pool sizing for sync runs.
type Batch struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for filmbridge.
//
// Configuration sections by subsystem:
//   - Paths: database and log directories
//   - IMDb: service A endpoints and rate limit
//   - TMDB: service B credentials, endpoint, and rate limit
//   - HTTP: timeouts and retry budget
//   - Resolution: candidate limits, English-market labels, search cache
//   - Refresh: staleness windows
//   - Batch: worker pool sizing
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	IMDb       IMDb       `toml:"imdb"`
	TMDB       TMDB       `toml:"tmdb"`
	HTTP       HTTP       `toml:"http"`
	Resolution Resolution `toml:"resolution"`
	Refresh    Refresh    `toml:"refresh"`
	Batch      Batch      `toml:"batch"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("filmbridge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "filmbridge.db")
}

// LockPath returns the single-instance lock file used by sync runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "sync.lock")
}

// HTTPTimeout returns the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RetryMaxElapsed returns the total retry budget for one request.
func (c *Config) RetryMaxElapsed() time.Duration {
	return time.Duration(c.HTTP.RetryMaxElapsedSeconds) * time.Second
}

// SearchCacheTTL returns how long search results stay cached in memory.
func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.Resolution.SearchCacheTTLSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
