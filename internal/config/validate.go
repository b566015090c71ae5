package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateIMDb(); err != nil {
		return err
	}
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if err := c.validateResolution(); err != nil {
		return err
	}
	if err := c.validateRefresh(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'filmbridge config init')", defaultPath)
	}
	if err := validateURL("tmdb.base_url", c.TMDB.BaseURL); err != nil {
		return err
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		return errors.New("tmdb.requests_per_second must be positive")
	}
	return nil
}

func (c *Config) validateIMDb() error {
	if err := validateURL("imdb.suggest_url", c.IMDb.SuggestURL); err != nil {
		return err
	}
	if err := validateURL("imdb.graphql_url", c.IMDb.GraphQLURL); err != nil {
		return err
	}
	if c.IMDb.RequestsPerSecond <= 0 {
		return errors.New("imdb.requests_per_second must be positive")
	}
	return nil
}

func (c *Config) validateHTTP() error {
	return ensurePositiveMap(map[string]int{
		"http.timeout_seconds":           c.HTTP.TimeoutSeconds,
		"http.retry_max_elapsed_seconds": c.HTTP.RetryMaxElapsedSeconds,
	})
}

func (c *Config) validateResolution() error {
	if c.Resolution.MaxCandidates <= 0 {
		return errors.New("resolution.max_candidates must be positive")
	}
	if c.Resolution.SearchCacheTTLSeconds < 0 {
		return errors.New("resolution.search_cache_ttl_seconds must be >= 0")
	}
	if c.Resolution.DirectorThreshold <= 0 || c.Resolution.DirectorThreshold > 1 {
		return errors.New("resolution.director_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateRefresh() error {
	if err := ensurePositiveMap(map[string]int{
		"refresh.release_window_days":   c.Refresh.ReleaseWindowDays,
		"refresh.recent_days":           c.Refresh.RecentDays,
		"refresh.recent_interval_days":  c.Refresh.RecentIntervalDays,
		"refresh.archive_interval_days": c.Refresh.ArchiveIntervalDays,
	}); err != nil {
		return err
	}
	if c.Refresh.RecentDays <= c.Refresh.ReleaseWindowDays {
		return errors.New("refresh.recent_days must be greater than refresh.release_window_days")
	}
	return nil
}

func validateURL(key, value string) error {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
