package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIMDb()
	c.normalizeTMDB()
	c.normalizeHTTP()
	c.normalizeResolution()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIMDb() {
	c.IMDb.SuggestURL = strings.TrimRight(strings.TrimSpace(c.IMDb.SuggestURL), "/")
	if c.IMDb.SuggestURL == "" {
		c.IMDb.SuggestURL = defaultIMDbSuggestURL
	}
	c.IMDb.GraphQLURL = strings.TrimSpace(c.IMDb.GraphQLURL)
	if c.IMDb.GraphQLURL == "" {
		if value, ok := os.LookupEnv("IMDB_GRAPHQL_URL"); ok && strings.TrimSpace(value) != "" {
			c.IMDb.GraphQLURL = strings.TrimSpace(value)
		} else {
			c.IMDb.GraphQLURL = defaultIMDbGraphQLURL
		}
	}
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeHTTP() {
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeResolution() {
	labels := make([]string, 0, len(c.Resolution.EnglishMarketLabels))
	seen := make(map[string]struct{}, len(c.Resolution.EnglishMarketLabels))
	for _, label := range c.Resolution.EnglishMarketLabels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		labels = append(labels, trimmed)
	}
	if len(labels) == 0 {
		labels = defaultEnglishMarketLabels()
	}
	c.Resolution.EnglishMarketLabels = labels
	if c.Resolution.DirectorThreshold == 0 {
		c.Resolution.DirectorThreshold = defaultDirectorThreshold
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
	if c.Batch.QueueSize < 0 {
		c.Batch.QueueSize = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
