package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"filmbridge/internal/config"
	"filmbridge/internal/logging"
	"filmbridge/internal/lookup"
	"filmbridge/internal/lookup/httpx"
	"filmbridge/internal/lookup/imdb"
	"filmbridge/internal/lookup/tmdb"
	"filmbridge/internal/reconcile"
	"filmbridge/internal/refresh"
	"filmbridge/internal/resolver"
	"filmbridge/internal/store"
	"filmbridge/internal/validation"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	db, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	return fn(db)
}

// newRunner wires both service clients, their guards and resolvers, and the
// batch runner around db.
func (c *commandContext) newRunner(db *store.Store) (*reconcile.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	transport := func(component string) *httpx.Client {
		return httpx.New(component,
			httpx.WithTimeout(cfg.HTTPTimeout()),
			httpx.WithRetryBudget(cfg.RetryMaxElapsed()),
			httpx.WithUserAgent(cfg.HTTP.UserAgent),
			httpx.WithLogger(logger),
		)
	}

	imdbClient, err := imdb.New(cfg.IMDb.SuggestURL, cfg.IMDb.GraphQLURL, imdb.WithTransport(transport("imdb")))
	if err != nil {
		return nil, fmt.Errorf("imdb client: %w", err)
	}
	tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, tmdb.WithTransport(transport("tmdb")))
	if err != nil {
		return nil, fmt.Errorf("tmdb client: %w", err)
	}

	validator := validation.New(validation.WithDirectorThreshold(cfg.Resolution.DirectorThreshold))
	newResolver := func(client lookup.Client, perSecond float64) *resolver.Resolver {
		guard := lookup.NewGuard(client,
			lookup.WithRateLimit(perSecond),
			lookup.WithSearchCacheTTL(cfg.SearchCacheTTL()),
			lookup.WithLogger(logger),
		)
		return resolver.New(guard,
			resolver.WithValidator(validator),
			resolver.WithMaxCandidates(cfg.Resolution.MaxCandidates),
			resolver.WithEnglishMarketLabels(cfg.Resolution.EnglishMarketLabels),
			resolver.WithLogger(logger),
		)
	}

	return reconcile.New(db,
		newResolver(imdbClient, cfg.IMDb.RequestsPerSecond),
		newResolver(tmdbClient, cfg.TMDB.RequestsPerSecond),
		reconcile.WithPolicy(refresh.FromConfig(cfg.Refresh)),
		reconcile.WithWorkers(cfg.Batch.Workers),
		reconcile.WithQueueSize(cfg.Batch.QueueSize),
		reconcile.WithLogger(logger),
	), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
