package config

const (
	defaultConfigPath             = "~/.config/filmbridge/config.toml"
	defaultDataDir                = "~/.local/share/filmbridge"
	defaultLogDir                 = "~/.local/share/filmbridge/logs"
	defaultIMDbSuggestURL         = "https://v3.sg.media-imdb.com/suggestion"
	defaultIMDbGraphQLURL         = "https://graphql.imdb.com/"
	defaultIMDbRequestsPerSecond  = 5
	defaultTMDBBaseURL            = "https://api.themoviedb.org/3"
	defaultTMDBLanguage           = "en-US"
	defaultTMDBRequestsPerSecond  = 20
	defaultHTTPTimeoutSeconds     = 15
	defaultRetryMaxElapsedSeconds = 60
	defaultUserAgent              = "filmbridge/dev"
	defaultMaxCandidates          = 5
	defaultSearchCacheTTLSeconds  = 600
	defaultDirectorThreshold      = 0.70
	defaultReleaseWindowDays      = 90
	defaultRecentDays             = 365
	defaultRecentIntervalDays     = 7
	defaultArchiveIntervalDays    = 14
	defaultBatchWorkers           = 10
	defaultBatchQueueSize         = 0
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

func defaultEnglishMarketLabels() []string {
	return []string{"USA", "Velká Británie", "anglický název", "Austrálie", "Kanada"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		IMDb: IMDb{
			SuggestURL:        defaultIMDbSuggestURL,
			GraphQLURL:        defaultIMDbGraphQLURL,
			RequestsPerSecond: defaultIMDbRequestsPerSecond,
		},
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			Language:          defaultTMDBLanguage,
			RequestsPerSecond: defaultTMDBRequestsPerSecond,
		},
		HTTP: HTTP{
			TimeoutSeconds:         defaultHTTPTimeoutSeconds,
			RetryMaxElapsedSeconds: defaultRetryMaxElapsedSeconds,
			UserAgent:              defaultUserAgent,
		},
		Resolution: Resolution{
			MaxCandidates:         defaultMaxCandidates,
			EnglishMarketLabels:   defaultEnglishMarketLabels(),
			SearchCacheTTLSeconds: defaultSearchCacheTTLSeconds,
			DirectorThreshold:     defaultDirectorThreshold,
		},
		Refresh: Refresh{
			ReleaseWindowDays:   defaultReleaseWindowDays,
			RecentDays:          defaultRecentDays,
			RecentIntervalDays:  defaultRecentIntervalDays,
			ArchiveIntervalDays: defaultArchiveIntervalDays,
		},
		Batch: Batch{
			Workers:   defaultBatchWorkers,
			QueueSize: defaultBatchQueueSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
