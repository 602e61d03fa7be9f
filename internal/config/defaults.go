package config

const (
	defaultConfigPath            = "~/.config/autoposter/config.toml"
	defaultDataDir               = "~/.local/share/autoposter"
	defaultLogDir                = "~/.local/share/autoposter/logs"
	defaultDownloadDir           = "~/Downloads"
	defaultOutboxDir             = "~/.local/share/autoposter/outbox"
	defaultBaseURL               = "http://localhost:8000"
	defaultRequestTimeoutSeconds = 60
	defaultRetryMaxAttempts      = 2
	defaultHealthIntervalSeconds = 300
	defaultCountry               = "KR"
	defaultLanguage              = "ko"
	defaultArticleType           = "blog_post"
	defaultResearchMethod        = "serp_analysis"
	defaultAnalyzerLatencyMS     = 1200
	maxAnalyzerLatencyMS         = 3000
	defaultProgressTickMS        = 200
	defaultProgressStepPercent   = 10
	defaultNotifyRequestTimeout  = 10
	defaultPostStatus            = "draft"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"

	// CurrentNotificationsVersion is the only [notifications] layout Load accepts.
	CurrentNotificationsVersion = 1
	// CurrentPublishVersion is the only [publish] layout Load accepts.
	CurrentPublishVersion = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
			DownloadDir: defaultDownloadDir,
		},
		API: API{
			BaseURL:               defaultBaseURL,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			RetryMaxAttempts:      defaultRetryMaxAttempts,
			HealthIntervalSeconds: defaultHealthIntervalSeconds,
		},
		Wizard: Wizard{
			DefaultCountry:        defaultCountry,
			DefaultLanguage:       defaultLanguage,
			DefaultArticleType:    defaultArticleType,
			DefaultResearchMethod: defaultResearchMethod,
		},
		Analyzer: Analyzer{
			LatencyMS: defaultAnalyzerLatencyMS,
		},
		Progress: Progress{
			TickMS:      defaultProgressTickMS,
			StepPercent: defaultProgressStepPercent,
		},
		Notifications: Notifications{
			Version:        CurrentNotificationsVersion,
			RequestTimeout: defaultNotifyRequestTimeout,
			Generation:     true,
			Publish:        true,
			Errors:         true,
		},
		Publish: Publish{
			Version:    CurrentPublishVersion,
			PostStatus: defaultPostStatus,
			OutboxDir:  defaultOutboxDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
