package testsupport

import (
	"path/filepath"
	"testing"

	"autoposter/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Timing values are shrunk so wizard and progress tests finish quickly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfgVal.Publish.OutboxDir = filepath.Join(base, "outbox")
	cfgVal.API.BaseURL = "http://127.0.0.1:0"
	cfgVal.API.RetryMaxAttempts = 1
	cfgVal.Auth.Token = "test-token"
	cfgVal.Analyzer.LatencyMS = 1
	cfgVal.Progress.TickMS = 1

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

// WithBaseURL points the generation client at url, usually an httptest server.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.BaseURL = url
	}
}

// WithToken overrides the bearer token.
func WithToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Auth.Token = token
	}
}

// WithPublishSite enables the outbox publisher for site.
func WithPublishSite(site string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Publish.SiteName = site
	}
}

// WithNtfyTopic enables ntfy notifications at topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
