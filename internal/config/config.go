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
	DataDir     string `toml:"data_dir"`
	LogDir      string `toml:"log_dir"`
	DownloadDir string `toml:"download_dir"`
}

// API contains settings for the content generation backend.
type API struct {
	BaseURL               string `toml:"base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	RetryMaxAttempts      int    `toml:"retry_max_attempts"`
	HealthIntervalSeconds int    `toml:"health_interval_seconds"`
}

// Auth contains the bearer credential sources. The first non-empty source wins:
// token, then AUTOPOSTER_TOKEN, then token_file.
type Auth struct {
	Token     string `toml:"token"`
	TokenFile string `toml:"token_file"`
}

// Wizard contains the defaults a fresh intake form starts with.
type Wizard struct {
	DefaultCountry        string `toml:"default_country"`
	DefaultLanguage       string `toml:"default_language"`
	DefaultArticleType    string `toml:"default_article_type"`
	DefaultResearchMethod string `toml:"default_research_method"`
}

// Analyzer contains competitor URL analysis settings.
type Analyzer struct {
	LatencyMS int `toml:"latency_ms"`
}

// Progress contains the cosmetic progress indicator cadence.
type Progress struct {
	TickMS      int `toml:"tick_ms"`
	StepPercent int `toml:"step_percent"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	Version        int    `toml:"version"`
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Generation     bool   `toml:"generation"`
	Publish        bool   `toml:"publish"`
	Errors         bool   `toml:"errors"`
}

// Publish contains the hand-off settings for the external site collaborator.
// When SiteName is empty the publish action reports that no site is configured.
type Publish struct {
	Version    int    `toml:"version"`
	SiteID     string `toml:"site_id"`
	SiteName   string `toml:"site_name"`
	PostStatus string `toml:"post_status"`
	OutboxDir  string `toml:"outbox_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for autoposter.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and download directories
//   - API: generation backend location, timeouts, retries, health polling
//   - Auth: bearer token sources
//   - Wizard: intake form defaults
//   - Analyzer: competitor URL analysis latency
//   - Progress: cosmetic progress cadence
//   - Notifications: ntfy push notification settings
//   - Publish: hand-off to the external publishing collaborator
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	API           API           `toml:"api"`
	Auth          Auth          `toml:"auth"`
	Wizard        Wizard        `toml:"wizard"`
	Analyzer      Analyzer      `toml:"analyzer"`
	Progress      Progress      `toml:"progress"`
	Notifications Notifications `toml:"notifications"`
	Publish       Publish       `toml:"publish"`
	Logging       Logging       `toml:"logging"`
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

	projectPath, err := filepath.Abs("autoposter.toml")
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

// EnsureDirectories creates the data and log directories. The download and
// outbox directories are created lazily by the actions that write to them.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the SQLite database holding completed runs.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// LockPath returns the lock file guarding headless generation runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "generate.lock")
}

// RequestTimeout returns the per-request timeout for the generation backend.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutSeconds) * time.Second
}

// HealthInterval returns how often the API status monitor probes the backend.
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.API.HealthIntervalSeconds) * time.Second
}

// AnalyzerLatency returns the simulated competitor analysis latency.
func (c *Config) AnalyzerLatency() time.Duration {
	return time.Duration(c.Analyzer.LatencyMS) * time.Millisecond
}

// ProgressTick returns the interval between cosmetic progress updates.
func (c *Config) ProgressTick() time.Duration {
	return time.Duration(c.Progress.TickMS) * time.Millisecond
}

// PublishConfigured reports whether a publishing site has been set up.
func (c *Config) PublishConfigured() bool {
	return strings.TrimSpace(c.Publish.SiteName) != ""
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
