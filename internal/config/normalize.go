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
	c.normalizeAPI()
	if err := c.normalizeAuth(); err != nil {
		return err
	}
	c.normalizeWizard()
	c.normalizeNotifications()
	if err := c.normalizePublish(); err != nil {
		return err
	}
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
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(strings.TrimSpace(c.Paths.DownloadDir)); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	if value, ok := os.LookupEnv("AUTOPOSTER_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.API.BaseURL = strings.TrimSpace(value)
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.RequestTimeoutSeconds <= 0 {
		c.API.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.API.RetryMaxAttempts <= 0 {
		c.API.RetryMaxAttempts = 1
	}
	if c.API.HealthIntervalSeconds <= 0 {
		c.API.HealthIntervalSeconds = defaultHealthIntervalSeconds
	}
}

func (c *Config) normalizeAuth() error {
	c.Auth.Token = strings.TrimSpace(c.Auth.Token)
	if c.Auth.Token == "" {
		if value, ok := os.LookupEnv("AUTOPOSTER_TOKEN"); ok {
			c.Auth.Token = strings.TrimSpace(value)
		}
	}
	c.Auth.TokenFile = strings.TrimSpace(c.Auth.TokenFile)
	if c.Auth.TokenFile != "" {
		expanded, err := expandPath(c.Auth.TokenFile)
		if err != nil {
			return fmt.Errorf("auth.token_file: %w", err)
		}
		c.Auth.TokenFile = expanded
	}
	return nil
}

func (c *Config) normalizeWizard() {
	c.Wizard.DefaultCountry = strings.ToUpper(strings.TrimSpace(c.Wizard.DefaultCountry))
	if c.Wizard.DefaultCountry == "" {
		c.Wizard.DefaultCountry = defaultCountry
	}
	c.Wizard.DefaultLanguage = strings.ToLower(strings.TrimSpace(c.Wizard.DefaultLanguage))
	if c.Wizard.DefaultLanguage == "" {
		c.Wizard.DefaultLanguage = defaultLanguage
	}
	c.Wizard.DefaultArticleType = strings.ToLower(strings.TrimSpace(c.Wizard.DefaultArticleType))
	if c.Wizard.DefaultArticleType == "" {
		c.Wizard.DefaultArticleType = defaultArticleType
	}
	c.Wizard.DefaultResearchMethod = strings.ToLower(strings.TrimSpace(c.Wizard.DefaultResearchMethod))
	if c.Wizard.DefaultResearchMethod == "" {
		c.Wizard.DefaultResearchMethod = defaultResearchMethod
	}
	if c.Analyzer.LatencyMS > maxAnalyzerLatencyMS {
		c.Analyzer.LatencyMS = maxAnalyzerLatencyMS
	}
	if c.Progress.TickMS <= 0 {
		c.Progress.TickMS = defaultProgressTickMS
	}
	if c.Progress.StepPercent <= 0 {
		c.Progress.StepPercent = defaultProgressStepPercent
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("AUTOPOSTER_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizePublish() error {
	c.Publish.SiteID = strings.TrimSpace(c.Publish.SiteID)
	c.Publish.SiteName = strings.TrimSpace(c.Publish.SiteName)
	c.Publish.PostStatus = strings.ToLower(strings.TrimSpace(c.Publish.PostStatus))
	if c.Publish.PostStatus == "" {
		c.Publish.PostStatus = defaultPostStatus
	}
	if strings.TrimSpace(c.Publish.OutboxDir) == "" {
		c.Publish.OutboxDir = defaultOutboxDir
	}
	expanded, err := expandPath(strings.TrimSpace(c.Publish.OutboxDir))
	if err != nil {
		return fmt.Errorf("publish.outbox_dir: %w", err)
	}
	c.Publish.OutboxDir = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
