package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"autoposter/internal/form"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateWizard(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", c.API.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.base_url must include a host, got %q", c.API.BaseURL)
	}
	if c.API.RetryMaxAttempts > 10 {
		return errors.New("api.retry_max_attempts must be 10 or less")
	}
	return nil
}

func (c *Config) validateWizard() error {
	if !form.Countries.Contains(c.Wizard.DefaultCountry) {
		return fmt.Errorf("wizard.default_country: unsupported value %q (expected one of %s)", c.Wizard.DefaultCountry, form.Countries)
	}
	if !form.Languages.Contains(c.Wizard.DefaultLanguage) {
		return fmt.Errorf("wizard.default_language: unsupported value %q (expected one of %s)", c.Wizard.DefaultLanguage, form.Languages)
	}
	if !form.ArticleTypes.Contains(c.Wizard.DefaultArticleType) {
		return fmt.Errorf("wizard.default_article_type: unsupported value %q (expected one of %s)", c.Wizard.DefaultArticleType, form.ArticleTypes)
	}
	if !form.ResearchMethods.Contains(c.Wizard.DefaultResearchMethod) {
		return fmt.Errorf("wizard.default_research_method: unsupported value %q (expected one of %s)", c.Wizard.DefaultResearchMethod, form.ResearchMethods)
	}
	return nil
}

func (c *Config) validateTiming() error {
	if c.Analyzer.LatencyMS < 0 {
		return errors.New("analyzer.latency_ms must be zero or positive")
	}
	if c.Progress.StepPercent > 100 {
		return errors.New("progress.step_percent must be 100 or less")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.Version != CurrentNotificationsVersion {
		return fmt.Errorf("notifications.version: unsupported version %d (expected %d)", c.Notifications.Version, CurrentNotificationsVersion)
	}
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be a full http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.Version != CurrentPublishVersion {
		return fmt.Errorf("publish.version: unsupported version %d (expected %d)", c.Publish.Version, CurrentPublishVersion)
	}
	switch c.Publish.PostStatus {
	case "draft", "publish", "private":
	default:
		return fmt.Errorf("publish.post_status: unsupported value %q (expected draft, publish, or private)", c.Publish.PostStatus)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
