package apistatus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"autoposter/internal/auth"
	"autoposter/internal/config"
	"autoposter/internal/logging"
	"autoposter/internal/services"
)

// HealthPath is the backend health endpoint relative to base_url.
const HealthPath = "/api/health"

const defaultProbeTimeout = 10 * time.Second

// Monitor probes the backend health endpoint and reports into a Service.
type Monitor struct {
	service  *Service
	client   *http.Client
	baseURL  string
	tokens   auth.TokenSource
	interval time.Duration
	logger   *slog.Logger
}

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithHTTPClient overrides the probe HTTP client.
func WithHTTPClient(client *http.Client) MonitorOption {
	return func(m *Monitor) {
		if client != nil {
			m.client = client
		}
	}
}

// WithInterval overrides the polling interval.
func WithInterval(interval time.Duration) MonitorOption {
	return func(m *Monitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// NewMonitor builds a Monitor from configuration.
func NewMonitor(cfg *config.Config, service *Service, tokens auth.TokenSource, logger *slog.Logger, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		service:  service,
		client:   &http.Client{Timeout: defaultProbeTimeout},
		tokens:   tokens,
		interval: 5 * time.Minute,
		logger:   logging.NewComponentLogger(logger, "apistatus"),
	}
	if cfg != nil {
		m.baseURL = strings.TrimRight(cfg.API.BaseURL, "/")
		if interval := cfg.HealthInterval(); interval > 0 {
			m.interval = interval
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Probe issues one health request and records the outcome.
func (m *Monitor) Probe(ctx context.Context) error {
	err := m.probe(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.service.Set(false, err.Error())
		m.logger.Debug("health probe failed", logging.Error(err))
		return err
	}
	m.service.Set(true, "health check ok")
	return nil
}

func (m *Monitor) probe(ctx context.Context) error {
	endpoint, err := url.JoinPath(m.baseURL, HealthPath)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "apistatus", "build url", "invalid base_url", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "apistatus", "new request", "invalid health request", err)
	}
	req.Header.Set("Accept", "application/json")
	if m.tokens != nil {
		token, err := m.tokens.Token(ctx)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "apistatus", "token", "resolve bearer token", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "apistatus", "probe", "health request failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= http.StatusMultipleChoices {
		return services.Wrap(services.ErrHTTP, "apistatus", "probe", fmt.Sprintf("health returned http %d", resp.StatusCode), nil)
	}
	return nil
}

// Run probes immediately and then on every interval until ctx ends.
func (m *Monitor) Run(ctx context.Context) {
	_ = m.Probe(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.Probe(ctx)
		}
	}
}
