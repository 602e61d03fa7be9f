package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"autoposter/internal/auth"
	"autoposter/internal/config"
	"autoposter/internal/form"
	"autoposter/internal/logging"
	"autoposter/internal/services"
)

const (
	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryAttempts  = 2
	maxResponseBytes      = 8 << 20

	// RequestIDHeader carries the per-run request id.
	RequestIDHeader = "X-Request-ID"
)

// Reporter receives backend reachability observations.
type Reporter interface {
	Set(connected bool, detail string)
}

// Client posts generation requests to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenSource
	reporter   Reporter
	logger     *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the total attempt count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithReporter registers the reachability sink.
func WithReporter(reporter Reporter) Option {
	return func(c *Client) {
		c.reporter = reporter
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "generation")
	}
}

// NewClient constructs a client from the [api] section.
func NewClient(cfg *config.Config, tokens auth.TokenSource, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	attempts := defaultRetryAttempts
	baseURL := ""
	if cfg != nil {
		if t := cfg.RequestTimeout(); t > 0 {
			timeout = t
		}
		if cfg.API.RetryMaxAttempts > 0 {
			attempts = cfg.API.RetryMaxAttempts
		}
		baseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	}
	client := &Client{
		baseURL:          baseURL,
		httpClient:       &http.Client{Timeout: timeout},
		tokens:           tokens,
		logger:           logging.NewNop(),
		retryMaxAttempts: attempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Generate posts req to the flow's endpoint and returns the decoded artifact.
// Transient failures are retried; the last error is returned otherwise.
func (c *Client) Generate(ctx context.Context, flow Flow, req form.Request, requestID string) (Artifact, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrValidation, "generation", "encode", "encode request body", err)
	}
	endpoint, err := url.JoinPath(c.baseURL, flow.Endpoint())
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrConfiguration, "generation", "build url", "invalid base_url", err)
	}

	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		artifact, err := c.sendOnce(ctx, endpoint, encoded, requestID)
		c.report(err)
		if err == nil {
			return artifact, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			break
		}
		c.logger.Info("retrying generation request",
			logging.String(logging.FieldCorrelationID, requestID),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return Artifact{}, services.Wrap(services.ErrTimeout, "generation", "retry", "cancelled while waiting to retry", err)
		}
	}
	if attempts > 1 && isTransient(lastErr) {
		return Artifact{}, fmt.Errorf("generation failed after %d attempts: %w", attempts, lastErr)
	}
	return Artifact{}, lastErr
}

func (c *Client) sendOnce(ctx context.Context, endpoint string, body []byte, requestID string) (Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrConfiguration, "generation", "new request", "invalid request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return Artifact{}, services.Wrap(services.ErrConfiguration, "generation", "token", "resolve bearer token", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		marker := services.ErrTransport
		if isTimeout(err) {
			marker = services.ErrTimeout
		}
		return Artifact{}, services.Wrap(marker, "generation", "send", fmt.Sprintf("request failed (timeout=%s)", c.timeoutDuration()), err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrTransport, "generation", "read", "read response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return Artifact{}, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
			RetryAfter: retryAfter,
		}
	}
	artifact, _, err := DecodeArtifact(payload)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrHTTP, "generation", "decode", "unusable response", err)
	}
	return artifact, nil
}

// report forwards reachability. Any HTTP response, even an error status,
// proves the backend is reachable.
func (c *Client) report(err error) {
	if c.reporter == nil {
		return
	}
	switch {
	case err == nil:
		c.reporter.Set(true, "generation request succeeded")
	case errors.Is(err, services.ErrTransport), errors.Is(err, services.ErrTimeout):
		c.reporter.Set(false, err.Error())
	case errors.Is(err, services.ErrHTTP):
		c.reporter.Set(true, err.Error())
	}
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil {
		return 0, false
	}
	if ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) {
		return 0, false
	}

	var statusErr *HTTPError
	if errors.As(err, &statusErr) {
		if !statusErr.Transient() {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return c.capDelay(statusErr.RetryAfter), true
		}
		return c.backoffDelay(attempt), true
	}
	if errors.Is(err, services.ErrTimeout) {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func isTransient(err error) bool {
	var statusErr *HTTPError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	return errors.Is(err, services.ErrTimeout)
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if base <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}
	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
