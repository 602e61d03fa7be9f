package analyzer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"autoposter/internal/config"
	"autoposter/internal/form"
	"autoposter/internal/services"
)

// MaxLatency bounds the simulated analysis delay.
const MaxLatency = 3 * time.Second

// Analyzer derives competitor references from URLs.
type Analyzer struct {
	latency time.Duration
	newID   func() string
	now     func() time.Time
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithIDGenerator overrides id generation.
func WithIDGenerator(fn func() string) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.newID = fn
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.now = fn
		}
	}
}

// New constructs an Analyzer that waits latency (capped at MaxLatency) before
// producing a result.
func New(latency time.Duration, opts ...Option) *Analyzer {
	if latency < 0 {
		latency = 0
	}
	if latency > MaxLatency {
		latency = MaxLatency
	}
	a := &Analyzer{
		latency: latency,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewFromConfig constructs an Analyzer using [analyzer] latency_ms.
func NewFromConfig(cfg *config.Config, opts ...Option) *Analyzer {
	var latency time.Duration
	if cfg != nil {
		latency = cfg.AnalyzerLatency()
	}
	return New(latency, opts...)
}

// Analyze validates raw, waits out the analysis latency, and returns a new
// reference with status Added. Cancellation of ctx aborts the analysis.
func (a *Analyzer) Analyze(ctx context.Context, raw string) (form.CompetitorRef, error) {
	parsed, err := NormalizeURL(raw)
	if err != nil {
		return form.CompetitorRef{}, err
	}

	if a.latency > 0 {
		timer := time.NewTimer(a.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return form.CompetitorRef{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return form.CompetitorRef{}, err
	}

	return form.CompetitorRef{
		ID:      a.newID(),
		URL:     parsed.String(),
		Title:   DeriveTitle(parsed),
		Status:  form.StatusAdded,
		AddedAt: a.now().UTC(),
	}, nil
}

// NormalizeURL trims raw, defaults the scheme to https, and requires an
// http(s) URL with a host.
func NormalizeURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, services.Wrap(services.ErrValidation, "analyzer", "parse url", "url is blank", nil)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "analyzer", "parse url", "malformed url", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, services.Wrap(services.ErrValidation, "analyzer", "parse url", fmt.Sprintf("unsupported scheme %q", parsed.Scheme), nil)
	}
	if parsed.Hostname() == "" {
		return nil, services.Wrap(services.ErrValidation, "analyzer", "parse url", "url has no host", nil)
	}
	parsed.Scheme = scheme
	parsed.Host = strings.ToLower(parsed.Host)
	return parsed, nil
}

// DeriveTitle builds a display title from the URL host, for example
// "Example (example.com)" for https://www.example.com/post.
func DeriveTitle(u *url.URL) string {
	if u == nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return ""
	}
	label, _, _ := strings.Cut(host, ".")
	// Casers keep state between calls, so each title gets its own.
	name := cases.Title(language.Und).String(strings.ReplaceAll(label, "-", " "))
	return fmt.Sprintf("%s (%s)", name, host)
}
