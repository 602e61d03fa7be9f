package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autoposter/internal/config"
)

const userAgent = "autoposter/0.1.0"

// Event names a notification kind.
type Event string

const (
	EventArtifactReady      Event = "artifact_ready"
	EventFallbackUsed       Event = "fallback_used"
	EventGenerationFailed   Event = "generation_failed"
	EventPublishRequested   Event = "publish_requested"
	EventPublishUnavailable Event = "publish_unavailable"
	EventTest               Event = "test"
)

// Payload carries the values an event message is built from.
type Payload map[string]any

// Service defines the notification surface exposed to wizard components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	if !n.enabled(event) {
		return nil
	}
	msg, ok := build(event, data)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) enabled(event Event) bool {
	switch event {
	case EventArtifactReady, EventFallbackUsed:
		return n.settings.Generation
	case EventPublishRequested, EventPublishUnavailable:
		return n.settings.Publish
	case EventGenerationFailed:
		return n.settings.Errors
	case EventTest:
		return true
	default:
		return false
	}
}

func build(event Event, data Payload) (payload, bool) {
	switch event {
	case EventArtifactReady:
		message := fmt.Sprintf("📝 Article ready: %s", text(data, "title"))
		if words := number(data, "wordCount"); words > 0 {
			message = fmt.Sprintf("%s\n%d words, SEO score %d", message, words, number(data, "seoScore"))
		}
		return payload{
			title:   "Autoposter - Article Ready",
			message: message,
			tags:    []string{"autoposter", "generate", "completed"},
		}, true
	case EventFallbackUsed:
		return payload{
			title:   "Autoposter - Placeholder Article",
			message: fmt.Sprintf("⚠️ Backend unavailable, placeholder created for: %s", text(data, "topic")),
			tags:    []string{"autoposter", "generate", "fallback"},
		}, true
	case EventGenerationFailed:
		return payload{
			title:    "Autoposter - Generation Failed",
			message:  fmt.Sprintf("❌ Generation failed for %s: %s", text(data, "topic"), orUnknown(text(data, "error"))),
			tags:     []string{"autoposter", "error", "alert"},
			priority: "high",
		}, true
	case EventPublishRequested:
		return payload{
			title:   "Autoposter - Publish Requested",
			message: fmt.Sprintf("📤 Handed off to %s: %s", text(data, "site"), text(data, "title")),
			tags:    []string{"autoposter", "publish", "queued"},
		}, true
	case EventPublishUnavailable:
		return payload{
			title:   "Autoposter - Publish Unavailable",
			message: fmt.Sprintf("Publish skipped for %s: %s", text(data, "title"), orUnknown(text(data, "reason"))),
			tags:    []string{"autoposter", "publish", "skipped"},
		}, true
	case EventTest:
		return payload{
			title:    "Autoposter - Test",
			message:  "🧪 Notification system test",
			tags:     []string{"autoposter", "test"},
			priority: "low",
		}, true
	}
	return payload{}, false
}

func text(data Payload, key string) string {
	value, ok := data[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func number(data Payload, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
