package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"autoposter/internal/config"
	"autoposter/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventArtifactReady, notifications.Payload{"title": "Example"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("expected nil config to yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "artifact ready",
			event: notifications.EventArtifactReady,
			payload: notifications.Payload{
				"title":     "Ansible Cluster Management Guide",
				"wordCount": 1200,
				"seoScore":  91,
			},
			expectTitle:   "Autoposter - Article Ready",
			expectMessage: "📝 Article ready: Ansible Cluster Management Guide\n1200 words, SEO score 91",
			expectTags:    "autoposter,generate,completed",
		},
		{
			name:          "fallback used",
			event:         notifications.EventFallbackUsed,
			payload:       notifications.Payload{"topic": "ansible cluster management"},
			expectTitle:   "Autoposter - Placeholder Article",
			expectMessage: "⚠️ Backend unavailable, placeholder created for: ansible cluster management",
			expectTags:    "autoposter,generate,fallback",
		},
		{
			name:  "generation failed",
			event: notifications.EventGenerationFailed,
			payload: notifications.Payload{
				"topic": "kubernetes",
				"error": errors.New("http 500"),
			},
			expectTitle:    "Autoposter - Generation Failed",
			expectMessage:  "❌ Generation failed for kubernetes: http 500",
			expectTags:     "autoposter,error,alert",
			expectPriority: "high",
		},
		{
			name:          "publish requested",
			event:         notifications.EventPublishRequested,
			payload:       notifications.Payload{"site": "My Blog", "title": "Hello"},
			expectTitle:   "Autoposter - Publish Requested",
			expectMessage: "📤 Handed off to My Blog: Hello",
			expectTags:    "autoposter,publish,queued",
		},
		{
			name:          "publish unavailable",
			event:         notifications.EventPublishUnavailable,
			payload:       notifications.Payload{"title": "Hello"},
			expectTitle:   "Autoposter - Publish Unavailable",
			expectMessage: "Publish skipped for Hello: unknown",
			expectTags:    "autoposter,publish,skipped",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "Autoposter - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "autoposter,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			type request struct {
				title    string
				tags     string
				priority string
				body     string
			}
			captured := make(chan request, 1)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				_ = r.Body.Close()
				captured <- request{
					title:    r.Header.Get("Title"),
					tags:     r.Header.Get("Tags"),
					priority: r.Header.Get("Priority"),
					body:     string(body),
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			got := <-captured
			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresDisabledEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for suppressed event: %s", r.Header.Get("Title"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Generation = false
	cfg.Notifications.Publish = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	suppressed := []notifications.Event{
		notifications.EventArtifactReady,
		notifications.EventFallbackUsed,
		notifications.EventGenerationFailed,
		notifications.EventPublishRequested,
		notifications.EventPublishUnavailable,
		notifications.Event("unknown"),
	}
	for _, event := range suppressed {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"value": "ignored"}); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic locked", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	if err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
