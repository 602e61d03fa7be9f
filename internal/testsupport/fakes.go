package testsupport

import (
	"context"
	"sync"

	"autoposter/internal/notifications"
)

// Notification is one event captured by RecordingNotifier.
type Notification struct {
	Event   notifications.Event
	Payload notifications.Payload
}

// RecordingNotifier captures published notifications.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []Notification
}

// Publish records the event.
func (r *RecordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Notification{Event: event, Payload: payload})
	return nil
}

// Events returns the captured event names in publish order.
func (r *RecordingNotifier) Events() []notifications.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notifications.Event, 0, len(r.events))
	for _, n := range r.events {
		out = append(out, n.Event)
	}
	return out
}

// Clipboard is an in-memory clipboard.
type Clipboard struct {
	mu   sync.Mutex
	text string
	Err  error
}

// WriteAll stores text unless Err is set.
func (c *Clipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.text = text
	return nil
}

// Text returns the last copied text.
func (c *Clipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}
