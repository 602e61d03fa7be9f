package generation_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"autoposter/internal/form"
	"autoposter/internal/generation"
	"autoposter/internal/notifications"
	"autoposter/internal/services"
)

type stubGenerator struct {
	calls    atomic.Int32
	artifact generation.Artifact
	err      error
	block    chan struct{}
	started  chan struct{}
}

func (s *stubGenerator) Generate(ctx context.Context, _ generation.Flow, _ form.Request, _ string) (generation.Artifact, error) {
	s.calls.Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return generation.Artifact{}, ctx.Err()
		}
	}
	return s.artifact, s.err
}

type memoryRecorder struct {
	mu   sync.Mutex
	runs []generation.Run
}

func (m *memoryRecorder) Record(_ context.Context, run generation.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

type memoryNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (m *memoryNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

var fixedNow = time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)

func newInvoker(gen generation.Generator, opts ...generation.InvokerOption) *generation.Invoker {
	base := []generation.InvokerOption{generation.WithClock(func() time.Time { return fixedNow })}
	return generation.NewInvoker(gen, append(base, opts...)...)
}

func TestInvokeRejectsBlankTopicWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	inv := newInvoker(newClient(t, srv.URL))
	for _, topic := range []string{"", "   \t"} {
		req := sampleRequest()
		req.Topic = topic
		for _, flow := range []generation.Flow{generation.FlowMultiStep, generation.FlowLegacy} {
			run, err := inv.Invoke(context.Background(), flow, req)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if run.Artifact != nil {
				t.Fatal("validation failure must not produce an artifact")
			}
		}
	}
	if hits.Load() != 0 {
		t.Fatalf("expected zero requests, got %d", hits.Load())
	}
}

func TestInvokeServerErrorPerFlow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	recorder := &memoryRecorder{}
	notifier := &memoryNotifier{}
	inv := newInvoker(newClient(t, srv.URL), generation.WithRecorder(recorder), generation.WithNotifier(notifier))

	run, err := inv.Invoke(context.Background(), generation.FlowLegacy, sampleRequest())
	if err != nil {
		t.Fatalf("legacy flow should resolve with a fallback, got %v", err)
	}
	if run.Artifact == nil || !run.Fallback || run.Outcome() != generation.OutcomeFallback {
		t.Fatalf("expected fallback artifact, got %+v", run)
	}
	if !strings.Contains(run.Artifact.Title, "ansible cluster management") || !strings.Contains(run.Artifact.Content, "ansible cluster management") {
		t.Fatalf("fallback must contain the topic: %+v", run.Artifact)
	}
	if run.Artifact.WordCount != generation.FallbackWordCount || run.Artifact.SEOScore != generation.FallbackSEOScore {
		t.Fatalf("unexpected fallback constants %+v", run.Artifact)
	}
	if generation.StatusCode(run.Err) != http.StatusInternalServerError {
		t.Fatalf("expected cause to be kept, got %v", run.Err)
	}

	run, err = inv.Invoke(context.Background(), generation.FlowMultiStep, sampleRequest())
	if err == nil || !errors.Is(err, services.ErrHTTP) {
		t.Fatalf("multi-step flow should surface the error, got %v", err)
	}
	if run.Artifact != nil || run.Outcome() != generation.OutcomeError {
		t.Fatalf("multi-step failure must leave the artifact unset: %+v", run)
	}
	if !services.Recoverable(err) {
		t.Fatal("http failure should be recoverable")
	}

	if len(recorder.runs) != 2 {
		t.Fatalf("expected both runs recorded, got %d", len(recorder.runs))
	}
	want := []notifications.Event{notifications.EventFallbackUsed, notifications.EventGenerationFailed}
	if len(notifier.events) != 2 || notifier.events[0] != want[0] || notifier.events[1] != want[1] {
		t.Fatalf("unexpected notifications %v", notifier.events)
	}
}

func TestInvokeUnreachableLegacyScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	state := form.New(form.DefaultValues())
	state.Topic = "ansible cluster management"
	state.PrimaryKeyword = "ansible"
	for _, kw := range []string{"automation", "devops"} {
		if err := state.AddSecondaryKeyword(kw); err != nil {
			t.Fatalf("add keyword: %v", err)
		}
	}

	run, err := newInvoker(newClient(t, url)).Invoke(context.Background(), generation.FlowLegacy, state.Request())
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if !errors.Is(run.Err, services.ErrTransport) {
		t.Fatalf("expected transport cause, got %v", run.Err)
	}
	artifact := run.Artifact
	if artifact == nil || !strings.Contains(artifact.Title, "ansible cluster management") {
		t.Fatalf("unexpected artifact %+v", artifact)
	}
	if artifact.WordCount != 1500 || artifact.SEOScore != 85 || artifact.ReadingTime != 8 {
		t.Fatalf("unexpected constants %+v", artifact)
	}
	if !artifact.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("expected injected clock, got %v", artifact.GeneratedAt)
	}
}

func TestInvokeIsSingleFlight(t *testing.T) {
	gen := &stubGenerator{
		artifact: generation.Artifact{Title: "T", Content: "C"},
		block:    make(chan struct{}),
		started:  make(chan struct{}, 1),
	}
	inv := newInvoker(gen)

	done := make(chan error, 1)
	go func() {
		_, err := inv.Invoke(context.Background(), generation.FlowMultiStep, sampleRequest())
		done <- err
	}()
	<-gen.started
	if !inv.InFlight() {
		t.Fatal("expected run in flight")
	}

	if _, err := inv.Invoke(context.Background(), generation.FlowLegacy, sampleRequest()); !errors.Is(err, generation.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	close(gen.block)
	if err := <-done; err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	if gen.calls.Load() != 1 {
		t.Fatalf("expected exactly one generator call, got %d", gen.calls.Load())
	}
	if inv.InFlight() {
		t.Fatal("expected slot released")
	}
}

func TestInvokeSuccessStampsTime(t *testing.T) {
	gen := &stubGenerator{artifact: generation.Artifact{Title: "T", Content: "C"}}
	notifier := &memoryNotifier{}
	run, err := newInvoker(gen, generation.WithNotifier(notifier)).Invoke(context.Background(), generation.FlowMultiStep, sampleRequest())
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if run.Outcome() != generation.OutcomeSuccess || !run.Artifact.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.ID == "" || run.RequestID == "" || run.ID == run.RequestID {
		t.Fatalf("expected distinct ids, got %q / %q", run.ID, run.RequestID)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventArtifactReady {
		t.Fatalf("unexpected notifications %v", notifier.events)
	}
}

func TestInvokeCancelledLegacyRunSurfacesError(t *testing.T) {
	gen := &stubGenerator{block: make(chan struct{}), started: make(chan struct{}, 1)}
	inv := newInvoker(gen)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := inv.Invoke(ctx, generation.FlowLegacy, sampleRequest())
		done <- err
	}()
	<-gen.started
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
