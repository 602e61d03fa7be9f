package apistatus_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"autoposter/internal/apistatus"
	"autoposter/internal/auth"
	"autoposter/internal/config"
	"autoposter/internal/services"
)

func TestServiceStartsUnknown(t *testing.T) {
	svc := apistatus.NewService()
	if svc.Connected() {
		t.Fatal("expected disconnected before first report")
	}
	if label := svc.Status().Label(); label != "unknown" {
		t.Fatalf("expected unknown label, got %q", label)
	}
}

func TestSubscribeReceivesChangesOnly(t *testing.T) {
	svc := apistatus.NewService()
	ch, cancel := svc.Subscribe()
	defer cancel()

	svc.Set(true, "ok")
	status := <-ch
	if !status.Connected || !status.Known {
		t.Fatalf("unexpected status %+v", status)
	}

	svc.Set(true, "still ok")
	select {
	case extra := <-ch:
		t.Fatalf("unchanged flag should not notify, got %+v", extra)
	default:
	}

	svc.Set(false, "down")
	status = <-ch
	if status.Connected || status.Detail != "down" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestSubscribeReplaysKnownStatus(t *testing.T) {
	svc := apistatus.NewService()
	svc.Set(false, "refused")
	ch, cancel := svc.Subscribe()
	status := <-ch
	if status.Connected || status.Label() != "disconnected" {
		t.Fatalf("unexpected replay %+v", status)
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after cancel")
	}
}

func TestSlowSubscriberSeesLatest(t *testing.T) {
	svc := apistatus.NewService()
	ch, cancel := svc.Subscribe()
	defer cancel()
	svc.Set(true, "a")
	svc.Set(false, "b")
	svc.Set(true, "c")
	status := <-ch
	if !status.Connected || status.Detail != "c" {
		t.Fatalf("expected latest status, got %+v", status)
	}
}

func newConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	return &cfg
}

func TestMonitorProbeReportsHealth(t *testing.T) {
	authHeader := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apistatus.HealthPath {
			http.NotFound(w, r)
			return
		}
		authHeader <- r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	svc := apistatus.NewService()
	mon := apistatus.NewMonitor(newConfig(srv.URL), svc, auth.Static("secret"), nil)
	if err := mon.Probe(context.Background()); err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if !svc.Connected() {
		t.Fatal("expected connected after healthy probe")
	}
	if got := <-authHeader; got != "Bearer secret" {
		t.Fatalf("expected bearer header, got %q", got)
	}
}

func TestMonitorProbeMarksHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := apistatus.NewService()
	svc.Set(true, "previous")
	err := apistatus.NewMonitor(newConfig(srv.URL), svc, nil, nil).Probe(context.Background())
	if !errors.Is(err, services.ErrHTTP) {
		t.Fatalf("expected ErrHTTP, got %v", err)
	}
	if svc.Connected() {
		t.Fatal("expected disconnected after failed probe")
	}
}

func TestMonitorProbeMarksTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	svc := apistatus.NewService()
	err := apistatus.NewMonitor(newConfig(url), svc, nil, nil).Probe(context.Background())
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if status := svc.Status(); !status.Known || status.Connected {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestMonitorRunPollsUntilCancelled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := apistatus.NewService()
	mon := apistatus.NewMonitor(newConfig(srv.URL), svc, nil, nil, apistatus.WithInterval(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mon.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for hits.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 probes, got %d", hits.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
