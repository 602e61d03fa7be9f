package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"autoposter/internal/config"
	"autoposter/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("AUTOPOSTER_BASE_URL", "")
	t.Setenv("AUTOPOSTER_TOKEN", "")
	t.Setenv("AUTOPOSTER_NTFY_TOPIC", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// backend is an httptest stand-in for the generation server.
type backend struct {
	*httptest.Server
	hits      atomic.Int32
	status    atomic.Int32
	lastAuth  atomic.Value
	lastPath  atomic.Value
	lastTopic atomic.Value
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	b.status.Store(http.StatusOK)
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		b.hits.Add(1)
		b.lastAuth.Store(r.Header.Get("Authorization"))
		b.lastPath.Store(r.URL.Path)
		var body struct {
			Topic string `json:"topic"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.lastTopic.Store(body.Topic)

		status := int(b.status.Load())
		if status != http.StatusOK {
			http.Error(w, "backend exploded", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":            "Ansible Cluster Management Explained",
			"content":          "# Ansible Cluster Management Explained\n\nInventory, playbooks, and roles.\n",
			"meta_description": "How to manage clusters with ansible.",
			"meta_keywords":    []string{"ansible", "automation"},
			"seo_score":        91,
			"word_count":       1200,
			"reading_time":     6,
		})
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) failWith(status int) {
	b.status.Store(int32(status))
}

func loadString(v *atomic.Value) string {
	s, _ := v.Load().(string)
	return s
}
