package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"autoposter/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AUTOPOSTER_BASE_URL", "")
	t.Setenv("AUTOPOSTER_TOKEN", "")
	t.Setenv("AUTOPOSTER_NTFY_TOPIC", "")
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(home, ".local", "share", "autoposter")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("expected loopback default base url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.RetryMaxAttempts != 2 {
		t.Fatalf("unexpected retry attempts: %d", cfg.API.RetryMaxAttempts)
	}
	if cfg.Wizard.DefaultCountry != "KR" || cfg.Wizard.DefaultLanguage != "ko" {
		t.Fatalf("unexpected wizard defaults: %+v", cfg.Wizard)
	}
	if cfg.PublishConfigured() {
		t.Fatal("expected publishing to be unconfigured by default")
	}
	if cfg.HistoryPath() != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "autoposter.toml")

	type payload struct {
		API struct {
			BaseURL string `toml:"base_url"`
		} `toml:"api"`
		Wizard struct {
			DefaultCountry string `toml:"default_country"`
		} `toml:"wizard"`
		Analyzer struct {
			LatencyMS int `toml:"latency_ms"`
		} `toml:"analyzer"`
	}
	custom := payload{}
	custom.API.BaseURL = "https://writer.example.com/"
	custom.Wizard.DefaultCountry = "us"
	custom.Analyzer.LatencyMS = 9000
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.API.BaseURL != "https://writer.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.Wizard.DefaultCountry != "US" {
		t.Fatalf("expected upper-cased country, got %q", cfg.Wizard.DefaultCountry)
	}
	if cfg.Analyzer.LatencyMS != 3000 {
		t.Fatalf("expected analyzer latency clamped to 3000, got %d", cfg.Analyzer.LatencyMS)
	}
}

func TestEnvFallbacks(t *testing.T) {
	isolateEnv(t)
	t.Setenv("AUTOPOSTER_BASE_URL", "http://127.0.0.1:9000")
	t.Setenv("AUTOPOSTER_TOKEN", "env-token")
	t.Setenv("AUTOPOSTER_NTFY_TOPIC", "https://ntfy.sh/autoposter")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("expected base url from env, got %q", cfg.API.BaseURL)
	}
	if cfg.Auth.Token != "env-token" {
		t.Errorf("expected token from env, got %q", cfg.Auth.Token)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/autoposter" {
		t.Errorf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestConfigFileTokenWinsOverEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("AUTOPOSTER_TOKEN", "env-token")
	path := filepath.Join(t.TempDir(), "autoposter.toml")
	if err := os.WriteFile(path, []byte("[auth]\ntoken = \"file-token\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Auth.Token != "file-token" {
		t.Fatalf("expected file token, got %q", cfg.Auth.Token)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"base url scheme", "[api]\nbase_url = \"ftp://example.com\"\n", "api.base_url"},
		{"unknown country", "[wizard]\ndefault_country = \"XX\"\n", "wizard.default_country"},
		{"notifications version", "[notifications]\nversion = 2\n", "notifications.version"},
		{"publish version", "[publish]\nversion = 7\n", "publish.version"},
		{"post status", "[publish]\npost_status = \"scheduled\"\n", "publish.post_status"},
		{"log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"ntfy topic", "[notifications]\nntfy_topic = \"my-topic\"\n", "notifications.ntfy_topic"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolateEnv(t)
			path := filepath.Join(t.TempDir(), "autoposter.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "base_url = \"http://localhost:8000\"") {
		t.Fatal("expected sample to document the loopback base url")
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}
