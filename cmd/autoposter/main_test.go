package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autoposter/internal/testsupport"
)

func TestChecklistCommandCountsFilledSteps(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"checklist", "--json", "--topic", "ansible", "--primary", "ansible"}, env.configPath)
	if err != nil {
		t.Fatalf("checklist: %v", err)
	}
	var got checklistOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode checklist: %v", err)
	}
	// Topic, primary keyword, and the four defaulted enum fields.
	if got.Total != 10 || got.Completed != 6 {
		t.Fatalf("checklist = %d/%d", got.Completed, got.Total)
	}

	out, _, err = runCLI(t, []string{"checklist"}, env.configPath)
	if err != nil {
		t.Fatalf("checklist table: %v", err)
	}
	if !strings.Contains(out, "Progress 4/10") || !strings.Contains(out, "Next step: Topic") {
		t.Fatalf("unexpected checklist output: %q", out)
	}
}

func TestChecklistRejectsSixthSecondaryKeyword(t *testing.T) {
	env := setupCLITestEnv(t)
	args := []string{"checklist", "--topic", "go", "--secondary", "a,b,c,d,e,f"}
	if _, _, err := runCLI(t, args, env.configPath); err == nil {
		t.Fatal("expected capacity error for a sixth secondary keyword")
	}
}

func TestPresetInitAndCheck(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "form.yaml")

	out, _, err := runCLI(t, []string{"preset", "init", "--path", path}, "")
	if err != nil {
		t.Fatalf("preset init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, _, err := runCLI(t, []string{"preset", "init", "--path", path}, ""); err == nil {
		t.Fatal("expected refusal to overwrite without --overwrite")
	}

	out, _, err = runCLI(t, []string{"preset", "check", path}, env.configPath)
	if err != nil {
		t.Fatalf("preset check: %v", err)
	}
	if !strings.Contains(out, "2 secondary keywords, 1 competitor URLs") {
		t.Fatalf("unexpected check output: %q", out)
	}

	out, _, err = runCLI(t, []string{"checklist", "--form", path}, env.configPath)
	if err != nil {
		t.Fatalf("checklist --form: %v", err)
	}
	if !strings.Contains(out, "Progress 9/10") {
		t.Fatalf("sample preset should fill every input step: %q", out)
	}
}

func TestHistoryShowAndExport(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	testsupport.RecordRun(t, store, "abc12345-run", "kubernetes operators", started)
	testsupport.RecordRun(t, store, "def67890-run", "terraform modules", started.Add(time.Hour))
	store.Close()

	out, _, err := runCLI(t, []string{"history", "show", "abc"}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	if !strings.Contains(out, "About kubernetes operators") || !strings.Contains(out, "abc12345-run") {
		t.Fatalf("unexpected show output: %q", out)
	}

	if _, _, err := runCLI(t, []string{"history", "show", "zzz"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown run")
	}

	out, _, err = runCLI(t, []string{"history", "list", "--similar", "Kubernetes Operators"}, env.configPath)
	if err != nil {
		t.Fatalf("history list --similar: %v", err)
	}
	if !strings.Contains(out, "kubernetes operators") || strings.Contains(out, "terraform") {
		t.Fatalf("unexpected similar output: %q", out)
	}

	out, _, err = runCLI(t, []string{"history", "export", "def", "--format", "md"}, env.configPath)
	if err != nil {
		t.Fatalf("history export: %v", err)
	}
	path := filepath.Join(env.cfg.Paths.DownloadDir, "About terraform modules.md")
	if !strings.Contains(out, path) {
		t.Fatalf("unexpected export output: %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\n") || !strings.Contains(string(data), "Body for terraform modules") {
		t.Fatalf("unexpected export content: %q", data)
	}
}

func TestHistoryListRejectsUnknownOutcome(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"history", "list", "--outcome", "maybe"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown outcome")
	}
}

func TestStatusReportsBackendHealth(t *testing.T) {
	b := newBackend(t)
	env := setupCLITestEnv(t, testsupport.WithBaseURL(b.URL))

	out, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var got statusOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !got.API.Known || !got.API.Connected {
		t.Fatalf("expected connected backend, got %+v", got.API)
	}
	if !got.TokenPresent || got.PublishSite != "" {
		t.Fatalf("unexpected status: %+v", got)
	}

	b.Close()
	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status after shutdown: %v", err)
	}
	if !strings.Contains(out, "disconnected") || !strings.Contains(out, "no site configured") {
		t.Fatalf("unexpected status output: %q", out)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "fresh", "config.toml")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite")
	}

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, env.configPath) {
		t.Fatalf("unexpected validate output: %q", out)
	}
}

func TestConfigValidateReportsBadFile(t *testing.T) {
	env := setupCLITestEnv(t)
	bad := filepath.Join(env.baseDir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[api]\nbase_url = \"ftp://nowhere\"\n"), 0o644); err != nil {
		t.Fatalf("write bad config: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, bad); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "not configured") {
		t.Fatalf("unexpected output: %q", out)
	}
}
