package auth_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"autoposter/internal/auth"
	"autoposter/internal/config"
)

func TestChainSourceFirstNonEmptyWins(t *testing.T) {
	t.Setenv(auth.EnvToken, "env-token")
	chain := auth.NewChainSource(auth.Static("  "), auth.EnvSource(auth.EnvToken), auth.Static("later"))
	token, err := chain.Token(context.Background())
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "env-token" {
		t.Fatalf("expected env-token, got %q", token)
	}
}

func TestFromConfigPrefersConfiguredToken(t *testing.T) {
	t.Setenv(auth.EnvToken, "env-token")
	cfg := config.Default()
	cfg.Auth.Token = "cfg-token"
	token, err := auth.FromConfig(&cfg).Token(context.Background())
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "cfg-token" {
		t.Fatalf("expected cfg-token, got %q", token)
	}
}

func TestFromConfigFallsBackToTokenFile(t *testing.T) {
	t.Setenv(auth.EnvToken, "")
	path := filepath.Join(t.TempDir(), "token.json")
	store := auth.NewFileTokenStore(path)
	if err := store.Save(auth.TokenState{AccessToken: " file-token ", TokenType: "bearer"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}

	cfg := config.Default()
	cfg.Auth.TokenFile = path
	token, err := auth.FromConfig(&cfg).Token(context.Background())
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "file-token" {
		t.Fatalf("expected file-token, got %q", token)
	}
}

func TestFileTokenStoreMissingFileIsEmpty(t *testing.T) {
	store := auth.NewFileTokenStore(filepath.Join(t.TempDir(), "absent.json"))
	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if state.AccessToken != "" {
		t.Fatalf("expected empty token, got %q", state.AccessToken)
	}
}

func TestFileTokenStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := auth.NewFileTokenStore(path).Token(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
