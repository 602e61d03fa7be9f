package preset_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"autoposter/internal/form"
	"autoposter/internal/preset"
	"autoposter/internal/services"
)

func stubAnalyze(_ context.Context, raw string) (form.CompetitorRef, error) {
	if raw == "bad" {
		return form.CompetitorRef{}, errors.New("unparseable")
	}
	return form.CompetitorRef{ID: "id-" + raw, URL: raw, Title: raw, Status: form.StatusAdded}, nil
}

func TestSaveLoadBuildRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preset.yaml")
	if err := preset.Save(path, preset.Sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := preset.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	state, err := loaded.Build(context.Background(), form.DefaultValues(), stubAnalyze)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if state.Topic != "ansible cluster management" || state.TargetCountry != "US" || state.ArticleType != "guide" {
		t.Fatalf("unexpected scalars %+v", state)
	}
	if got := state.SecondaryKeywords(); len(got) != 2 || got[1] != "devops" {
		t.Fatalf("unexpected secondary keywords %v", got)
	}
	if state.CompetitorCount() != 1 || state.Competitors()[0].URL != "https://docs.ansible.com" {
		t.Fatalf("unexpected competitors %v", state.Competitors())
	}

	again := preset.FromState(state)
	if again.Topic != loaded.Topic || len(again.CompetitorURLs) != 1 || again.Writing == nil {
		t.Fatalf("FromState lost fields: %+v", again)
	}
}

func TestBuildKeepsDefaultsForEmptyFields(t *testing.T) {
	p, err := preset.Parse([]byte("topic: rust async\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defaults := form.DefaultValues()
	state, err := p.Build(context.Background(), defaults, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if state.TargetCountry != defaults.Country || state.ResearchMethod != defaults.ResearchMethod {
		t.Fatalf("defaults not applied: %+v", state)
	}
}

func TestParseRejectsUnknownKeysAndVersions(t *testing.T) {
	if _, err := preset.Parse([]byte("topic: x\ncolour: red\n")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown key, got %v", err)
	}
	if _, err := preset.Parse([]byte("version: 9\ntopic: x\n")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for version, got %v", err)
	}
}

func TestBuildRejectsInvalidValues(t *testing.T) {
	p := preset.Preset{Topic: "x", TargetCountry: "ZZ"}
	if _, err := p.Build(context.Background(), form.DefaultValues(), nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	p = preset.Preset{Topic: "x", SecondaryKeywords: []string{"a", "a"}}
	if _, err := p.Build(context.Background(), form.DefaultValues(), nil); !errors.Is(err, form.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestBuildStopsOnAnalyzerFailureAndCapacity(t *testing.T) {
	p := preset.Preset{Topic: "x", CompetitorURLs: []string{"a", "bad"}}
	if _, err := p.Build(context.Background(), form.DefaultValues(), stubAnalyze); err == nil {
		t.Fatal("expected analyzer failure to stop the build")
	}

	p = preset.Preset{Topic: "x"}
	for i := 0; i <= form.MaxListItems; i++ {
		p.CompetitorURLs = append(p.CompetitorURLs, fmt.Sprintf("site-%d", i))
	}
	if _, err := p.Build(context.Background(), form.DefaultValues(), stubAnalyze); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected capacity error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := preset.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
