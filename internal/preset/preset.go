// Package preset loads and saves intake forms as YAML files so a headless
// run can be repeated without retyping every field.
package preset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"autoposter/internal/form"
	"autoposter/internal/services"
)

// CurrentVersion is the preset file format version.
const CurrentVersion = 1

// Preset is the on-disk form. Empty enumerated fields keep the form defaults.
type Preset struct {
	Version           int           `yaml:"version"`
	Topic             string        `yaml:"topic"`
	TargetCountry     string        `yaml:"target_country,omitempty"`
	ArticleLanguage   string        `yaml:"article_language,omitempty"`
	Keywords          string        `yaml:"keywords,omitempty"`
	ArticleType       string        `yaml:"article_type,omitempty"`
	ResearchMethod    string        `yaml:"research_method,omitempty"`
	PrimaryKeyword    string        `yaml:"primary_keyword,omitempty"`
	SecondaryKeywords []string      `yaml:"secondary_keywords,omitempty"`
	CompetitorURLs    []string      `yaml:"competitor_urls,omitempty"`
	Writing           *form.Writing `yaml:"writing,omitempty"`
}

// AnalyzeFunc turns a competitor URL into a reference.
type AnalyzeFunc func(ctx context.Context, raw string) (form.CompetitorRef, error)

// Load reads a preset file. Unknown keys are rejected.
func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Preset{}, services.Wrap(services.ErrNotFound, "preset", "load", "no preset at "+path, nil)
		}
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	return Parse(data)
}

// Parse decodes preset YAML.
func Parse(data []byte) (Preset, error) {
	var p Preset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return Preset{}, services.Wrap(services.ErrValidation, "preset", "parse", "invalid preset yaml", err)
	}
	if p.Version == 0 {
		p.Version = CurrentVersion
	}
	if p.Version != CurrentVersion {
		return Preset{}, services.Wrap(services.ErrValidation, "preset", "parse",
			fmt.Sprintf("unsupported preset version %d (want %d)", p.Version, CurrentVersion), nil)
	}
	return p, nil
}

// Save writes p to path, creating parent directories.
func Save(path string, p Preset) error {
	if p.Version == 0 {
		p.Version = CurrentVersion
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preset directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}

// FromState captures the current form.
func FromState(state *form.State) Preset {
	p := Preset{Version: CurrentVersion}
	if state == nil {
		return p
	}
	writing := state.Writing
	p.Topic = state.Topic
	p.TargetCountry = state.TargetCountry
	p.ArticleLanguage = state.ArticleLanguage
	p.Keywords = state.Keywords
	p.ArticleType = state.ArticleType
	p.ResearchMethod = state.ResearchMethod
	p.PrimaryKeyword = state.PrimaryKeyword
	p.SecondaryKeywords = state.SecondaryKeywords()
	for _, ref := range state.Competitors() {
		p.CompetitorURLs = append(p.CompetitorURLs, ref.URL)
	}
	p.Writing = &writing
	return p
}

// Build fills a new form seeded with defaults. Competitor URLs go through
// analyze in order; a nil analyze skips them. The first failing field stops
// the build.
func (p Preset) Build(ctx context.Context, defaults form.Defaults, analyze AnalyzeFunc) (*form.State, error) {
	state := form.New(defaults)
	state.Topic = p.Topic
	state.Keywords = p.Keywords
	state.PrimaryKeyword = p.PrimaryKeyword

	setters := []struct {
		value string
		set   func(string) error
	}{
		{p.TargetCountry, state.SetTargetCountry},
		{p.ArticleLanguage, state.SetArticleLanguage},
		{p.ArticleType, state.SetArticleType},
		{p.ResearchMethod, state.SetResearchMethod},
	}
	for _, s := range setters {
		if strings.TrimSpace(s.value) == "" {
			continue
		}
		if err := s.set(s.value); err != nil {
			return nil, err
		}
	}
	if p.Writing != nil {
		if err := state.SetWriting(*p.Writing); err != nil {
			return nil, err
		}
	}
	for _, kw := range p.SecondaryKeywords {
		if err := state.AddSecondaryKeyword(kw); err != nil {
			return nil, fmt.Errorf("secondary keyword %q: %w", kw, err)
		}
	}
	if analyze == nil {
		return state, nil
	}
	for _, raw := range p.CompetitorURLs {
		if state.CompetitorCount() >= form.MaxListItems {
			return nil, services.Wrap(services.ErrValidation, "preset", "build",
				fmt.Sprintf("at most %d competitor urls are allowed", form.MaxListItems), nil)
		}
		ref, err := analyze(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("competitor url %q: %w", raw, err)
		}
		if err := state.AddCompetitor(ref); err != nil {
			return nil, fmt.Errorf("competitor url %q: %w", raw, err)
		}
	}
	return state, nil
}

// Sample returns an example preset.
func Sample() Preset {
	writing := form.DefaultWriting()
	return Preset{
		Version:           CurrentVersion,
		Topic:             "ansible cluster management",
		TargetCountry:     "US",
		ArticleLanguage:   "en",
		Keywords:          "ansible, configuration management, automation",
		ArticleType:       "guide",
		ResearchMethod:    "serp_analysis",
		PrimaryKeyword:    "ansible",
		SecondaryKeywords: []string{"automation", "devops"},
		CompetitorURLs:    []string{"https://docs.ansible.com"},
		Writing:           &writing,
	}
}
