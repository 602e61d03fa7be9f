package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"autoposter/internal/form"
	"autoposter/internal/preset"
)

// formFlags collects the intake fields shared by generate and checklist.
// Flags that were set override the values loaded from --form.
type formFlags struct {
	presetPath   string
	topic        string
	country      string
	language     string
	keywords     string
	articleType  string
	research     string
	primary      string
	secondary    []string
	competitors  []string
	tone         string
	wordCount    int
	headingCount int
	perspective  string
}

func (f *formFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.presetPath, "form", "", "Load the form from a YAML preset (see autoposter preset init)")
	flags.StringVarP(&f.topic, "topic", "t", "", "Article topic")
	flags.StringVar(&f.country, "country", "", "Target country code ("+form.Countries.String()+")")
	flags.StringVar(&f.language, "language", "", "Article language code ("+form.Languages.String()+")")
	flags.StringVarP(&f.keywords, "keywords", "k", "", "Comma-separated keywords")
	flags.StringVar(&f.articleType, "type", "", "Article type ("+form.ArticleTypes.String()+")")
	flags.StringVar(&f.research, "research", "", "Research method ("+form.ResearchMethods.String()+")")
	flags.StringVarP(&f.primary, "primary", "p", "", "Primary keyword")
	flags.StringSliceVarP(&f.secondary, "secondary", "s", nil, fmt.Sprintf("Secondary keyword (repeatable, max %d)", form.MaxListItems))
	flags.StringSliceVar(&f.competitors, "competitor", nil, fmt.Sprintf("Competitor reference URL (repeatable, max %d)", form.MaxListItems))
	flags.StringVar(&f.tone, "tone", "", "Writing tone ("+form.Tones.String()+")")
	flags.IntVar(&f.wordCount, "word-count", 0, "Target word count")
	flags.IntVar(&f.headingCount, "headings", 0, "Target heading count")
	flags.StringVar(&f.perspective, "perspective", "", "Narrative perspective ("+form.Perspectives.String()+")")
}

// preset merges the --form file with the flags that were explicitly set.
func (f *formFlags) preset(cmd *cobra.Command) (preset.Preset, error) {
	p := preset.Preset{Version: preset.CurrentVersion}
	if path := strings.TrimSpace(f.presetPath); path != "" {
		loaded, err := preset.Load(path)
		if err != nil {
			return preset.Preset{}, err
		}
		p = loaded
	}

	flags := cmd.Flags()
	fields := []struct {
		name string
		dst  *string
		val  string
	}{
		{"topic", &p.Topic, f.topic},
		{"country", &p.TargetCountry, f.country},
		{"language", &p.ArticleLanguage, f.language},
		{"keywords", &p.Keywords, f.keywords},
		{"type", &p.ArticleType, f.articleType},
		{"research", &p.ResearchMethod, f.research},
		{"primary", &p.PrimaryKeyword, f.primary},
	}
	for _, s := range fields {
		if flags.Changed(s.name) {
			*s.dst = s.val
		}
	}
	if flags.Changed("secondary") {
		p.SecondaryKeywords = append([]string(nil), f.secondary...)
	}
	if flags.Changed("competitor") {
		p.CompetitorURLs = append([]string(nil), f.competitors...)
	}

	if flags.Changed("tone") || flags.Changed("word-count") || flags.Changed("headings") || flags.Changed("perspective") {
		writing := form.DefaultWriting()
		if p.Writing != nil {
			writing = *p.Writing
		}
		if flags.Changed("tone") {
			writing.Tone = f.tone
		}
		if flags.Changed("word-count") {
			writing.WordCount = f.wordCount
		}
		if flags.Changed("headings") {
			writing.HeadingCount = f.headingCount
		}
		if flags.Changed("perspective") {
			writing.Perspective = f.perspective
		}
		p.Writing = &writing
	}
	return p, nil
}

// build produces the form. analyze turns competitor URLs into references.
func (f *formFlags) build(ctx context.Context, cmd *cobra.Command, defaults form.Defaults, analyze preset.AnalyzeFunc) (*form.State, error) {
	p, err := f.preset(cmd)
	if err != nil {
		return nil, err
	}
	return p.Build(ctx, defaults, analyze)
}
