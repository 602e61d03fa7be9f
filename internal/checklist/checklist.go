// Package checklist derives the wizard's step-completion sidebar from the
// current form. Nothing here is stored; callers recompute on every change.
package checklist

import (
	"strings"

	"autoposter/internal/form"
)

// Steps is the number of entries Evaluate always returns.
const Steps = 10

// Step is one derived checklist entry. Index is 1-based.
type Step struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

// Evaluate maps the form (and whether an artifact exists) to the fixed
// ten-step checklist. A nil form yields every step except the last incomplete.
func Evaluate(state *form.State, hasArtifact bool) []Step {
	if state == nil {
		state = &form.State{}
	}
	done := [Steps]bool{
		filled(state.Topic),
		state.TargetCountry != "",
		state.ArticleLanguage != "",
		state.CompetitorCount() > 0,
		filled(state.Keywords),
		state.ArticleType != "",
		filled(state.PrimaryKeyword),
		len(state.SecondaryKeywords()) > 0,
		state.ResearchMethod != "",
		hasArtifact,
	}
	steps := make([]Step, Steps)
	for i := range steps {
		steps[i] = Step{Index: i + 1, Label: labels[i], Completed: done[i]}
	}
	return steps
}

// Summary counts completed steps.
func Summary(steps []Step) (completed, total int) {
	for _, step := range steps {
		if step.Completed {
			completed++
		}
	}
	return completed, len(steps)
}

// Next returns the first incomplete step, or false when all are done.
func Next(steps []Step) (Step, bool) {
	for _, step := range steps {
		if !step.Completed {
			return step, true
		}
	}
	return Step{}, false
}

var labels = [Steps]string{
	"Topic",
	"Target Location",
	"Article Language",
	"Competitor URLs",
	"Keywords",
	"Article Type",
	"Primary Keyword",
	"Secondary Keywords",
	"Research Method",
	"Generate Article",
}

// filled reports whether the trimmed value is non-empty.
func filled(value string) bool {
	return strings.TrimSpace(value) != ""
}
