package wizard

import (
	"autoposter/internal/apistatus"
	"autoposter/internal/checklist"
	"autoposter/internal/form"
	"autoposter/internal/generation"
	"autoposter/internal/present"
	"autoposter/internal/progress"
)

// EventKind names what changed.
type EventKind string

const (
	EventSnapshot         EventKind = "snapshot"
	EventChanged          EventKind = "changed"
	EventKeywordAdded     EventKind = "keyword_added"
	EventCompetitorAdded  EventKind = "competitor_added"
	EventProgress         EventKind = "progress"
	EventGenerated        EventKind = "generated"
	EventGenerationFailed EventKind = "generation_failed"
	EventFeedback         EventKind = "feedback"
	EventAPIStatus        EventKind = "api_status"
)

// Event is delivered to subscribers. Input is the submitted text for
// EventKeywordAdded and EventCompetitorAdded.
type Event struct {
	Kind     EventKind
	Input    string
	Snapshot Snapshot
}

// Inputs are the pending text buffers of the two list fields.
type Inputs struct {
	Keyword    string
	Competitor string
}

// Snapshot is a copy of the session state. Nothing in it aliases the
// controller.
type Snapshot struct {
	Form       *form.State
	Checklist  []checklist.Step
	Inputs     Inputs
	Analyzing  int
	Generating bool
	Flow       generation.Flow
	Progress   progress.Update
	Artifact   *generation.Artifact
	Fallback   bool
	Err        error
	Feedback   *present.Feedback
	API        apistatus.Status
}

// Completed returns how many checklist steps are done.
func (s Snapshot) Completed() int {
	done, _ := checklist.Summary(s.Checklist)
	return done
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{
		Form:       c.state.Clone(),
		Checklist:  checklist.Evaluate(c.state, c.artifact != nil),
		Inputs:     c.inputs,
		Analyzing:  c.pending,
		Generating: c.generating,
		Flow:       c.flow,
		Progress:   c.progress,
		Artifact:   cloneArtifact(c.artifact),
		Fallback:   c.fallback,
		Err:        c.runErr,
		API:        c.api,
	}
	if c.feedback != nil {
		fb := *c.feedback
		snap.Feedback = &fb
	}
	return snap
}

func cloneArtifact(a *generation.Artifact) *generation.Artifact {
	if a == nil {
		return nil
	}
	out := *a
	out.MetaKeywords = append([]string(nil), a.MetaKeywords...)
	return &out
}
