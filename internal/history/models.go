package history

import (
	"time"

	"autoposter/internal/form"
	"autoposter/internal/generation"
)

// Entry is one stored run. Artifact is nil for runs that surfaced an error.
type Entry struct {
	ID           string               `json:"id"`
	RequestID    string               `json:"request_id"`
	Flow         generation.Flow      `json:"flow"`
	Topic        string               `json:"topic"`
	Outcome      string               `json:"outcome"`
	ErrorKind    string               `json:"error_kind,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Request      form.Request         `json:"request"`
	Artifact     *generation.Artifact `json:"artifact,omitempty"`
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   time.Time            `json:"finished_at"`
}

// Duration is the stored run time.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt.Before(e.StartedAt) {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// Title returns the artifact title, or an empty string for failed runs.
func (e Entry) Title() string {
	if e.Artifact == nil {
		return ""
	}
	return e.Artifact.Title
}

// Match pairs a stored run with its topic similarity to a query.
type Match struct {
	Entry Entry   `json:"entry"`
	Score float64 `json:"score"`
}

// ListOptions filters List. Zero values mean no filter; Limit defaults to 20.
type ListOptions struct {
	Limit   int
	Outcome string
}
