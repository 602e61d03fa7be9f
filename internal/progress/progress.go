// Package progress drives the cosmetic generation progress indicator.
//
// The simulator ticks on its own timer and never looks at the real request;
// the wizard runs it beside the generation call and stops listening once the
// run resolves or the session closes.
package progress

import (
	"context"
	"time"

	"autoposter/internal/config"
)

const (
	// PhaseCount is the number of named phases.
	PhaseCount = 5

	defaultTick = 200 * time.Millisecond
	defaultStep = 10
)

// Phases labels each phase index.
var Phases = [PhaseCount]string{
	"keyword analysis",
	"AI model setup",
	"content generation",
	"SEO optimization",
	"finalization",
}

// Update is one progress observation.
type Update struct {
	Percent int    `json:"percent"`
	Phase   int    `json:"phase"`
	Label   string `json:"label"`
	Done    bool   `json:"done"`
}

// PhaseFor maps a percent to its phase index: one phase per 20%, capped at
// the last phase.
func PhaseFor(percent int) int {
	phase := percent / 20
	if phase < 0 {
		return 0
	}
	if phase >= PhaseCount {
		return PhaseCount - 1
	}
	return phase
}

// At builds the Update for percent.
func At(percent int) Update {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	phase := PhaseFor(percent)
	return Update{Percent: percent, Phase: phase, Label: Phases[phase], Done: percent == 100}
}

// Simulator emits fixed increments on a fixed tick until 100%.
type Simulator struct {
	tick time.Duration
	step int
}

// New constructs a Simulator. Non-positive values fall back to +10 every 200ms.
func New(tick time.Duration, step int) *Simulator {
	if tick <= 0 {
		tick = defaultTick
	}
	if step <= 0 || step > 100 {
		step = defaultStep
	}
	return &Simulator{tick: tick, step: step}
}

// NewFromConfig constructs a Simulator from the [progress] section.
func NewFromConfig(cfg *config.Config) *Simulator {
	if cfg == nil {
		return New(0, 0)
	}
	return New(cfg.ProgressTick(), cfg.Progress.StepPercent)
}

// Start begins a run. The first update is 0%, percent strictly increases, and
// the channel closes after the Done update or as soon as ctx is cancelled.
// Cancellation is checked ahead of every send, so a run cancelled before a
// tick emits nothing for that tick.
func (s *Simulator) Start(ctx context.Context) <-chan Update {
	out := make(chan Update)
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		percent := 0
		for {
			update := At(percent)
			// Done takes priority: select picks at random when a receiver
			// is already waiting on a cancelled run.
			select {
			case <-ctx.Done():
				return
			default:
			}
			select {
			case <-ctx.Done():
				return
			case out <- update:
			}
			if update.Done {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			percent += s.step
			if percent > 100 {
				percent = 100
			}
		}
	}()
	return out
}
