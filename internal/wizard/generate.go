package wizard

import (
	"context"

	"autoposter/internal/form"
	"autoposter/internal/generation"
	"autoposter/internal/logging"
	"autoposter/internal/progress"
)

// Generate starts a run of flow. A blank topic returns a validation error
// and a run already in flight returns generation.ErrInFlight; neither
// reaches the network. The previous artifact is cleared, the progress
// ticker restarts at 0%, and the generating flag stays set until the
// invoker resolves, whatever the ticker shows.
func (c *Controller) Generate(flow generation.Flow) error {
	var err error
	if doErr := c.do(func() { err = c.startRun(flow) }); doErr != nil {
		return doErr
	}
	return err
}

func (c *Controller) startRun(flow generation.Flow) error {
	req := c.state.Request()
	if err := generation.Validate(flow, req); err != nil {
		return err
	}
	if c.generating {
		return generation.ErrInFlight
	}
	c.generating = true
	c.runToken++
	token := c.runToken
	c.flow = flow
	c.artifact = nil
	c.fallback = false
	c.runErr = nil
	c.feedback = nil
	c.progress = progress.At(0)

	if c.stopProgress != nil {
		c.stopProgress()
	}
	progressCtx, stop := context.WithCancel(c.ctx)
	c.stopProgress = stop

	c.wg.Add(2)
	go c.runProgress(progressCtx, token)
	go c.runInvoker(flow, req, token)

	c.logger.Debug("run started", logging.String("flow", string(flow)))
	c.emit(EventChanged, "")
	return nil
}

func (c *Controller) runProgress(ctx context.Context, token uint64) {
	defer c.wg.Done()
	for update := range c.ticker.Start(ctx) {
		c.post(func() {
			if token != c.runToken {
				return
			}
			c.progress = update
			c.emit(EventProgress, "")
		})
	}
}

func (c *Controller) runInvoker(flow generation.Flow, req form.Request, token uint64) {
	defer c.wg.Done()
	run, err := c.invoker.Invoke(c.ctx, flow, req)
	c.post(func() { c.finishRun(token, run, err) })
}

func (c *Controller) finishRun(token uint64, run generation.Run, err error) {
	if token != c.runToken {
		return
	}
	c.generating = false
	if run.Artifact != nil {
		c.artifact = cloneArtifact(run.Artifact)
		c.fallback = run.Fallback
		c.emit(EventGenerated, "")
		return
	}
	c.runErr = err
	c.emit(EventGenerationFailed, "")
}

// Dismiss clears the inline error and feedback messages.
func (c *Controller) Dismiss() error {
	return c.do(func() {
		if c.runErr == nil && c.feedback == nil {
			return
		}
		c.runErr = nil
		c.feedback = nil
		c.emit(EventChanged, "")
	})
}
