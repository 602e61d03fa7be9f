package wizard

import (
	"autoposter/internal/generation"
	"autoposter/internal/present"
)

// Copy puts the current article on the clipboard.
func (c *Controller) Copy() present.Feedback {
	return c.act(c.actions.Copy)
}

// Download saves the current article in format.
func (c *Controller) Download(format present.Format) present.Feedback {
	return c.act(func(a *generation.Artifact) present.Feedback {
		return c.actions.Download(a, format)
	})
}

// Publish hands the current article to the publishing collaborator.
func (c *Controller) Publish() present.Feedback {
	return c.act(func(a *generation.Artifact) present.Feedback {
		return c.actions.Publish(c.ctx, a)
	})
}

// act runs fn off the loop against a copy of the artifact and records the
// resulting feedback.
func (c *Controller) act(fn func(*generation.Artifact) present.Feedback) present.Feedback {
	var artifact *generation.Artifact
	if err := c.do(func() { artifact = cloneArtifact(c.artifact) }); err != nil {
		return present.Feedback{Level: present.LevelError, Message: "Wizard is closed", Err: err}
	}
	fb := fn(artifact)
	_ = c.do(func() {
		c.feedback = &fb
		c.emit(EventFeedback, "")
	})
	return fb
}
