package wizard

import (
	"fmt"
	"strings"

	"autoposter/internal/form"
	"autoposter/internal/logging"
	"autoposter/internal/services"
)

// Field names an enumerated form field that can be cycled.
type Field string

const (
	FieldCountry        Field = "target_country"
	FieldLanguage       Field = "article_language"
	FieldArticleType    Field = "article_type"
	FieldResearchMethod Field = "research_method"
	FieldTone           Field = "tone"
	FieldWordCount      Field = "word_count"
	FieldHeadingCount   Field = "heading_count"
	FieldPerspective    Field = "perspective"
)

// edit applies fn to the form and emits a change when fn succeeds.
func (c *Controller) edit(fn func(*form.State) error) error {
	var err error
	if doErr := c.do(func() {
		if err = fn(c.state); err == nil {
			c.emit(EventChanged, "")
		}
	}); doErr != nil {
		return doErr
	}
	return err
}

// SetTopic stores the topic as typed.
func (c *Controller) SetTopic(topic string) error {
	return c.edit(func(s *form.State) error { s.Topic = topic; return nil })
}

// SetKeywords stores the comma-separated keyword text.
func (c *Controller) SetKeywords(text string) error {
	return c.edit(func(s *form.State) error { s.Keywords = text; return nil })
}

// SetPrimaryKeyword stores the primary keyword.
func (c *Controller) SetPrimaryKeyword(kw string) error {
	return c.edit(func(s *form.State) error { s.PrimaryKeyword = kw; return nil })
}

func (c *Controller) SetTargetCountry(code string) error {
	return c.edit(func(s *form.State) error { return s.SetTargetCountry(code) })
}

func (c *Controller) SetArticleLanguage(code string) error {
	return c.edit(func(s *form.State) error { return s.SetArticleLanguage(code) })
}

func (c *Controller) SetArticleType(value string) error {
	return c.edit(func(s *form.State) error { return s.SetArticleType(value) })
}

func (c *Controller) SetResearchMethod(value string) error {
	return c.edit(func(s *form.State) error { return s.SetResearchMethod(value) })
}

// SetWriting replaces the writing options.
func (c *Controller) SetWriting(w form.Writing) error {
	return c.edit(func(s *form.State) error { return s.SetWriting(w) })
}

// Cycle moves an enumerated field step positions through its choices.
func (c *Controller) Cycle(field Field, step int) error {
	return c.edit(func(s *form.State) error {
		switch field {
		case FieldCountry:
			s.TargetCountry = form.Countries.Next(s.TargetCountry, step)
		case FieldLanguage:
			s.ArticleLanguage = form.Languages.Next(s.ArticleLanguage, step)
		case FieldArticleType:
			s.ArticleType = form.ArticleTypes.Next(s.ArticleType, step)
		case FieldResearchMethod:
			s.ResearchMethod = form.ResearchMethods.Next(s.ResearchMethod, step)
		case FieldTone:
			s.Writing.Tone = form.Tones.Next(s.Writing.Tone, step)
		case FieldPerspective:
			s.Writing.Perspective = form.Perspectives.Next(s.Writing.Perspective, step)
		case FieldWordCount:
			s.CycleWordCount(step)
		case FieldHeadingCount:
			s.CycleHeadingCount(step)
		default:
			return services.Wrap(services.ErrValidation, "wizard", "cycle", fmt.Sprintf("field %q is not enumerated", field), nil)
		}
		return nil
	})
}

// LoadForm replaces the whole form, for example with a preset. Analyses
// still running against the previous form are discarded.
func (c *Controller) LoadForm(state *form.State) error {
	if state == nil {
		return services.Wrap(services.ErrValidation, "wizard", "load form", "form is nil", nil)
	}
	clone := state.Clone()
	return c.do(func() {
		c.state = clone
		c.epoch++
		c.pending = 0
		c.emit(EventChanged, "")
	})
}

// SetKeywordInput and SetCompetitorInput mirror the pending text fields.
// They do not emit events.
func (c *Controller) SetKeywordInput(text string) error {
	return c.do(func() { c.inputs.Keyword = text })
}

func (c *Controller) SetCompetitorInput(text string) error {
	return c.do(func() { c.inputs.Competitor = text })
}

// SubmitKeyword adds the pending keyword text. On success the buffer is
// cleared; a rejected keyword leaves it untouched.
func (c *Controller) SubmitKeyword() error {
	var err error
	if doErr := c.do(func() { err = c.addKeyword(c.inputs.Keyword) }); doErr != nil {
		return doErr
	}
	return err
}

// AddSecondaryKeyword adds kw directly.
func (c *Controller) AddSecondaryKeyword(kw string) error {
	var err error
	if doErr := c.do(func() { err = c.addKeyword(kw) }); doErr != nil {
		return doErr
	}
	return err
}

func (c *Controller) addKeyword(kw string) error {
	if err := c.state.AddSecondaryKeyword(kw); err != nil {
		c.logger.Debug("secondary keyword rejected", logging.String("keyword", kw), logging.Error(err))
		return err
	}
	if c.inputs.Keyword == kw {
		c.inputs.Keyword = ""
	}
	c.emit(EventKeywordAdded, kw)
	return nil
}

// RemoveSecondaryKeyword deletes kw; it reports whether anything was removed.
func (c *Controller) RemoveSecondaryKeyword(kw string) (bool, error) {
	var removed bool
	err := c.do(func() {
		if removed = c.state.RemoveSecondaryKeyword(kw); removed {
			c.emit(EventChanged, "")
		}
	})
	return removed, err
}

// RemoveCompetitor deletes the reference with id.
func (c *Controller) RemoveCompetitor(id string) (bool, error) {
	var removed bool
	err := c.do(func() {
		if removed = c.state.RemoveCompetitor(id); removed {
			c.emit(EventChanged, "")
		}
	})
	return removed, err
}

// SubmitCompetitor starts analysis of the pending competitor text.
func (c *Controller) SubmitCompetitor() error {
	var err error
	if doErr := c.do(func() { err = c.startAnalysis(c.inputs.Competitor) }); doErr != nil {
		return doErr
	}
	return err
}

// AddCompetitor starts analysis of raw. It returns once the analysis is
// queued; the reference appears in a later snapshot. Blank input and a full
// list, counting analyses still running, are rejected immediately.
func (c *Controller) AddCompetitor(raw string) error {
	var err error
	if doErr := c.do(func() { err = c.startAnalysis(raw) }); doErr != nil {
		return doErr
	}
	return err
}

func (c *Controller) startAnalysis(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return form.ErrBlankItem
	}
	if c.state.CompetitorCount()+c.pending >= form.MaxListItems {
		return form.ErrListFull
	}
	c.pending++
	epoch := c.epoch
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ref, err := c.analyzer.Analyze(c.ctx, raw)
		c.post(func() { c.finishAnalysis(epoch, raw, ref, err) })
	}()
	c.emit(EventChanged, "")
	return nil
}

func (c *Controller) finishAnalysis(epoch uint64, raw string, ref form.CompetitorRef, err error) {
	if epoch != c.epoch {
		c.logger.Debug("discarding analysis for replaced form", logging.String("url", raw))
		return
	}
	c.pending--
	if err != nil {
		c.logger.Debug("competitor analysis failed", logging.String("url", raw), logging.Error(err))
		c.emit(EventChanged, "")
		return
	}
	if addErr := c.state.AddCompetitor(ref); addErr != nil {
		c.logger.Warn("competitor reference dropped",
			logging.String("url", raw),
			logging.Error(addErr),
			logging.String(logging.FieldImpact, "reference not added to the form"),
		)
		c.emit(EventChanged, "")
		return
	}
	if c.inputs.Competitor == raw {
		c.inputs.Competitor = ""
	}
	c.emit(EventCompetitorAdded, raw)
}
