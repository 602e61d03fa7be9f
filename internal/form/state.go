package form

import (
	"fmt"
	"strings"
	"time"

	"autoposter/internal/services"
)

// StatusAdded marks a competitor reference whose analysis completed.
const StatusAdded = "Added"

// CompetitorRef is an analyzed competitor URL. ID never changes once assigned.
type CompetitorRef struct {
	ID      string    `json:"id" yaml:"id"`
	URL     string    `json:"url" yaml:"url"`
	Title   string    `json:"derived_title" yaml:"derived_title"`
	Status  string    `json:"status" yaml:"status"`
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}

// Writing holds the optional writing options. They are sent with the request
// but do not take part in step completion.
type Writing struct {
	Tone         string `json:"tone" yaml:"tone"`
	WordCount    int    `json:"word_count" yaml:"word_count"`
	HeadingCount int    `json:"heading_count" yaml:"heading_count"`
	Perspective  string `json:"perspective" yaml:"perspective"`
}

// DefaultWriting returns the writing options a fresh form starts with.
func DefaultWriting() Writing {
	return Writing{
		Tone:         "professional",
		WordCount:    800,
		HeadingCount: 7,
		Perspective:  "third_person",
	}
}

// Defaults seeds the enumerated fields of a new State.
type Defaults struct {
	Country        string
	Language       string
	ArticleType    string
	ResearchMethod string
}

// DefaultValues returns the built-in field defaults.
func DefaultValues() Defaults {
	return Defaults{
		Country:        Countries[0].Value,
		Language:       Languages[0].Value,
		ArticleType:    ArticleTypes[0].Value,
		ResearchMethod: ResearchMethods[0].Value,
	}
}

// State is the wizard's form. Scalar fields are plain data; the two bounded
// collections are reachable only through methods so their rules always hold.
type State struct {
	Topic           string
	TargetCountry   string
	ArticleLanguage string
	Keywords        string
	ArticleType     string
	ResearchMethod  string
	PrimaryKeyword  string
	Writing         Writing

	secondary   *BoundedList[string]
	competitors *BoundedList[CompetitorRef]
}

// New builds an empty form seeded with defaults.
func New(d Defaults) *State {
	return &State{
		TargetCountry:   d.Country,
		ArticleLanguage: d.Language,
		ArticleType:     d.ArticleType,
		ResearchMethod:  d.ResearchMethod,
		Writing:         DefaultWriting(),
		secondary:       newKeywordList(),
		competitors:     newCompetitorList(),
	}
}

func newKeywordList() *BoundedList[string] {
	return NewBoundedList(MaxListItems, func(s string) string { return s }, true)
}

func newCompetitorList() *BoundedList[CompetitorRef] {
	return NewBoundedList(MaxListItems, func(ref CompetitorRef) string { return ref.ID }, true)
}

func (s *State) lists() {
	if s.secondary == nil {
		s.secondary = newKeywordList()
	}
	if s.competitors == nil {
		s.competitors = newCompetitorList()
	}
}

// AddSecondaryKeyword trims kw and appends it. Blank, duplicate, and
// over-capacity additions are rejected with a validation error.
func (s *State) AddSecondaryKeyword(kw string) error {
	s.lists()
	return s.secondary.Add(strings.TrimSpace(kw))
}

// RemoveSecondaryKeyword deletes kw by exact value; absent values are a no-op.
func (s *State) RemoveSecondaryKeyword(kw string) bool {
	s.lists()
	return s.secondary.Remove(kw)
}

// SecondaryKeywords returns the keywords in insertion order.
func (s *State) SecondaryKeywords() []string {
	s.lists()
	return s.secondary.Items()
}

// SecondaryFull reports whether the keyword list is at capacity.
func (s *State) SecondaryFull() bool {
	s.lists()
	return s.secondary.Full()
}

// AddCompetitor appends an analyzed reference.
func (s *State) AddCompetitor(ref CompetitorRef) error {
	s.lists()
	return s.competitors.Add(ref)
}

// RemoveCompetitor deletes the reference with id; absent ids are a no-op.
func (s *State) RemoveCompetitor(id string) bool {
	s.lists()
	return s.competitors.Remove(id)
}

// Competitors returns the references in insertion order.
func (s *State) Competitors() []CompetitorRef {
	s.lists()
	return s.competitors.Items()
}

// CompetitorCount returns the number of stored references.
func (s *State) CompetitorCount() int {
	s.lists()
	return s.competitors.Len()
}

// Clone returns a deep copy that shares nothing with s.
func (s *State) Clone() *State {
	s.lists()
	clone := *s
	clone.secondary = s.secondary.Clone()
	clone.competitors = s.competitors.Clone()
	return &clone
}

// SetTargetCountry validates and stores a country code.
func (s *State) SetTargetCountry(code string) error {
	return setChoice(&s.TargetCountry, Countries, strings.ToUpper(strings.TrimSpace(code)), "target_country")
}

// SetArticleLanguage validates and stores a language code.
func (s *State) SetArticleLanguage(code string) error {
	return setChoice(&s.ArticleLanguage, Languages, strings.ToLower(strings.TrimSpace(code)), "article_language")
}

// SetArticleType validates and stores an article type.
func (s *State) SetArticleType(value string) error {
	return setChoice(&s.ArticleType, ArticleTypes, strings.ToLower(strings.TrimSpace(value)), "article_type")
}

// SetResearchMethod validates and stores a research method.
func (s *State) SetResearchMethod(value string) error {
	return setChoice(&s.ResearchMethod, ResearchMethods, strings.ToLower(strings.TrimSpace(value)), "research_method")
}

// SetWriting validates and stores the writing options.
func (s *State) SetWriting(w Writing) error {
	if w.Tone != "" && !Tones.Contains(w.Tone) {
		return fmt.Errorf("%w: tone %q is not one of %s", services.ErrValidation, w.Tone, Tones)
	}
	if w.Perspective != "" && !Perspectives.Contains(w.Perspective) {
		return fmt.Errorf("%w: perspective %q is not one of %s", services.ErrValidation, w.Perspective, Perspectives)
	}
	if w.WordCount != 0 && !containsInt(WordCounts, w.WordCount) {
		return fmt.Errorf("%w: word count %d is not one of %v", services.ErrValidation, w.WordCount, WordCounts)
	}
	if w.HeadingCount != 0 && !containsInt(HeadingCounts, w.HeadingCount) {
		return fmt.Errorf("%w: heading count %d is not one of %v", services.ErrValidation, w.HeadingCount, HeadingCounts)
	}
	defaults := DefaultWriting()
	if w.Tone == "" {
		w.Tone = defaults.Tone
	}
	if w.Perspective == "" {
		w.Perspective = defaults.Perspective
	}
	if w.WordCount == 0 {
		w.WordCount = defaults.WordCount
	}
	if w.HeadingCount == 0 {
		w.HeadingCount = defaults.HeadingCount
	}
	s.Writing = w
	return nil
}

// CycleWordCount and CycleHeadingCount step through the accepted sizes.
func (s *State) CycleWordCount(step int) {
	s.Writing.WordCount = nextInt(WordCounts, s.Writing.WordCount, step)
}

func (s *State) CycleHeadingCount(step int) {
	s.Writing.HeadingCount = nextInt(HeadingCounts, s.Writing.HeadingCount, step)
}

// HasTopic reports whether the topic is non-blank after trimming.
func (s *State) HasTopic() bool {
	return strings.TrimSpace(s.Topic) != ""
}

func setChoice(dst *string, choices Choices, value, field string) error {
	if !choices.Contains(value) {
		return fmt.Errorf("%w: %s %q is not one of %s", services.ErrValidation, field, value, choices)
	}
	*dst = value
	return nil
}
