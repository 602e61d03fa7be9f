package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"autoposter/internal/generation"
	"autoposter/internal/logging"
	"autoposter/internal/present"
	"autoposter/internal/wizard"
)

const logPanelLines = 6

type fieldID int

const (
	fieldTopic fieldID = iota
	fieldCountry
	fieldLanguage
	fieldCompetitors
	fieldKeywords
	fieldArticleType
	fieldPrimary
	fieldSecondary
	fieldResearch
	fieldTone
	fieldWordCount
	fieldHeadings
	fieldPerspective
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Topic",
	"Target location",
	"Article language",
	"Competitor URLs",
	"Keywords",
	"Article type",
	"Primary keyword",
	"Secondary keywords",
	"Research method",
	"Tone",
	"Word count",
	"Headings",
	"Perspective",
}

var enumFields = map[fieldID]wizard.Field{
	fieldCountry:     wizard.FieldCountry,
	fieldLanguage:    wizard.FieldLanguage,
	fieldArticleType: wizard.FieldArticleType,
	fieldResearch:    wizard.FieldResearchMethod,
	fieldTone:        wizard.FieldTone,
	fieldWordCount:   wizard.FieldWordCount,
	fieldHeadings:    wizard.FieldHeadingCount,
	fieldPerspective: wizard.FieldPerspective,
}

func (f fieldID) text() bool {
	switch f {
	case fieldTopic, fieldCompetitors, fieldKeywords, fieldPrimary, fieldSecondary:
		return true
	}
	return false
}

type eventMsg struct {
	event wizard.Event
	ok    bool
}

type logMsg struct {
	lines []string
	seq   uint64
}

type actionMsg struct {
	feedback present.Feedback
}

// Options customizes the program.
type Options struct {
	Logs   *logging.StreamHub
	Format present.Format
}

// Model is the Bubble Tea model for one wizard session.
type Model struct {
	ctrl        *wizard.Controller
	events      <-chan wizard.Event
	unsubscribe func()
	logs        *logging.StreamHub
	logSeq      uint64
	logLines    []string
	ctx         context.Context
	cancel      context.CancelFunc

	keys    keyMap
	help    help.Model
	styles  styles
	inputs  [fieldCount]textinput.Model
	spinner spinner.Model
	bar     progress.Model

	focus   fieldID
	snap    wizard.Snapshot
	notice  string
	format  present.Format
	width   int
	stopped bool
}

// New subscribes to ctrl and builds the model. Close releases the
// subscription.
func New(ctrl *wizard.Controller, opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	events, unsubscribe := ctrl.Subscribe()
	m := &Model{
		ctrl:        ctrl,
		events:      events,
		unsubscribe: unsubscribe,
		logs:        opts.Logs,
		ctx:         ctx,
		cancel:      cancel,
		keys:        newKeyMap(),
		help:        help.New(),
		styles:      newStyles(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		format:      opts.Format,
		width:       100,
	}
	if m.format == "" {
		m.format = present.FormatMarkdown
	}
	placeholders := map[fieldID]string{
		fieldTopic:       "What should the article be about?",
		fieldCompetitors: "https://competitor.example/post",
		fieldKeywords:    "comma, separated, keywords",
		fieldPrimary:     "main search keyword",
		fieldSecondary:   "add a keyword and press enter",
	}
	for id, placeholder := range placeholders {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholder
		ti.CharLimit = 300
		ti.Width = 48
		m.inputs[id] = ti
	}
	m.inputs[fieldTopic].Focus()
	if snap, err := ctrl.Snapshot(); err == nil {
		m.apply(snap)
	}
	return m
}

// Close releases the subscription and stops the log watcher.
func (m *Model) Close() {
	m.cancel()
	m.unsubscribe()
}

// Run drives the program until the user quits or ctx ends.
func Run(ctx context.Context, ctrl *wizard.Controller, opts Options) error {
	m := New(ctrl, opts)
	defer m.Close()
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.waitForLogs(), m.spinner.Tick, textinput.Blink)
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{event: ev, ok: ok}
	}
}

func (m *Model) waitForLogs() tea.Cmd {
	if m.logs == nil {
		return nil
	}
	hub, ctx, since := m.logs, m.ctx, m.logSeq
	return func() tea.Msg {
		if err := hub.Wait(ctx, since); err != nil {
			return nil
		}
		events, seq := hub.Tail(logPanelLines)
		lines := make([]string, 0, len(events))
		for _, evt := range events {
			lines = append(lines, evt.Line())
		}
		return logMsg{lines: lines, seq: seq}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		if w := msg.Width - 30; w > 20 {
			m.bar.Width = min(w, 60)
		}
		return m, nil
	case eventMsg:
		if !msg.ok {
			m.stopped = true
			return m, tea.Quit
		}
		m.handleEvent(msg.event)
		return m, m.waitForEvent()
	case logMsg:
		m.logSeq = msg.seq
		m.logLines = msg.lines
		return m, m.waitForLogs()
	case actionMsg:
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(ev wizard.Event) {
	switch ev.Kind {
	case wizard.EventKeywordAdded:
		if m.inputs[fieldSecondary].Value() == ev.Input {
			m.inputs[fieldSecondary].Reset()
		}
	case wizard.EventCompetitorAdded:
		if m.inputs[fieldCompetitors].Value() == ev.Input {
			m.inputs[fieldCompetitors].Reset()
		}
	}
	m.apply(ev.Snapshot)
}

// apply stores snap and seeds empty text inputs from it, so a preset loaded
// before the program started shows up.
func (m *Model) apply(snap wizard.Snapshot) {
	first := m.snap.Form == nil
	m.snap = snap
	if !first || snap.Form == nil {
		return
	}
	m.inputs[fieldTopic].SetValue(snap.Form.Topic)
	m.inputs[fieldKeywords].SetValue(snap.Form.Keywords)
	m.inputs[fieldPrimary].SetValue(snap.Form.PrimaryKeyword)
	m.inputs[fieldSecondary].SetValue(snap.Inputs.Keyword)
	m.inputs[fieldCompetitors].SetValue(snap.Inputs.Competitor)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.stopped = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.dismiss):
		if m.notice != "" || m.snap.Err != nil || m.snap.Feedback != nil {
			m.notice = ""
			m.report(m.ctrl.Dismiss())
			return m, nil
		}
		m.stopped = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextField):
		return m, m.moveFocus(1)
	case key.Matches(msg, m.keys.prevField):
		return m, m.moveFocus(-1)
	case key.Matches(msg, m.keys.generate):
		m.report(m.ctrl.Generate(generation.FlowMultiStep))
		return m, nil
	case key.Matches(msg, m.keys.legacy):
		m.report(m.ctrl.Generate(generation.FlowLegacy))
		return m, nil
	case key.Matches(msg, m.keys.copy):
		return m, m.action(m.ctrl.Copy)
	case key.Matches(msg, m.keys.download):
		format := m.format
		return m, m.action(func() present.Feedback { return m.ctrl.Download(format) })
	case key.Matches(msg, m.keys.publish):
		return m, m.action(m.ctrl.Publish)
	}

	if wf, ok := enumFields[m.focus]; ok {
		switch {
		case key.Matches(msg, m.keys.cycleNext):
			m.report(m.ctrl.Cycle(wf, 1))
		case key.Matches(msg, m.keys.cyclePrev):
			m.report(m.ctrl.Cycle(wf, -1))
		case key.Matches(msg, m.keys.add):
			return m, m.moveFocus(1)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.add):
		switch m.focus {
		case fieldSecondary:
			m.report(m.ctrl.SubmitKeyword())
		case fieldCompetitors:
			m.report(m.ctrl.SubmitCompetitor())
		default:
			return m, m.moveFocus(1)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		m.removeLast()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if value := m.inputs[m.focus].Value(); value != before {
		m.notice = ""
		m.report(m.sync(m.focus, value))
	}
	return m, cmd
}

func (m *Model) sync(id fieldID, value string) error {
	switch id {
	case fieldTopic:
		return m.ctrl.SetTopic(value)
	case fieldKeywords:
		return m.ctrl.SetKeywords(value)
	case fieldPrimary:
		return m.ctrl.SetPrimaryKeyword(value)
	case fieldSecondary:
		return m.ctrl.SetKeywordInput(value)
	case fieldCompetitors:
		return m.ctrl.SetCompetitorInput(value)
	}
	return nil
}

func (m *Model) removeLast() {
	if m.snap.Form == nil {
		return
	}
	switch m.focus {
	case fieldSecondary:
		if kws := m.snap.Form.SecondaryKeywords(); len(kws) > 0 {
			_, err := m.ctrl.RemoveSecondaryKeyword(kws[len(kws)-1])
			m.report(err)
		}
	case fieldCompetitors:
		if refs := m.snap.Form.Competitors(); len(refs) > 0 {
			_, err := m.ctrl.RemoveCompetitor(refs[len(refs)-1].ID)
			m.report(err)
		}
	}
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if m.focus.text() {
		m.inputs[m.focus].Blur()
	}
	m.focus = fieldID((int(m.focus) + delta + int(fieldCount)) % int(fieldCount))
	if m.focus.text() {
		return m.inputs[m.focus].Focus()
	}
	return nil
}

func (m *Model) action(fn func() present.Feedback) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{feedback: fn()}
	}
}

func (m *Model) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, wizard.ErrClosed) {
		m.notice = "Session closed"
		return
	}
	m.notice = err.Error()
}
