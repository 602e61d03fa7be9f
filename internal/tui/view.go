package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"autoposter/internal/form"
	"autoposter/internal/present"
)

const previewLines = 8

func (m *Model) View() string {
	if m.stopped {
		return ""
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.title.Render("Autoposter"),
		"  ",
		m.apiView(),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.panel.Render(m.formView()),
		" ",
		m.styles.panel.Render(m.checklistView()),
	)

	sections := []string{header, body}
	if run := m.runView(); run != "" {
		sections = append(sections, m.styles.panel.Render(run))
	}
	if msg := m.messageView(); msg != "" {
		sections = append(sections, msg)
	}
	if len(m.logLines) > 0 {
		sections = append(sections, m.styles.muted.Render(strings.Join(m.logLines, "\n")))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) apiView() string {
	status := m.snap.API
	switch {
	case !status.Known:
		return m.styles.muted.Render("API: " + status.Label())
	case status.Connected:
		return m.styles.online.Render("API: " + status.Label())
	default:
		return m.styles.offline.Render("API: " + status.Label())
	}
}

func (m *Model) formView() string {
	state := m.snap.Form
	if state == nil {
		return "loading…"
	}
	var b strings.Builder
	for id := fieldID(0); id < fieldCount; id++ {
		label := m.styles.label.Render(fieldLabels[id])
		if id == m.focus {
			label = m.styles.focused.Render("› " + fieldLabels[id])
		}
		b.WriteString(label)
		b.WriteString(m.fieldValue(id, state))
		b.WriteByte('\n')
		switch id {
		case fieldCompetitors:
			m.writeCompetitors(&b, state)
		case fieldSecondary:
			for _, kw := range state.SecondaryKeywords() {
				b.WriteString(m.styles.muted.Render("    • " + kw))
				b.WriteByte('\n')
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) fieldValue(id fieldID, state *form.State) string {
	if id.text() {
		return m.inputs[id].View()
	}
	var value string
	switch id {
	case fieldCountry:
		value = form.Countries.Label(state.TargetCountry)
	case fieldLanguage:
		value = form.Languages.Label(state.ArticleLanguage)
	case fieldArticleType:
		value = form.ArticleTypes.Label(state.ArticleType)
	case fieldResearch:
		value = form.ResearchMethods.Label(state.ResearchMethod)
	case fieldTone:
		value = form.Tones.Label(state.Writing.Tone)
	case fieldWordCount:
		value = strconv.Itoa(state.Writing.WordCount)
	case fieldHeadings:
		value = strconv.Itoa(state.Writing.HeadingCount)
	case fieldPerspective:
		value = form.Perspectives.Label(state.Writing.Perspective)
	}
	if id == m.focus {
		return "‹ " + value + " ›"
	}
	return value
}

func (m *Model) writeCompetitors(b *strings.Builder, state *form.State) {
	for _, ref := range state.Competitors() {
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("    • %s  [%s]", ref.Title, ref.Status)))
		b.WriteByte('\n')
	}
	if m.snap.Analyzing > 0 {
		b.WriteString(fmt.Sprintf("    %s analyzing %d…\n", m.spinner.View(), m.snap.Analyzing))
	}
}

func (m *Model) checklistView() string {
	var b strings.Builder
	done, total := m.snap.Completed(), len(m.snap.Checklist)
	b.WriteString(fmt.Sprintf("Progress %d/%d\n", done, total))
	for _, step := range m.snap.Checklist {
		mark := m.styles.todo.Render("○")
		if step.Completed {
			mark = m.styles.done.Render("●")
		}
		b.WriteString(fmt.Sprintf("%s %2d %s\n", mark, step.Index, step.Label))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) runView() string {
	snap := m.snap
	var b strings.Builder
	if snap.Generating || snap.Progress.Percent > 0 {
		prefix := " "
		if snap.Generating {
			prefix = m.spinner.View()
		}
		b.WriteString(fmt.Sprintf("%s %s (%s)\n", prefix, snap.Progress.Label, snap.Flow))
		b.WriteString(m.bar.ViewAs(float64(snap.Progress.Percent) / 100))
		b.WriteByte('\n')
	}
	if a := snap.Artifact; a != nil {
		b.WriteString(m.styles.title.Render(a.Title))
		b.WriteByte('\n')
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("%d words · SEO %d · %d min read", a.WordCount, a.SEOScore, a.ReadingTime)))
		b.WriteByte('\n')
		if snap.Fallback {
			b.WriteString(m.styles.warning.Render("Placeholder article: the backend was unavailable"))
			b.WriteByte('\n')
		}
		lines := strings.Split(strings.TrimSpace(a.Content), "\n")
		if len(lines) > previewLines {
			lines = append(lines[:previewLines], "…")
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) messageView() string {
	var lines []string
	if m.notice != "" {
		lines = append(lines, m.styles.warning.Render(m.notice))
	}
	if m.snap.Err != nil {
		lines = append(lines, m.styles.errorMsg.Render("Generation failed: "+m.snap.Err.Error()+" (esc to dismiss)"))
	}
	if fb := m.snap.Feedback; fb != nil {
		style := m.styles.success
		switch fb.Level {
		case present.LevelWarning:
			style = m.styles.warning
		case present.LevelError:
			style = m.styles.errorMsg
		}
		lines = append(lines, style.Render(fb.Message))
	}
	return strings.Join(lines, "\n")
}
