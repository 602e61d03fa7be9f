package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	panel    lipgloss.Style
	label    lipgloss.Style
	focused  lipgloss.Style
	muted    lipgloss.Style
	done     lipgloss.Style
	todo     lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	errorMsg lipgloss.Style
	online   lipgloss.Style
	offline  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		label:    lipgloss.NewStyle().Width(20).Foreground(lipgloss.Color("250")),
		focused:  lipgloss.NewStyle().Width(20).Bold(true).Foreground(lipgloss.Color("212")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		done:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		todo:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		errorMsg: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		online:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		offline:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}
