package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bondvault/internal/theme"
)

// styles is the style set for one palette. It is rebuilt whenever the theme
// changes and handed to every view.
type styles struct {
	palette theme.Palette

	// Tabs
	activeTab   lipgloss.Style
	inactiveTab lipgloss.Style

	// Panels
	panel       lipgloss.Style
	activePanel lipgloss.Style

	// PIN pad
	pinDigit lipgloss.Style
	pinEmpty lipgloss.Style

	// Text
	title     lipgloss.Style
	subtitle  lipgloss.Style
	accent    lipgloss.Style
	success   lipgloss.Style
	warning   lipgloss.Style
	err       lipgloss.Style
	muted     lipgloss.Style
	highlight lipgloss.Style

	// Header/footer
	header lipgloss.Style
	footer lipgloss.Style

	// List items
	selectedItem lipgloss.Style
	normalItem   lipgloss.Style
}

func newStyles(p theme.Palette) styles {
	return styles{
		palette: p,

		activeTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(p.Primary).
			Padding(0, 2),
		inactiveTab: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 2),

		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Subtle).
			Padding(1, 2),
		activePanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(1, 2),

		pinDigit: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		pinEmpty: lipgloss.NewStyle().
			Foreground(p.Subtle),

		title:     lipgloss.NewStyle().Bold(true).Foreground(p.Fg),
		subtitle:  lipgloss.NewStyle().Foreground(p.Muted),
		accent:    lipgloss.NewStyle().Foreground(p.Accent),
		success:   lipgloss.NewStyle().Foreground(p.Success),
		warning:   lipgloss.NewStyle().Foreground(p.Warning),
		err:       lipgloss.NewStyle().Foreground(p.Error),
		muted:     lipgloss.NewStyle().Foreground(p.Muted),
		highlight: lipgloss.NewStyle().Foreground(p.Highlight),

		header: lipgloss.NewStyle().Padding(0, 1),
		footer: lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1),

		selectedItem: lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		normalItem:   lipgloss.NewStyle().Foreground(p.Fg),
	}
}

// interactionColor gives each interaction type its own color.
func (s styles) interactionColor(t string) lipgloss.Color {
	switch t {
	case "Call":
		return s.palette.Secondary
	case "Meeting":
		return s.palette.Primary
	case "Message":
		return s.palette.Highlight
	}
	return s.palette.Warning
}
