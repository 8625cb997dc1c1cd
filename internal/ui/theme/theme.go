package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/roadmapper/internal/graphview"
	"github.com/abhisek/roadmapper/internal/status"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Violet
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Section = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Warn = lipgloss.NewStyle().
		Foreground(Warning)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// StatusColor returns the display color for an item status. It follows the
// graph renderer's style mapping so the terminal and the browser agree.
func StatusColor(s status.Status) color.Color {
	return lipgloss.Color(graphview.StyleFor(s).Color())
}

// StatusStyle renders text in the status color.
func StatusStyle(s status.Status) lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(StatusColor(s))
	if s == status.InProgress || s == status.NeedsReview {
		st = st.Bold(true)
	}
	return st
}
