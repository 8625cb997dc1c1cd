package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/roadmapper/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for stacked sections so
// their boxes line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a titled rounded box at the given content width.
func Card(title, content string, cw int) string {
	body := content
	if title != "" {
		body = theme.Section.Render(title) + "\n" + content
	}
	return theme.Card.
		Width(cw).
		Render(body)
}

// Truncate shortens s to at most n display cells, marking the cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
