// Package kanban shows the roadmap as a board with one column per status.
package kanban

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/router"
	"github.com/abhisek/roadmapper/internal/screen"
	"github.com/abhisek/roadmapper/internal/screens/itemdetail"
	"github.com/abhisek/roadmapper/internal/ui/components"
	"github.com/abhisek/roadmapper/internal/ui/layout"
	"github.com/abhisek/roadmapper/internal/ui/theme"
)

const minColumnWidth = 26

// BoardScreen renders dashboard.Kanban. Columns wider than the terminal
// scroll horizontally around the selected one.
type BoardScreen struct {
	shell *dashboard.Shell
	col   int
	row   int
}

var _ screen.Screen = (*BoardScreen)(nil)
var _ screen.KeyHintProvider = (*BoardScreen)(nil)

func New(shell *dashboard.Shell) *BoardScreen {
	return &BoardScreen{shell: shell}
}

func (s *BoardScreen) Init() tea.Cmd { return nil }

func (s *BoardScreen) Title() string { return "Kanban" }

func (s *BoardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	cols := s.shell.Kanban()
	s.clamp(cols)

	switch kmsg.String() {
	case "left", "h":
		if s.col > 0 {
			s.col--
		}
	case "right", "l", "tab":
		if s.col < len(cols)-1 {
			s.col++
		}
	case "up", "k":
		if s.row > 0 {
			s.row--
		}
	case "down", "j":
		s.row++
	case "enter":
		cards := cols[s.col].Cards
		if s.row < len(cards) {
			d, err := itemdetail.New(s.shell, cards[s.row].ID)
			if err != nil {
				return s, nil
			}
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: d} }
		}
	case "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	s.clamp(cols)
	return s, nil
}

// clamp keeps the selection inside the board; cards move between columns
// whenever progress changes.
func (s *BoardScreen) clamp(cols []dashboard.Column) {
	s.col = max(0, min(s.col, len(cols)-1))
	if len(cols) == 0 {
		s.row = 0
		return
	}
	s.row = max(0, min(s.row, len(cols[s.col].Cards)-1))
}

// Selected returns the id of the highlighted card, if any.
func (s *BoardScreen) Selected() (string, bool) {
	cols := s.shell.Kanban()
	s.clamp(cols)
	if len(cols) == 0 || s.row >= len(cols[s.col].Cards) {
		return "", false
	}
	return cols[s.col].Cards[s.row].ID, true
}

func (s *BoardScreen) View(width, height int) string {
	cols := s.shell.Kanban()
	s.clamp(cols)
	if len(cols) == 0 {
		return ""
	}

	visible := max(1, min(len(cols), width/minColumnWidth))
	first := max(0, min(s.col-visible/2, len(cols)-visible))
	colWidth := width/visible - 2

	var rendered []string
	for i := first; i < first+visible; i++ {
		rendered = append(rendered, s.renderColumn(cols[i], i == s.col, colWidth, height-2))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	var scroll string
	if visible < len(cols) {
		scroll = theme.Dim.Render(fmt.Sprintf("  columns %d-%d of %d", first+1, first+visible, len(cols)))
	}
	return board + "\n" + scroll
}

func (s *BoardScreen) renderColumn(col dashboard.Column, active bool, width, height int) string {
	header := theme.StatusStyle(col.Status).Bold(true).
		Render(fmt.Sprintf("%s %s (%d)", col.Status.Icon(), col.Label, len(col.Cards)))

	lines := []string{header, ""}
	maxCards := max(1, (height-4)/2)
	start := 0
	if active && s.row >= maxCards {
		start = s.row - maxCards + 1
	}
	for i := start; i < len(col.Cards) && i < start+maxCards; i++ {
		c := col.Cards[i]
		label := components.Truncate(c.Label, width-4)
		style := theme.Body
		prefix := "  "
		if active && i == s.row {
			style = theme.Selected
			prefix = "› "
		}
		lines = append(lines,
			style.Render(prefix+label),
			theme.Dim.Render(fmt.Sprintf("  %s %3.0f%%", components.MiniBar(c.Progress, 6), c.Progress)))
	}
	if len(col.Cards) == 0 {
		lines = append(lines, theme.Hint.Render("  empty"))
	}

	border := theme.Border
	if active {
		border = theme.Primary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Height(max(height-2, 4)).
		Render(strings.Join(lines, "\n"))
}

func (s *BoardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Column"},
		{Key: "↑↓", Description: "Card"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}
