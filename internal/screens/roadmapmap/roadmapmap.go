// Package roadmapmap renders the roadmap as an expandable tree.
package roadmapmap

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/graphview"
	"github.com/abhisek/roadmapper/internal/router"
	"github.com/abhisek/roadmapper/internal/screen"
	"github.com/abhisek/roadmapper/internal/screens/itemdetail"
	"github.com/abhisek/roadmapper/internal/ui/components"
	"github.com/abhisek/roadmapper/internal/ui/layout"
	"github.com/abhisek/roadmapper/internal/ui/theme"
)

// MapScreen shows visible roadmap items as tree rows. The expansion state
// belongs to the screen; statuses come from the shell on every render.
type MapScreen struct {
	shell        *dashboard.Shell
	exp          *graphview.Expansion
	cursorID     string
	scrollOffset int
}

var _ screen.Screen = (*MapScreen)(nil)
var _ screen.KeyHintProvider = (*MapScreen)(nil)

// New opens the map with the roots expanded.
func New(shell *dashboard.Shell) *MapScreen {
	s := &MapScreen{
		shell: shell,
		exp:   graphview.RootsExpanded(shell.Graph()),
	}
	if nodes := s.nodes(); len(nodes) > 0 {
		s.cursorID = nodes[0].ID
	}
	return s
}

func (s *MapScreen) nodes() []graphview.Node {
	return graphview.Build(s.shell.Graph(), s.shell.Projection(), s.shell.Progress(), s.exp).Nodes
}

// cursor resolves the cursor id to a row, falling back to the nearest
// visible ancestor when the row was hidden by a collapse.
func (s *MapScreen) cursor(nodes []graphview.Node) int {
	rows := make(map[string]int, len(nodes))
	for i, n := range nodes {
		rows[n.ID] = i
	}
	if i, ok := rows[s.cursorID]; ok {
		return i
	}
	g := s.shell.Graph()
	id := s.cursorID
	for range g.Len() {
		parents := g.Parents(id)
		if len(parents) == 0 {
			break
		}
		id = parents[0].ID
		if i, ok := rows[id]; ok {
			return i
		}
	}
	return 0
}

func (s *MapScreen) Init() tea.Cmd { return nil }

func (s *MapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	nodes := s.nodes()
	if len(nodes) == 0 {
		return s, nil
	}
	i := s.cursor(nodes)
	cur := nodes[i]

	switch kmsg.String() {
	case "up", "k":
		if i > 0 {
			s.cursorID = nodes[i-1].ID
		}
	case "down", "j":
		if i < len(nodes)-1 {
			s.cursorID = nodes[i+1].ID
		}
	case "space":
		if cur.Expandable {
			s.exp.Toggle(cur.ID)
		}
	case "right", "l":
		switch {
		case cur.Expandable && !cur.Expanded:
			s.exp.Expand(cur.ID)
		case cur.Expanded && i < len(nodes)-1 && nodes[i+1].Depth > cur.Depth:
			s.cursorID = nodes[i+1].ID
		}
	case "left", "h":
		if cur.Expanded {
			s.exp.Collapse(cur.ID)
			break
		}
		for j := i - 1; j >= 0; j-- {
			if nodes[j].Depth < cur.Depth {
				s.cursorID = nodes[j].ID
				break
			}
		}
	case "e":
		s.exp.ExpandAll(s.shell.Graph())
	case "c":
		s.exp.CollapseAll()
	case "enter":
		d, err := itemdetail.New(s.shell, cur.ID)
		if err != nil {
			return s, nil
		}
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: d} }
	case "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *MapScreen) View(width, height int) string {
	nodes := s.nodes()
	if len(nodes) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Dim.Render("The roadmap is empty."))
	}
	i := s.cursor(nodes)
	s.cursorID = nodes[i].ID
	s.adjustScroll(i, height)

	var lines []string
	for r := s.scrollOffset; r < len(nodes) && len(lines) < height; r++ {
		lines = append(lines, renderRow(nodes[r], r == i, width))
	}
	return strings.Join(lines, "\n")
}

func (s *MapScreen) adjustScroll(cursor, height int) {
	if height <= 0 {
		return
	}
	if cursor < s.scrollOffset {
		s.scrollOffset = cursor
	}
	if cursor >= s.scrollOffset+height {
		s.scrollOffset = cursor - height + 1
	}
}

func renderRow(n graphview.Node, selected bool, width int) string {
	marker := "  "
	switch {
	case n.Expandable && n.Expanded:
		marker = "▾ "
	case n.Expandable:
		marker = "▸ "
	}
	cursor := "  "
	if selected {
		cursor = "› "
	}

	indent := strings.Repeat("  ", n.Depth)
	bar := components.MiniBar(n.Progress, 10)
	pct := fmt.Sprintf("%3.0f%%", n.Progress)
	kind := n.Type.DisplayName()

	fixed := 2 + len(indent) + 2 + 3 + 12 + 12 + 6
	nameWidth := max(width-fixed, 10)
	name := fmt.Sprintf("%-*s", nameWidth, components.Truncate(n.Label, nameWidth))

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color))
	if selected {
		style = style.Bold(true).Background(theme.BgCard)
	}
	return cursor + indent + marker + n.Status.Icon() + " " + style.Render(name) +
		theme.Dim.Render(fmt.Sprintf(" %-11s", kind)) + " " + style.Render(bar+" "+pct)
}

func (s *MapScreen) Title() string {
	return "Roadmap"
}

func (s *MapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Space/←→", Description: "Expand"},
		{Key: "e/c", Description: "All"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}
