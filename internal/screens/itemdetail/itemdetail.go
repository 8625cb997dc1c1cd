// Package itemdetail shows one roadmap item and edits its progress.
package itemdetail

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/progress"
	"github.com/abhisek/roadmapper/internal/review"
	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/router"
	"github.com/abhisek/roadmapper/internal/screen"
	"github.com/abhisek/roadmapper/internal/status"
	"github.com/abhisek/roadmapper/internal/ui/components"
	"github.com/abhisek/roadmapper/internal/ui/layout"
	"github.com/abhisek/roadmapper/internal/ui/theme"
)

// Step is how much + and - move progress.
const Step = 10.0

type reviewedMsg struct {
	id  string
	err error
}

// DetailScreen shows an item's metadata, its prerequisites with their
// statuses, what it unlocks and its resources.
type DetailScreen struct {
	shell *dashboard.Shell
	item  roadmap.Item

	// links are the prerequisite and child ids that enter can open.
	links  []string
	cursor int

	flash      string
	flashIsErr bool
}

var _ screen.Screen = (*DetailScreen)(nil)
var _ screen.KeyHintProvider = (*DetailScreen)(nil)

// New returns the detail screen for id, or roadmap.ErrUnknownItem.
func New(shell *dashboard.Shell, id string) (*DetailScreen, error) {
	it, err := shell.Graph().Item(id)
	if err != nil {
		return nil, err
	}
	d := &DetailScreen{shell: shell, item: it}
	g := shell.Graph()
	for _, p := range g.Prerequisites(id) {
		d.links = append(d.links, p.ID)
	}
	for _, c := range g.Children(id) {
		d.links = append(d.links, c.ID)
	}
	return d, nil
}

func (d *DetailScreen) Init() tea.Cmd { return nil }

func (d *DetailScreen) Title() string { return d.item.Label }

func (d *DetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ProgressSavedMsg:
		if msg.ID != d.item.ID {
			return d, nil
		}
		d.flashIsErr = msg.Err != nil
		switch {
		case msg.Err == nil:
			d.flash = fmt.Sprintf("Saved · %.0f%%", d.value())
		case errors.As(msg.Err, new(*progress.PersistError)):
			d.flash = "Not saved to disk, kept for this session: " + msg.Err.Error()
		default:
			d.flash = msg.Err.Error()
		}
		return d, nil

	case reviewedMsg:
		d.flashIsErr = msg.err != nil
		switch {
		case msg.err == nil:
			d.flash = "Marked as reviewed"
		case errors.Is(msg.err, review.ErrNotTracked):
			d.flash = "Nothing to review yet. Complete the item first."
		default:
			d.flash = msg.err.Error()
		}
		return d, nil

	case tea.KeyMsg:
		return d, d.handleKey(msg.String())
	}
	return d, nil
}

func (d *DetailScreen) handleKey(key string) tea.Cmd {
	p := d.shell.Progress()
	id := d.item.ID
	switch key {
	case "+", "=":
		return screen.SetProgress(p, id, d.value()+Step)
	case "-", "_":
		return screen.SetProgress(p, id, d.value()-Step)
	case "c":
		return screen.SetProgress(p, id, status.CompleteAt)
	case "0":
		return screen.SetProgress(p, id, 0)
	case "r":
		rv := d.shell.Reviews()
		if rv == nil {
			d.flash, d.flashIsErr = "Reviews are turned off", true
			return nil
		}
		return func() tea.Msg {
			return reviewedMsg{id: id, err: rv.MarkReviewed(context.Background(), id)}
		}
	case "up", "k":
		if d.cursor > 0 {
			d.cursor--
		}
	case "down", "j":
		if d.cursor < len(d.links)-1 {
			d.cursor++
		}
	case "enter":
		if d.cursor < len(d.links) {
			next, err := New(d.shell, d.links[d.cursor])
			if err != nil {
				return nil
			}
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	case "q":
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	return nil
}

func (d *DetailScreen) value() float64 {
	return d.shell.Progress().Get(d.item.ID)
}

func (d *DetailScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "+/-", Description: "±10%"},
		{Key: "c", Description: "Complete"},
		{Key: "0", Description: "Reset"},
	}
	if d.shell.Reviews() != nil {
		hints = append(hints, layout.KeyHint{Key: "r", Description: "Reviewed"})
	}
	if len(d.links) > 0 {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Open"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (d *DetailScreen) View(width, height int) string {
	it := d.item
	g := d.shell.Graph()
	proj := d.shell.Projection()
	st := proj.Status(it.ID)
	cw := min(width-8, 76)

	var b strings.Builder

	b.WriteString(theme.StatusStyle(st).Bold(true).Render(fmt.Sprintf("  %s  %s", st.Icon(), it.Label)))
	b.WriteString("\n")
	b.WriteString(theme.Dim.Render("  " + st.Label()))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("", d.value(), true, cw)
	bar.Fill = theme.StatusColor(st)
	b.WriteString("  " + bar.View() + "\n\n")

	if it.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(cw).PaddingLeft(2).Foreground(theme.Text).Render(it.Description))
		b.WriteString("\n\n")
	}

	meta := func(k, v string) {
		if v != "" {
			b.WriteString(theme.Dim.Render(fmt.Sprintf("  %-11s", k)) + theme.Body.Render(v) + "\n")
		}
	}
	meta("Type:", it.NodeType.DisplayName())
	meta("Difficulty:", string(it.Difficulty))
	meta("Time:", it.EstimatedTime)
	if rv := d.shell.Reviews(); rv != nil {
		if rs := rv.State(it.ID); rs != nil {
			meta("Review:", reviewLine(rs, rv.Now()))
		}
	}
	for _, p := range g.Integrity().For(it.ID) {
		b.WriteString(theme.Failure.Render("  ⚠ "+p.Error()) + "\n")
	}
	b.WriteString("\n")

	link := 0
	section := func(title string, items []roadmap.Item) {
		if len(items) == 0 {
			return
		}
		b.WriteString(theme.Section.Render("  "+title) + "\n")
		for _, x := range items {
			xs := proj.Status(x.ID)
			cursor := "  "
			if link == d.cursor {
				cursor = "› "
			}
			b.WriteString(cursor + theme.StatusStyle(xs).Render(fmt.Sprintf("%s %s", xs.Icon(), x.Label)) +
				theme.Dim.Render(fmt.Sprintf("  %s", xs.Label())) + "\n")
			link++
		}
		b.WriteString("\n")
	}
	section("Prerequisites", g.Prerequisites(it.ID))
	section("Contains", g.Children(it.ID))

	if deps := g.Dependents(it.ID); len(deps) > 0 {
		b.WriteString(theme.Section.Render("  Unlocks") + "\n")
		for _, dep := range deps {
			b.WriteString(theme.Dim.Render("  → "+dep.Label) + "\n")
		}
		b.WriteString("\n")
	}

	if len(it.ResourceURLs) > 0 {
		b.WriteString(theme.Section.Render("  Resources") + "\n")
		for _, u := range it.ResourceURLs {
			b.WriteString(theme.Body.Render("  • "+u) + "\n")
		}
		b.WriteString("\n")
	}

	if d.flash != "" {
		style := theme.Dim
		if d.flashIsErr {
			style = theme.Warn
		}
		b.WriteString(style.Render("  " + d.flash))
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "\n"+b.String())
}

func reviewLine(rs *review.State, now time.Time) string {
	next := rs.NextReviewDate.Local().Format("Jan 2")
	switch rs.Status(now) {
	case review.Overdue:
		return fmt.Sprintf("stage %d, overdue since %s", rs.Stage, next)
	case review.Due:
		return fmt.Sprintf("stage %d, due now", rs.Stage)
	case review.Graduated:
		return "graduated, next " + next
	}
	days := int(math.Ceil(rs.DueIn(now).Hours() / 24))
	return fmt.Sprintf("stage %d, next %s (in %dd)", rs.Stage, next, days)
}
