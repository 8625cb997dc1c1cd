package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/external"
	"github.com/abhisek/roadmapper/internal/status"
	"github.com/abhisek/roadmapper/internal/ui/components"
	"github.com/abhisek/roadmapper/internal/ui/layout"
	"github.com/abhisek/roadmapper/internal/ui/theme"
)

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompact(width, height)
	cw := components.ContentWidth(width)
	stats := h.shell.Stats()

	var sections []string
	sections = append(sections, renderStats(stats, cw))
	sections = append(sections, components.NewProgressBar("Overall", stats.Percent, true, cw).View())

	switch h.shell.View() {
	case dashboard.ViewGraph:
		sections = append(sections, h.renderRoots(cw))
	case dashboard.ViewKanban:
		sections = append(sections, h.renderColumns(cw))
	default:
		sections = append(sections, h.renderContinue(cw))
	}

	if h.sync != nil && h.sync.Enabled() && !compact {
		sections = append(sections, h.renderSync(cw))
	}
	sections = append(sections, h.menu.View())

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, "\n"+content)
}

func renderStats(s dashboard.Stats, cw int) string {
	part := func(st status.Status, n int) string {
		return theme.StatusStyle(st).Render(fmt.Sprintf("%s %d %s", st.Icon(), n, st.Label()))
	}
	parts := []string{
		part(status.Completed, s.Completed),
		part(status.InProgress, s.InProgress),
		part(status.Todo, s.Todo),
		part(status.Locked, s.Locked),
	}
	if s.NeedsReview > 0 {
		parts = append(parts, part(status.NeedsReview, s.NeedsReview))
	}
	if s.Broken > 0 {
		parts = append(parts, part(status.Broken, s.Broken))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(parts, "  "))
}

func (h *HomeScreen) renderContinue(cw int) string {
	next := h.shell.Next(continueLimit)
	if len(next) == 0 {
		return components.Card("Continue", theme.Dim.Render("Nothing to pick up. Every unlocked item is done."), cw)
	}
	proj := h.shell.Projection()
	var lines []string
	for i, c := range next {
		st := proj.Status(c.ID)
		label := components.Truncate(c.Label, cw-24)
		line := fmt.Sprintf("%d  %s %-*s %s %3.0f%%",
			i+1, st.Icon(), cw-24, label, components.MiniBar(c.Progress, 8), c.Progress)
		lines = append(lines, theme.StatusStyle(st).Render(line))
	}
	return components.Card("Continue", strings.Join(lines, "\n"), cw)
}

func (h *HomeScreen) renderRoots(cw int) string {
	g := h.shell.Graph()
	proj := h.shell.Projection()
	p := h.shell.Progress()
	var lines []string
	for _, it := range g.Roots() {
		st := proj.Status(it.ID)
		label := components.Truncate(it.Label, cw-18)
		lines = append(lines, theme.StatusStyle(st).Render(
			fmt.Sprintf("%s %-*s %s", st.Icon(), cw-18, label, components.MiniBar(p.Get(it.ID), 10))))
	}
	return components.Card("Roadmap", strings.Join(lines, "\n"), cw)
}

func (h *HomeScreen) renderColumns(cw int) string {
	var parts []string
	for _, col := range h.shell.Kanban() {
		parts = append(parts, theme.StatusStyle(col.Status).Render(fmt.Sprintf("%s %d", col.Label, len(col.Cards))))
	}
	return components.Card("Board", strings.Join(parts, "  ·  "), cw)
}

func (h *HomeScreen) renderSync(cw int) string {
	var body string
	switch {
	case !h.syncLoaded:
		body = theme.Dim.Render("Checking…")
	case h.syncErr != nil:
		msg := "Sync service unavailable"
		if !external.Is(h.syncErr) {
			msg = h.syncErr.Error()
		}
		body = theme.Warn.Render("⚠ " + msg)
	default:
		st := h.syncStatus
		body = theme.Body.Render(fmt.Sprintf("%s · %s", st.Status, st.ActiveModel)) + "\n" +
			components.NewProgressBar("", st.Progress, true, cw-4).View()
	}
	return components.Card("Sync", body, cw)
}
