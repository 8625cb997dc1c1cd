package home

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/roadmapper/internal/assistant"
	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/router"
	"github.com/abhisek/roadmapper/internal/screen"
	"github.com/abhisek/roadmapper/internal/screens/assistantpanel"
	"github.com/abhisek/roadmapper/internal/screens/itemdetail"
	"github.com/abhisek/roadmapper/internal/screens/kanban"
	"github.com/abhisek/roadmapper/internal/screens/roadmapmap"
	"github.com/abhisek/roadmapper/internal/syncstatus"
	"github.com/abhisek/roadmapper/internal/ui/components"
	"github.com/abhisek/roadmapper/internal/ui/layout"
)

// continueLimit is how many actionable items the home screen lists.
const continueLimit = 3

type syncResultMsg struct {
	status *syncstatus.Status
	err    error
}

// Options carries the optional collaborators of the home screen.
type Options struct {
	Assistant *assistant.Service
	Sync      *syncstatus.Client
}

// HomeScreen is the dashboard overview: headline stats, the completion bar,
// what to continue with, the sync card and the main menu.
type HomeScreen struct {
	shell *dashboard.Shell
	sync  *syncstatus.Client
	menu  components.Menu

	syncStatus *syncstatus.Status
	syncErr    error
	syncLoaded bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the home screen.
func New(shell *dashboard.Shell, opts Options) *HomeScreen {
	items := []components.MenuItem{
		{Label: "Roadmap Graph", Action: func() tea.Cmd {
			return push(roadmapmap.New(shell))
		}},
		{Label: "Kanban Board", Action: func() tea.Cmd {
			return push(kanban.New(shell))
		}},
		{Label: "Assistant", Disabled: opts.Assistant == nil, Action: func() tea.Cmd {
			return push(assistantpanel.New(opts.Assistant, shell))
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		shell: shell,
		sync:  opts.Sync,
		menu:  components.NewMenu(items),
	}
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.fetchSync()
}

func (h *HomeScreen) fetchSync() tea.Cmd {
	if h.sync == nil || !h.sync.Enabled() {
		return nil
	}
	c := h.sync
	return func() tea.Msg {
		st, err := c.Fetch(context.Background())
		return syncResultMsg{status: st, err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case syncResultMsg:
		h.syncLoaded = true
		h.syncErr = msg.err
		if msg.err == nil {
			h.syncStatus = msg.status
		}
		return h, nil

	case screen.RefreshMsg:
		return h, h.fetchSync()

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "tab":
			h.shell.ToggleView()
			return h, nil
		case "1", "2", "3":
			return h, h.openContinue(int(key[0] - '1'))
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) openContinue(i int) tea.Cmd {
	next := h.shell.Next(continueLimit)
	if i < 0 || i >= len(next) {
		return nil
	}
	d, err := itemdetail.New(h.shell, next[i].ID)
	if err != nil {
		return nil
	}
	return push(d)
}

func (h *HomeScreen) Title() string {
	return "Dashboard"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "1-3", Description: "Continue"},
		{Key: "Tab", Description: "View"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
