// Package app runs the terminal dashboard.
package app

import (
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/roadmapper/internal/assistant"
	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/router"
	"github.com/abhisek/roadmapper/internal/screen"
	"github.com/abhisek/roadmapper/internal/screens/home"
	"github.com/abhisek/roadmapper/internal/syncstatus"
	"github.com/abhisek/roadmapper/internal/ui/layout"
)

// RefreshInterval is how often time-dependent state is re-projected.
const RefreshInterval = 30 * time.Second

// Options holds the dependencies the screens need.
type Options struct {
	Shell     *dashboard.Shell
	Assistant *assistant.Service
	Sync      *syncstatus.Client
	Logger    *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	shell  *dashboard.Shell
	logger *zap.Logger
	width  int
	height int
}

// NewAppModel creates the root model with the home screen.
func NewAppModel(opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	homeScreen := home.New(opts.Shell, home.Options{
		Assistant: opts.Assistant,
		Sync:      opts.Sync,
	})
	return AppModel{
		router: router.New(homeScreen),
		shell:  opts.Shell,
		logger: logger,
	}
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(time.Time) tea.Msg { return screen.RefreshMsg{} })
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), tick())
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}

	case screen.RefreshMsg:
		m.shell.Refresh()
		return m, tea.Batch(m.router.Update(msg), tick())

	case screen.ProgressSavedMsg:
		if msg.Err != nil {
			m.logger.Error("progress update", zap.String("item", msg.ID), zap.Error(msg.Err))
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	stats := m.shell.Stats()
	header := layout.RenderHeader(title, stats.Percent, stats.NeedsReview, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	if opts.Shell == nil {
		return fmt.Errorf("app: dashboard shell is required")
	}
	p := tea.NewProgram(NewAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
