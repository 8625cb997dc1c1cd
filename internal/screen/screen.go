// Package screen defines the contract between the router and the screens
// it stacks, plus the messages screens use to report background work.
package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/roadmapper/internal/progress"
	"github.com/abhisek/roadmapper/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// ProgressSavedMsg reports the outcome of a progress update run as a
// command. Err is non-nil for persistence failures, in which case the value
// is held in memory only.
type ProgressSavedMsg struct {
	ID  string
	Err error
}

// RefreshMsg is sent on a timer so time-dependent state such as due
// reviews is re-projected.
type RefreshMsg struct{}

// ResumedMsg is delivered to a screen when the screen above it is popped.
type ResumedMsg struct{}

// SetProgress returns a command that writes value for id and reports the
// result as a ProgressSavedMsg. Writes run off the update loop because the
// store notifies subscribers synchronously.
func SetProgress(p *progress.Store, id string, value float64) tea.Cmd {
	return func() tea.Msg {
		err := p.Set(context.Background(), id, value)
		return ProgressSavedMsg{ID: id, Err: err}
	}
}
