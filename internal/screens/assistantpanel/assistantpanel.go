// Package assistantpanel lets the learner ask the model questions about the
// roadmap from inside the terminal.
package assistantpanel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/abhisek/roadmapper/internal/assistant"
	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/external"
	"github.com/abhisek/roadmapper/internal/llm"
	"github.com/abhisek/roadmapper/internal/router"
	"github.com/abhisek/roadmapper/internal/screen"
	"github.com/abhisek/roadmapper/internal/screens/itemdetail"
	"github.com/abhisek/roadmapper/internal/ui/components"
	"github.com/abhisek/roadmapper/internal/ui/layout"
	"github.com/abhisek/roadmapper/internal/ui/theme"
)

type answerMsg struct {
	answer *assistant.Answer
	err    error
}

type suggestionMsg struct {
	suggestion *assistant.Suggestion
	err        error
}

// PanelScreen is a prompt box above the last answer. Answers are markdown
// and rendered with glamour.
type PanelScreen struct {
	svc   *assistant.Service
	shell *dashboard.Shell
	input components.TextInput

	pending    bool
	question   string
	answer     string
	suggestion *assistant.Suggestion
	err        error

	rendered      string
	renderedWidth int
}

var _ screen.Screen = (*PanelScreen)(nil)
var _ screen.KeyHintProvider = (*PanelScreen)(nil)

func New(svc *assistant.Service, shell *dashboard.Shell) *PanelScreen {
	return &PanelScreen{
		svc:   svc,
		shell: shell,
		input: components.NewTextInput("Ask about the roadmap…", 500, 60),
	}
}

func (p *PanelScreen) Init() tea.Cmd { return p.input.Init() }

func (p *PanelScreen) Title() string { return "Assistant" }

func (p *PanelScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case answerMsg:
		p.pending = false
		p.err = msg.err
		if msg.err == nil {
			p.setAnswer(msg.answer.Text)
		}
		return p, nil

	case suggestionMsg:
		p.pending = false
		p.err = msg.err
		if msg.err == nil {
			p.suggestion = msg.suggestion
			p.setAnswer(fmt.Sprintf("**Next up: %s** (%.0f%% done)\n\n%s",
				msg.suggestion.Label, msg.suggestion.Progress, msg.suggestion.Reason))
		}
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return p, p.ask()
		case "ctrl+s":
			return p, p.suggest()
		case "ctrl+o":
			return p, p.openSuggestion()
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *PanelScreen) ask() tea.Cmd {
	q := p.input.Value()
	if q == "" || p.pending || p.svc == nil {
		return nil
	}
	p.pending = true
	p.question = q
	p.err = nil
	p.suggestion = nil
	p.input.Reset()
	svc := p.svc
	return func() tea.Msg {
		ans, err := svc.Ask(context.Background(), q)
		return answerMsg{answer: ans, err: err}
	}
}

func (p *PanelScreen) suggest() tea.Cmd {
	if p.pending || p.svc == nil {
		return nil
	}
	p.pending = true
	p.question = "What should I work on next?"
	p.err = nil
	svc, shell := p.svc, p.shell
	return func() tea.Msg {
		s, err := svc.SuggestNext(context.Background(), shell)
		return suggestionMsg{suggestion: s, err: err}
	}
}

func (p *PanelScreen) openSuggestion() tea.Cmd {
	if p.suggestion == nil {
		return nil
	}
	d, err := itemdetail.New(p.shell, p.suggestion.ItemID)
	if err != nil {
		return nil
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: d} }
}

func (p *PanelScreen) setAnswer(md string) {
	p.answer = md
	p.rendered = ""
	p.renderedWidth = 0
}

// render caches the glamour output per width.
func (p *PanelScreen) render(width int) string {
	if p.answer == "" {
		return ""
	}
	if p.rendered != "" && p.renderedWidth == width {
		return p.rendered
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	out := p.answer
	if err == nil {
		if s, rerr := r.Render(p.answer); rerr == nil {
			out = strings.TrimRight(s, "\n")
		}
	}
	p.rendered, p.renderedWidth = out, width
	return out
}

// Answer returns the raw markdown of the last answer.
func (p *PanelScreen) Answer() string { return p.answer }

// Pending reports whether a request is in flight.
func (p *PanelScreen) Pending() bool { return p.pending }

func (p *PanelScreen) View(width, height int) string {
	cw := max(width-6, 20)

	var b strings.Builder
	b.WriteString("\n  " + p.input.View() + "\n\n")

	if p.question != "" {
		b.WriteString(theme.Section.Render("  "+components.Truncate(p.question, cw)) + "\n\n")
	}

	switch {
	case p.pending:
		b.WriteString(theme.Hint.Render("  Thinking…"))
	case p.err != nil:
		b.WriteString(theme.Warn.Render("  " + describeErr(p.err)))
	case p.answer != "":
		b.WriteString(p.render(cw))
	default:
		b.WriteString(theme.Hint.Render("  Enter asks a question. Ctrl+S suggests what to study next."))
	}

	return lipgloss.NewStyle().MaxHeight(height).Render(b.String())
}

func describeErr(err error) string {
	var se *external.ServiceError
	var rejected *llm.ErrRejected
	switch {
	case errors.Is(err, assistant.ErrNothingActionable):
		return "Nothing is in progress or ready to start."
	case errors.As(err, &rejected):
		return "The model refused the request. Check the API key and model name in the llm config."
	case errors.As(err, &se):
		return "The model could not be reached: " + se.Err.Error()
	default:
		return err.Error()
	}
}

func (p *PanelScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Ask"},
		{Key: "Ctrl+S", Description: "Suggest next"},
	}
	if p.suggestion != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+O", Description: "Open"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}
