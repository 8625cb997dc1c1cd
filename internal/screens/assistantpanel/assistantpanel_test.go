package assistantpanel

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/roadmapper/internal/assistant"
	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/llm"
	"github.com/abhisek/roadmapper/internal/progress"
	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/router"
	"github.com/abhisek/roadmapper/internal/store"
)

func newShell(t *testing.T) *dashboard.Shell {
	t.Helper()
	g := roadmap.NewGraph(roadmap.Data{Items: map[string]roadmap.Item{
		"prompting": {Label: "Prompt Engineering", NodeType: roadmap.NodeTopic},
	}})
	p, err := progress.Open(context.Background(), store.NewMemoryKV())
	if err != nil {
		t.Fatal(err)
	}
	s := dashboard.New(g, p)
	t.Cleanup(func() {
		s.Close()
		p.Close()
	})
	return s
}

func typeText(p *PanelScreen, s string) {
	for _, r := range s {
		p.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// run executes cmd and feeds its message back into the panel.
func run(t *testing.T, p *PanelScreen, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected command")
	}
	p.Update(cmd())
}

func TestPanel_Title(t *testing.T) {
	p := New(nil, newShell(t))
	if p.Title() != "Assistant" {
		t.Errorf("Title = %q", p.Title())
	}
}

func TestPanel_Ask(t *testing.T) {
	svc := assistant.NewService(llm.NewEchoProvider(), assistant.DefaultConfig(), nil)
	p := New(svc, newShell(t))
	p.Init()

	typeText(p, "what is rag")
	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !p.Pending() {
		t.Error("expected pending request")
	}
	if v := p.View(80, 20); !strings.Contains(v, "Thinking") {
		t.Errorf("pending view:\n%s", v)
	}

	run(t, p, cmd)
	if p.Pending() {
		t.Error("request should be finished")
	}
	if got := p.Answer(); got != "You asked: what is rag" {
		t.Errorf("Answer = %q", got)
	}
	if v := p.View(80, 20); !strings.Contains(v, "what is rag") {
		t.Errorf("view should echo the question:\n%s", v)
	}
}

func TestPanel_EmptyPromptIsIgnored(t *testing.T) {
	svc := assistant.NewService(llm.NewEchoProvider(), assistant.DefaultConfig(), nil)
	p := New(svc, newShell(t))
	if _, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("empty prompt should not send a request")
	}
}

func TestPanel_ProviderFailure(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")},
	})
	svc := assistant.NewService(provider, assistant.DefaultConfig(), nil)
	p := New(svc, newShell(t))

	typeText(p, "hi")
	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	run(t, p, cmd)

	v := p.View(100, 20)
	if !strings.Contains(v, "could not be reached") {
		t.Errorf("expected service error:\n%s", v)
	}
	if p.Answer() != "" {
		t.Error("failed request should not set an answer")
	}
}

func TestPanel_RejectedRequestPointsAtConfig(t *testing.T) {
	provider := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrRejected{StatusCode: 401, Err: errors.New("invalid x-api-key")},
	})
	svc := assistant.NewService(provider, assistant.DefaultConfig(), nil)
	p := New(svc, newShell(t))

	typeText(p, "what is rag")
	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	run(t, p, cmd)

	if v := p.View(120, 20); !strings.Contains(v, "refused the request") {
		t.Errorf("expected config hint:\n%s", v)
	}
}

func TestPanel_SuggestAndOpen(t *testing.T) {
	out, _ := json.Marshal(map[string]string{"item_id": "prompting", "reason": "It is the entry point."})
	svc := assistant.NewService(llm.NewMockProvider(llm.MockResponse{Content: out}), assistant.DefaultConfig(), nil)
	p := New(svc, newShell(t))

	_, cmd := p.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	run(t, p, cmd)
	if !strings.Contains(p.Answer(), "Prompt Engineering") {
		t.Errorf("Answer = %q", p.Answer())
	}

	_, cmd = p.Update(tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected open command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok || push.Screen.Title() != "Prompt Engineering" {
		t.Errorf("ctrl+o did not open the suggested item")
	}
}

func TestPanel_NothingActionable(t *testing.T) {
	shell := newShell(t)
	shell.Progress().Set(context.Background(), "prompting", 100)
	svc := assistant.NewService(llm.NewMockProvider(), assistant.DefaultConfig(), nil)
	p := New(svc, shell)

	_, cmd := p.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	run(t, p, cmd)
	if v := p.View(100, 20); !strings.Contains(v, "Nothing is in progress") {
		t.Errorf("view:\n%s", v)
	}
}
