package app

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/progress"
	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/router"
	"github.com/abhisek/roadmapper/internal/screen"
	"github.com/abhisek/roadmapper/internal/screens/kanban"
	"github.com/abhisek/roadmapper/internal/store"
)

func newShell(t *testing.T) *dashboard.Shell {
	t.Helper()
	g := roadmap.NewGraph(roadmap.Data{Items: map[string]roadmap.Item{
		"python": {Label: "Python", NodeType: roadmap.NodeTopic},
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

func TestAppModel_EscPopsOnlyAboveRoot(t *testing.T) {
	shell := newShell(t)
	m := NewAppModel(Options{Shell: shell})
	esc := tea.KeyPressMsg{Code: tea.KeyEscape}

	if _, cmd := m.Update(esc); cmd != nil {
		t.Error("esc on the root screen should do nothing")
	}

	m.Update(router.PushScreenMsg{Screen: kanban.New(shell)})
	if m.router.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", m.router.Depth())
	}

	_, cmd := m.Update(esc)
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	m.Update(cmd())
	if m.router.Depth() != 1 {
		t.Errorf("depth = %d after pop, want 1", m.router.Depth())
	}
	if m.router.Active().Title() != "Dashboard" {
		t.Errorf("active = %q", m.router.Active().Title())
	}
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := NewAppModel(Options{Shell: newShell(t)})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestAppModel_RefreshReschedules(t *testing.T) {
	m := NewAppModel(Options{Shell: newShell(t)})
	if _, cmd := m.Update(screen.RefreshMsg{}); cmd == nil {
		t.Error("refresh should schedule the next tick")
	}
}

func TestAppModel_LogsFailedSaves(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	m := NewAppModel(Options{Shell: newShell(t), Logger: zap.New(core)})

	m.Update(screen.ProgressSavedMsg{ID: "python", Err: errors.New("disk full")})
	m.Update(screen.ProgressSavedMsg{ID: "python"})

	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["item"]; got != "python" {
		t.Errorf("item field = %v", got)
	}
}

func TestRun_RequiresShell(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Error("expected error without a shell")
	}
}
