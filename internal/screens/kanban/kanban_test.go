package kanban

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/progress"
	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/router"
	"github.com/abhisek/roadmapper/internal/store"
)

func newShell(t *testing.T) *dashboard.Shell {
	t.Helper()
	g := roadmap.NewGraph(roadmap.Data{Items: map[string]roadmap.Item{
		"embeddings": {Label: "Embeddings", NodeType: roadmap.NodeTopic},
		"vector-db":  {Label: "Vector Databases", NodeType: roadmap.NodeTopic, Prerequisites: []string{"embeddings"}},
	}})
	p, err := progress.Open(context.Background(), store.NewMemoryKV())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Set(context.Background(), "embeddings", 40); err != nil {
		t.Fatal(err)
	}
	s := dashboard.New(g, p)
	t.Cleanup(func() {
		s.Close()
		p.Close()
	})
	return s
}

var (
	right = tea.KeyPressMsg{Code: tea.KeyRight}
	left  = tea.KeyPressMsg{Code: tea.KeyLeft}
	down  = tea.KeyPressMsg{Code: tea.KeyDown}
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
)

func TestBoard_Title(t *testing.T) {
	if got := New(newShell(t)).Title(); got != "Kanban" {
		t.Errorf("Title = %q", got)
	}
}

func TestBoard_Navigation(t *testing.T) {
	b := New(newShell(t))

	id, ok := b.Selected()
	if !ok || id != "embeddings" {
		t.Fatalf("initial selection = %q, %v; want embeddings", id, ok)
	}

	b.Update(right)
	if _, ok := b.Selected(); ok {
		t.Error("To Do column should be empty")
	}

	// In Progress, To Do, Needs Review, Completed, Locked.
	for range 3 {
		b.Update(right)
	}
	id, ok = b.Selected()
	if !ok || id != "vector-db" {
		t.Errorf("Locked column selection = %q, %v; want vector-db", id, ok)
	}

	b.Update(down)
	if id, _ := b.Selected(); id != "vector-db" {
		t.Errorf("down past the last card should clamp, got %q", id)
	}

	for range 10 {
		b.Update(left)
	}
	if b.col != 0 {
		t.Errorf("col = %d, want 0", b.col)
	}
}

func TestBoard_SelectionFollowsProgress(t *testing.T) {
	shell := newShell(t)
	b := New(shell)
	b.Update(down)

	if err := shell.Progress().Set(context.Background(), "embeddings", 100); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Selected(); ok {
		t.Error("In Progress column should now be empty")
	}
}

func TestBoard_EnterOpensDetail(t *testing.T) {
	b := New(newShell(t))
	_, cmd := b.Update(enter)
	if cmd == nil {
		t.Fatal("expected command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if push.Screen.Title() != "Embeddings" {
		t.Errorf("opened %q", push.Screen.Title())
	}
}

func TestBoard_ViewScrollsColumns(t *testing.T) {
	b := New(newShell(t))

	narrow := b.View(80, 20)
	if !strings.Contains(narrow, "columns 1-3 of 6") {
		t.Errorf("narrow board should scroll:\n%s", narrow)
	}
	if !strings.Contains(narrow, "Embeddings") {
		t.Error("selected card missing")
	}

	wide := b.View(200, 20)
	if strings.Contains(wide, "columns") {
		t.Error("wide board should show every column")
	}
	if !strings.Contains(wide, "Vector Databases") {
		t.Error("Locked column card missing")
	}
}
