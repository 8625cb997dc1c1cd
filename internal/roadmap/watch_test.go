package roadmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type loaded struct {
	g   *Graph
	err error
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roadmap.jsonc")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(`{"schemaVersion": "v1", "items": [{"id": "a", "label": "A", "nodeType": "topic"}]}`)

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan loaded, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(g *Graph, err error) { results <- loaded{g, err} })
	}()

	next := func() loaded {
		t.Helper()
		select {
		case r := <-results:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for reload")
			return loaded{}
		}
	}

	first := next()
	if first.err != nil || first.g.Len() != 1 {
		t.Fatalf("initial load = %v, %v", first.g, first.err)
	}

	write(`{"schemaVersion": "v1", "items": [
		{"id": "a", "label": "A", "nodeType": "topic", "prerequisites": ["ghost"]},
		{"id": "b", "label": "B", "nodeType": "topic"},
	]}`)

	// A reload can observe a half-written file; wait for the final content.
	r := next()
	for r.err != nil || r.g.Len() != 2 {
		r = next()
	}
	if !r.g.Integrity().Broken("a") {
		t.Error("reloaded graph should flag the dangling prerequisite")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "roadmap.json"), func(*Graph, error) {})
	if err == nil {
		t.Error("expected error for a missing directory")
	}
}
