package graphview

import (
	"sort"
	"sync"

	"github.com/abhisek/roadmapper/internal/roadmap"
)

// Expansion is the client-side expand/collapse state of the map. It is
// never persisted and never touches progress.
type Expansion struct {
	mu       sync.RWMutex
	expanded map[string]bool
}

// NewExpansion returns an Expansion with ids expanded.
func NewExpansion(ids ...string) *Expansion {
	e := &Expansion{expanded: make(map[string]bool, len(ids))}
	for _, id := range ids {
		e.expanded[id] = true
	}
	return e
}

// RootsExpanded returns an Expansion with every root of g expanded.
func RootsExpanded(g *roadmap.Graph) *Expansion {
	e := NewExpansion()
	for _, r := range g.Roots() {
		e.expanded[r.ID] = true
	}
	return e
}

// IsExpanded reports whether id is expanded. A nil Expansion has nothing
// expanded.
func (e *Expansion) IsExpanded(id string) bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.expanded[id]
}

// Toggle flips id and returns its new state.
func (e *Expansion) Toggle(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expanded[id] = !e.expanded[id]
	if !e.expanded[id] {
		delete(e.expanded, id)
		return false
	}
	return true
}

func (e *Expansion) Expand(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expanded[id] = true
}

func (e *Expansion) Collapse(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.expanded, id)
}

// ExpandAll expands every item of g that has children.
func (e *Expansion) ExpandAll(g *roadmap.Graph) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, it := range g.Items() {
		if it.HasChildren() {
			e.expanded[it.ID] = true
		}
	}
}

func (e *Expansion) CollapseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expanded = make(map[string]bool)
}

// IDs returns the expanded ids, sorted.
func (e *Expansion) IDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.expanded))
	for id := range e.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
