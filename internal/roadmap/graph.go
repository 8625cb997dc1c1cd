package roadmap

import (
	"fmt"
	"slices"
	"sort"
)

// Graph is an immutable, indexed view over roadmap Data. It is built once
// at load time and shared by reference with every consumer.
type Graph struct {
	items      map[string]*Item
	roots      []string
	parents    map[string][]string
	dependents map[string][]string
	depth      map[string]int
	topoOrder  []string
	topoIndex  map[string]int
	integrity  *IntegrityReport
}

// NewGraph indexes data and runs the integrity check. Problems do not fail
// construction; they are available from Integrity so the affected items can
// be shown as broken.
func NewGraph(data Data) *Graph {
	g := &Graph{
		items:      make(map[string]*Item, len(data.Items)),
		parents:    make(map[string][]string),
		dependents: make(map[string][]string),
		depth:      make(map[string]int, len(data.Items)),
		topoIndex:  make(map[string]int, len(data.Items)),
		integrity:  Check(data),
	}

	for id := range data.Items {
		it := data.Items[id]
		it.ID = id
		g.items[id] = &it
	}

	ids := sortedIDs(data.Items)

	// Reverse edges, keeping only references that resolve.
	for _, id := range ids {
		it := g.items[id]
		for _, childID := range it.ChildrenIDs {
			if _, ok := g.items[childID]; ok {
				g.parents[childID] = append(g.parents[childID], id)
			}
		}
		for _, prereqID := range it.Prerequisites {
			if _, ok := g.items[prereqID]; ok {
				g.dependents[prereqID] = append(g.dependents[prereqID], id)
			}
		}
	}

	// Roots: declared order if given, otherwise items without a parent.
	for _, id := range data.RootItemIDs {
		if _, ok := g.items[id]; ok {
			g.roots = append(g.roots, id)
		}
	}
	if len(g.roots) == 0 {
		for _, id := range ids {
			if len(g.parents[id]) == 0 {
				g.roots = append(g.roots, id)
			}
		}
	}

	g.buildTopoOrder(ids)
	g.buildDepth()
	return g
}

// buildTopoOrder orders items so that prerequisites come first (Kahn's
// algorithm, ties broken by id). Items stuck in a cycle are appended at the
// end in id order so every item still appears exactly once.
func (g *Graph) buildTopoOrder(ids []string) {
	inDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		for _, prereqID := range g.items[id].Prerequisites {
			if _, ok := g.items[prereqID]; ok {
				inDegree[id]++
			}
		}
	}

	var queue []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	seen := make(map[string]bool, len(ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		seen[id] = true
		g.topoOrder = append(g.topoOrder, id)

		deps := slices.Clone(g.dependents[id])
		sort.Strings(deps)
		for _, depID := range deps {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}
	for _, id := range ids {
		if !seen[id] {
			g.topoOrder = append(g.topoOrder, id)
		}
	}
	for i, id := range g.topoOrder {
		g.topoIndex[id] = i
	}
}

// buildDepth assigns each item its shortest distance from a root along
// child edges. Items unreachable from any root get depth 0.
func (g *Graph) buildDepth() {
	queue := slices.Clone(g.roots)
	for _, id := range queue {
		g.depth[id] = 0
	}
	visited := make(map[string]bool, len(g.items))
	for _, id := range queue {
		visited[id] = true
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, childID := range g.items[id].ChildrenIDs {
			if _, ok := g.items[childID]; !ok || visited[childID] {
				continue
			}
			visited[childID] = true
			g.depth[childID] = g.depth[id] + 1
			queue = append(queue, childID)
		}
	}
}

// Item returns an item by ID.
func (g *Graph) Item(id string) (Item, error) {
	it, ok := g.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return *it, nil
}

// Has reports whether id is in the roadmap.
func (g *Graph) Has(id string) bool {
	_, ok := g.items[id]
	return ok
}

// Len returns the number of items.
func (g *Graph) Len() int {
	return len(g.items)
}

// Items returns all items in topological order (prerequisites first).
func (g *Graph) Items() []Item {
	out := make([]Item, 0, len(g.topoOrder))
	for _, id := range g.topoOrder {
		out = append(out, *g.items[id])
	}
	return out
}

// IDs returns all item ids in topological order.
func (g *Graph) IDs() []string {
	return slices.Clone(g.topoOrder)
}

// Roots returns the top-level entry points in declared order.
func (g *Graph) Roots() []Item {
	return g.resolve(g.roots)
}

// Children returns the resolvable children of id in declared order.
func (g *Graph) Children(id string) []Item {
	it, ok := g.items[id]
	if !ok {
		return nil
	}
	return g.resolve(it.ChildrenIDs)
}

// Parents returns the items that list id as a child.
func (g *Graph) Parents(id string) []Item {
	return g.resolve(g.parents[id])
}

// Prerequisites returns the resolvable direct prerequisites of id.
func (g *Graph) Prerequisites(id string) []Item {
	it, ok := g.items[id]
	if !ok {
		return nil
	}
	return g.resolve(it.Prerequisites)
}

// Dependents returns items that directly list id as a prerequisite.
func (g *Graph) Dependents(id string) []Item {
	return g.resolve(g.dependents[id])
}

// Depth returns the child-edge distance of id from its nearest root.
func (g *Graph) Depth(id string) int {
	return g.depth[id]
}

// TopoIndex returns the position of id in topological order, or -1.
func (g *Graph) TopoIndex(id string) int {
	if i, ok := g.topoIndex[id]; ok {
		return i
	}
	return -1
}

// Integrity returns the load-time integrity report.
func (g *Graph) Integrity() *IntegrityReport {
	return g.integrity
}

func (g *Graph) resolve(ids []string) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := g.items[id]; ok {
			out = append(out, *it)
		}
	}
	return out
}
