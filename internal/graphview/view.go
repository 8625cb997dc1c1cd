package graphview

import (
	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/status"
)

// EdgeKind distinguishes the two relations drawn on the map.
type EdgeKind string

const (
	EdgeChild        EdgeKind = "child"
	EdgePrerequisite EdgeKind = "prerequisite"
)

// Node is the visual descriptor of one visible roadmap item.
type Node struct {
	ID            string             `json:"id"`
	Label         string             `json:"label"`
	Type          roadmap.NodeType   `json:"type"`
	Difficulty    roadmap.Difficulty `json:"difficulty,omitempty"`
	EstimatedTime string             `json:"estimatedTime,omitempty"`
	Status        status.Status      `json:"status"`
	Style         Style              `json:"style"`
	Color         string             `json:"color"`
	Progress      float64            `json:"progress"`
	Depth         int                `json:"depth"`
	Expandable    bool               `json:"expandable"`
	Expanded      bool               `json:"expanded"`
	Broken        bool               `json:"broken,omitempty"`
	X             int                `json:"x"`
	Y             int                `json:"y"`
}

// Edge connects two visible nodes. For prerequisite edges From is the
// prerequisite.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// View is the renderable map: visible nodes in display order plus the
// edges among them.
type View struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build walks g from its roots depth-first in child order and emits a node
// for every visible item. Children of collapsed items are hidden. An item
// reachable through several parents appears once, under the first parent
// visited. Layout is layered: X is the tree depth and Y the row.
func Build(g *roadmap.Graph, proj *status.Projection, p status.Progress, exp *Expansion) *View {
	v := &View{Nodes: []Node{}, Edges: []Edge{}}
	visible := make(map[string]bool)
	integrity := g.Integrity()

	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if visible[id] {
			return
		}
		it, err := g.Item(id)
		if err != nil {
			return
		}
		visible[id] = true

		st := proj.Status(id)
		style := StyleFor(st)
		expanded := it.HasChildren() && exp.IsExpanded(id)
		v.Nodes = append(v.Nodes, Node{
			ID:            id,
			Label:         it.Label,
			Type:          it.NodeType,
			Difficulty:    it.Difficulty,
			EstimatedTime: it.EstimatedTime,
			Status:        st,
			Style:         style,
			Color:         style.Color(),
			Progress:      p.Get(id),
			Depth:         depth,
			Expandable:    it.HasChildren(),
			Expanded:      expanded,
			Broken:        integrity.Broken(id),
			X:             depth,
			Y:             len(v.Nodes),
		})

		if !expanded {
			return
		}
		for _, child := range g.Children(id) {
			if visible[child.ID] {
				continue
			}
			v.Edges = append(v.Edges, Edge{From: id, To: child.ID, Kind: EdgeChild})
			walk(child.ID, depth+1)
		}
	}

	for _, r := range g.Roots() {
		walk(r.ID, 0)
	}

	for _, n := range v.Nodes {
		for _, prereq := range g.Prerequisites(n.ID) {
			if visible[prereq.ID] {
				v.Edges = append(v.Edges, Edge{From: prereq.ID, To: n.ID, Kind: EdgePrerequisite})
			}
		}
	}
	return v
}

// Node returns the node for id and whether it is visible.
func (v *View) Node(id string) (Node, bool) {
	for _, n := range v.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
