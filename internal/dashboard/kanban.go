package dashboard

import (
	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/status"
)

// Card is one item on the board.
type Card struct {
	ID            string             `json:"id"`
	Label         string             `json:"label"`
	Type          roadmap.NodeType   `json:"type"`
	Difficulty    roadmap.Difficulty `json:"difficulty,omitempty"`
	EstimatedTime string             `json:"estimatedTime,omitempty"`
	Progress      float64            `json:"progress"`
}

// Column groups the cards of one status.
type Column struct {
	Status status.Status `json:"status"`
	Label  string        `json:"label"`
	Cards  []Card        `json:"cards"`
}

// Kanban groups every item by status. Columns follow status.All and are
// present even when empty; cards within a column are in topological order.
func (s *Shell) Kanban() []Column {
	proj := s.Projection()
	cols := make([]Column, 0, len(status.All()))
	index := make(map[status.Status]int)
	for _, st := range status.All() {
		index[st] = len(cols)
		cols = append(cols, Column{Status: st, Label: st.Label(), Cards: []Card{}})
	}

	for _, it := range s.graph.Items() {
		i, ok := index[proj.Status(it.ID)]
		if !ok {
			continue
		}
		cols[i].Cards = append(cols[i].Cards, s.card(it))
	}
	return cols
}

// Next returns up to n actionable items: in-progress ones first, then those
// ready to start, each group in topological order.
func (s *Shell) Next(n int) []Card {
	if n <= 0 {
		return nil
	}
	proj := s.Projection()
	var started, ready []Card
	for _, it := range s.graph.Items() {
		switch proj.Status(it.ID) {
		case status.InProgress:
			started = append(started, s.card(it))
		case status.Todo:
			ready = append(ready, s.card(it))
		}
	}
	out := append(started, ready...)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *Shell) card(it roadmap.Item) Card {
	return Card{
		ID:            it.ID,
		Label:         it.Label,
		Type:          it.NodeType,
		Difficulty:    it.Difficulty,
		EstimatedTime: it.EstimatedTime,
		Progress:      s.progress.Get(it.ID),
	}
}
