package status

import (
	"github.com/abhisek/roadmapper/internal/roadmap"
)

// Overrides are externally supplied statuses layered on top of the derived
// ones. Only NeedsReview is honoured, and only for completed items.
type Overrides map[string]Status

// Counts tallies items per status.
type Counts map[Status]int

// Summary is the headline completion figure.
type Summary struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
}

// Projection is the status of every item for one progress state. It is
// computed in a single O(items) pass and never mutated afterwards.
type Projection struct {
	statuses map[string]Status
	counts   Counts
}

// Project computes the status of every item in g.
func Project(g *roadmap.Graph, p Progress, o Overrides) *Projection {
	proj := &Projection{
		statuses: make(map[string]Status, g.Len()),
		counts:   make(Counts),
	}
	integrity := g.Integrity()
	for _, it := range g.Items() {
		s := Derive(it, p, g)
		if s == Completed && o[it.ID] == NeedsReview {
			s = NeedsReview
		}
		if integrity.Broken(it.ID) {
			s = Broken
		}
		proj.statuses[it.ID] = s
		proj.counts[s]++
	}
	return proj
}

// Status returns the projected status of id. Unknown ids are Locked.
func (p *Projection) Status(id string) Status {
	if s, ok := p.statuses[id]; ok {
		return s
	}
	return Locked
}

// Counts returns a copy of the per-status tallies.
func (p *Projection) Counts() Counts {
	out := make(Counts, len(p.counts))
	for k, v := range p.counts {
		out[k] = v
	}
	return out
}

// Summary reports overall completion. Items needing review still count as
// completed.
func (p *Projection) Summary() Summary {
	total := len(p.statuses)
	done := p.counts[Completed] + p.counts[NeedsReview]
	var pct float64
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}
	return Summary{Total: total, Completed: done, Percent: pct}
}

// Len returns the number of projected items.
func (p *Projection) Len() int {
	return len(p.statuses)
}
