// Package status derives each roadmap item's display status from progress
// and prerequisites.
package status

import (
	"github.com/abhisek/roadmapper/internal/roadmap"
)

// Status is an item's display status.
type Status string

const (
	Locked      Status = "locked"
	Todo        Status = "todo"
	InProgress  Status = "inProgress"
	Completed   Status = "completed"
	NeedsReview Status = "needsReview"

	// Broken marks items flagged by the roadmap integrity check.
	Broken Status = "broken"
)

// All returns every status in board column order.
func All() []Status {
	return []Status{InProgress, Todo, NeedsReview, Completed, Locked, Broken}
}

// Icon returns the display icon for a status.
func (s Status) Icon() string {
	switch s {
	case Locked:
		return "🔒"
	case Todo:
		return "🔓"
	case InProgress:
		return "📖"
	case Completed:
		return "✅"
	case NeedsReview:
		return "🔄"
	case Broken:
		return "⚠️"
	default:
		return "?"
	}
}

// Label returns the display label for a status.
func (s Status) Label() string {
	switch s {
	case Locked:
		return "Locked"
	case Todo:
		return "To Do"
	case InProgress:
		return "In Progress"
	case Completed:
		return "Completed"
	case NeedsReview:
		return "Needs Review"
	case Broken:
		return "Broken"
	default:
		return "Unknown"
	}
}

// Progress is read access to per-item progress values.
type Progress interface {
	Get(id string) float64
}

// Values adapts a plain map to Progress.
type Values map[string]float64

// Get returns v[id], or 0.
func (v Values) Get(id string) float64 {
	return v[id]
}

// CompleteAt is the progress value at which an item counts as completed.
const CompleteAt = 100.0

// Derive computes the status of it. It is pure and total: any progress
// value, any item, any graph yields one of Locked, Todo, InProgress or
// Completed.
//
// Derived completion depends only on the item's own progress, so checking
// prerequisites needs no recursion and terminates on cyclic data.
// Prerequisite ids missing from the graph count as not completed.
func Derive(it roadmap.Item, p Progress, g *roadmap.Graph) Status {
	v := p.Get(it.ID)
	switch {
	case v >= CompleteAt:
		return Completed
	case v > 0:
		return InProgress
	}
	if PrerequisitesMet(it, p, g) {
		return Todo
	}
	return Locked
}

// PrerequisitesMet reports whether every prerequisite of it is completed.
func PrerequisitesMet(it roadmap.Item, p Progress, g *roadmap.Graph) bool {
	for _, prereqID := range it.Prerequisites {
		if g == nil || !g.Has(prereqID) || p.Get(prereqID) < CompleteAt {
			return false
		}
	}
	return true
}
