// Package graphview turns the roadmap and its status projection into node
// and edge descriptors for the terminal map and the browser dashboard.
package graphview

import "github.com/abhisek/roadmapper/internal/status"

// Style is the visual treatment of a node.
type Style string

const (
	StyleSuccess      Style = "success"
	StyleWarning      Style = "warning"
	StyleNeutralLight Style = "neutralLight"
	StyleNeutralDark  Style = "neutralDark"
	StyleAttention    Style = "attention"
	StyleDefault      Style = "default"
)

// StyleFor maps a status to its style. Unrecognized statuses get
// StyleDefault.
func StyleFor(s status.Status) Style {
	switch s {
	case status.Completed:
		return StyleSuccess
	case status.InProgress:
		return StyleWarning
	case status.Todo:
		return StyleNeutralLight
	case status.Locked:
		return StyleNeutralDark
	case status.NeedsReview:
		return StyleAttention
	default:
		return StyleDefault
	}
}

// Color returns the hex color for the style.
func (s Style) Color() string {
	switch s {
	case StyleSuccess:
		return "#22C55E"
	case StyleWarning:
		return "#F59E0B"
	case StyleNeutralLight:
		return "#E2E8F0"
	case StyleNeutralDark:
		return "#475569"
	case StyleAttention:
		return "#F43F5E"
	default:
		return "#94A3B8"
	}
}
