package roadmap

// NodeType classifies a roadmap item.
type NodeType string

const (
	NodeTopic       NodeType = "topic"
	NodeSubTopic    NodeType = "subTopic"
	NodeResource    NodeType = "resource"
	NodeProjectIdea NodeType = "projectIdea"
	NodeCategory    NodeType = "category"
)

// AllNodeTypes returns all node types in display order.
func AllNodeTypes() []NodeType {
	return []NodeType{
		NodeCategory,
		NodeTopic,
		NodeSubTopic,
		NodeResource,
		NodeProjectIdea,
	}
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTopic, NodeSubTopic, NodeResource, NodeProjectIdea, NodeCategory:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for a node type.
func (t NodeType) DisplayName() string {
	switch t {
	case NodeTopic:
		return "Topic"
	case NodeSubTopic:
		return "Subtopic"
	case NodeResource:
		return "Resource"
	case NodeProjectIdea:
		return "Project Idea"
	case NodeCategory:
		return "Category"
	default:
		return string(t)
	}
}

// Difficulty is an optional difficulty rating. The zero value means unset.
type Difficulty string

const (
	DifficultyUnset        Difficulty = ""
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is unset or a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyUnset, DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Item is a single learning unit in the roadmap. Items are immutable once
// loaded; the slices must not be modified by callers.
type Item struct {
	ID            string            `json:"id"`
	Label         string            `json:"label"`
	NodeType      NodeType          `json:"nodeType"`
	Difficulty    Difficulty        `json:"difficulty,omitempty"`
	EstimatedTime string            `json:"estimatedTime,omitempty"`
	ChildrenIDs   []string          `json:"childrenIds,omitempty"`
	Prerequisites []string          `json:"prerequisites,omitempty"`
	ResourceURLs  []string          `json:"resourceUrls,omitempty"`
	Description   string            `json:"description,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// HasChildren reports whether the item can be expanded.
func (it Item) HasChildren() bool {
	return len(it.ChildrenIDs) > 0
}

// Data is the flat entity table of a roadmap plus its entry points.
type Data struct {
	Items       map[string]Item
	RootItemIDs []string
}
