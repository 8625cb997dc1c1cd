package roadmap

import (
	"fmt"
	"sort"
	"strings"
)

// IntegrityKind names the class of a data integrity problem.
type IntegrityKind string

const (
	KindDanglingChild        IntegrityKind = "dangling-child"
	KindDanglingPrerequisite IntegrityKind = "dangling-prerequisite"
	KindDanglingRoot         IntegrityKind = "dangling-root"
	KindPrerequisiteCycle    IntegrityKind = "prerequisite-cycle"
	KindUnknownNodeType      IntegrityKind = "unknown-node-type"
	KindUnknownDifficulty    IntegrityKind = "unknown-difficulty"
)

// DataIntegrityError reports a single problem with one roadmap item.
type DataIntegrityError struct {
	ItemID string
	Kind   IntegrityKind
	Ref    string // offending reference or value, if any
}

func (e *DataIntegrityError) Error() string {
	switch e.Kind {
	case KindDanglingChild:
		return fmt.Sprintf("item %q references nonexistent child %q", e.ItemID, e.Ref)
	case KindDanglingPrerequisite:
		return fmt.Sprintf("item %q references nonexistent prerequisite %q", e.ItemID, e.Ref)
	case KindDanglingRoot:
		return fmt.Sprintf("root list references nonexistent item %q", e.ItemID)
	case KindPrerequisiteCycle:
		return fmt.Sprintf("item %q is in or depends on a prerequisite cycle", e.ItemID)
	case KindUnknownNodeType:
		return fmt.Sprintf("item %q has unknown node type %q", e.ItemID, e.Ref)
	case KindUnknownDifficulty:
		return fmt.Sprintf("item %q has unknown difficulty %q", e.ItemID, e.Ref)
	default:
		return fmt.Sprintf("item %q: %s %s", e.ItemID, e.Kind, e.Ref)
	}
}

// IntegrityReport collects every integrity problem found at load time,
// grouped by item so that unaffected items keep rendering normally.
type IntegrityReport struct {
	Problems []*DataIntegrityError
	byItem   map[string][]*DataIntegrityError
}

func (r *IntegrityReport) add(e *DataIntegrityError) {
	r.Problems = append(r.Problems, e)
	if r.byItem == nil {
		r.byItem = make(map[string][]*DataIntegrityError)
	}
	r.byItem[e.ItemID] = append(r.byItem[e.ItemID], e)
}

// OK reports whether no problems were found.
func (r *IntegrityReport) OK() bool {
	return r == nil || len(r.Problems) == 0
}

// Broken reports whether the item has at least one problem.
func (r *IntegrityReport) Broken(id string) bool {
	if r == nil {
		return false
	}
	return len(r.byItem[id]) > 0
}

// For returns the problems recorded for one item.
func (r *IntegrityReport) For(id string) []*DataIntegrityError {
	if r == nil {
		return nil
	}
	return r.byItem[id]
}

// Err returns a combined error describing all problems, or nil.
func (r *IntegrityReport) Err() error {
	if r.OK() {
		return nil
	}
	msgs := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Errorf("roadmap integrity check failed:\n  %s", strings.Join(msgs, "\n  "))
}

// Check runs every structural check over data: dangling child, prerequisite
// and root references, unknown enum values, and prerequisite cycles.
func Check(data Data) *IntegrityReport {
	report := &IntegrityReport{}

	for _, id := range sortedIDs(data.Items) {
		it := data.Items[id]
		if !it.NodeType.Valid() {
			report.add(&DataIntegrityError{ItemID: id, Kind: KindUnknownNodeType, Ref: string(it.NodeType)})
		}
		if !it.Difficulty.Valid() {
			report.add(&DataIntegrityError{ItemID: id, Kind: KindUnknownDifficulty, Ref: string(it.Difficulty)})
		}
		for _, childID := range it.ChildrenIDs {
			if _, ok := data.Items[childID]; !ok {
				report.add(&DataIntegrityError{ItemID: id, Kind: KindDanglingChild, Ref: childID})
			}
		}
		for _, prereqID := range it.Prerequisites {
			if _, ok := data.Items[prereqID]; !ok {
				report.add(&DataIntegrityError{ItemID: id, Kind: KindDanglingPrerequisite, Ref: prereqID})
			}
		}
	}

	for _, rootID := range data.RootItemIDs {
		if _, ok := data.Items[rootID]; !ok {
			report.add(&DataIntegrityError{ItemID: rootID, Kind: KindDanglingRoot})
		}
	}

	for _, id := range cycleMembers(data.Items) {
		report.add(&DataIntegrityError{ItemID: id, Kind: KindPrerequisiteCycle})
	}

	return report
}

// cycleMembers runs Kahn's algorithm over the prerequisite relation and
// returns the ids that could never be dequeued. Dangling prerequisites are
// ignored here; they are reported separately.
func cycleMembers(items map[string]Item) []string {
	inDegree := make(map[string]int, len(items))
	adj := make(map[string][]string)
	for id, it := range items {
		if _, ok := inDegree[id]; !ok {
			inDegree[id] = 0
		}
		for _, prereqID := range it.Prerequisites {
			if _, ok := items[prereqID]; !ok {
				continue
			}
			inDegree[id]++
			adj[prereqID] = append(adj[prereqID], id)
		}
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, depID := range adj[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if visited == len(items) {
		return nil
	}
	var stuck []string
	for id, deg := range inDegree {
		if deg > 0 {
			stuck = append(stuck, id)
		}
	}
	sort.Strings(stuck)
	return stuck
}

func sortedIDs(items map[string]Item) []string {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
