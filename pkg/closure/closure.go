// Package closure derives the transitive-closure table of a distribution
// network via breadth-first traversal.
//
// For every node reachable from a component's root, the closure table
// contains one entry per tree ancestor of that node, including a reflexive
// depth-0 self entry. Depth is strict hop count along the traversal tree;
// because the traversal is FIFO breadth-first over uniform-weight edges,
// the depth assigned to a node equals its minimum hop distance from the
// root.
//
// Roots are chosen per connected component: the first node in deterministic
// (ascending id) order whose type classification equals the configured root
// marker. Components without a marked node fall back to their lowest id so
// that every node is still represented in the table.
package closure

import "errors"

var (
	// ErrInvalidRoot is returned by [Build] when the requested root id is
	// not present in the graph. This is a precondition violation on the
	// caller's side, not a data issue.
	ErrInvalidRoot = errors.New("closure: root node not in graph")

	// ErrNoRootFound is returned by [FindRoot] when no node carries the
	// root marker. Callers are expected to tolerate this per component and
	// fall back to a deterministic substitute root.
	ErrNoRootFound = errors.New("closure: no root-marked node found")
)

// DefaultRootMarker is the type classification identifying a substation,
// the canonical traversal origin. The source data uses the Spanish label.
const DefaultRootMarker = "Subestacion"

// Entry is one derived fact of the closure table: descendant is reachable
// from ancestor in exactly Depth hops along the traversal tree.
type Entry struct {
	Ancestor   int `json:"ancestor" bson:"ancestor"`
	Descendant int `json:"descendant" bson:"descendant"`
	Depth      int `json:"depth" bson:"depth"`
}

// Stats summarizes one full-graph sweep for operational visibility.
type Stats struct {
	Components    int // connected components traversed
	FallbackRoots int // components traversed without a root-marked node
	Nodes         int // nodes covered (every node exactly once)
	Entries       int // closure entries emitted
}
