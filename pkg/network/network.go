// Package network provides the in-memory undirected graph used to model an
// electrical distribution network.
//
// The graph maps node ids to attribute bags and to symmetric neighbor sets.
// It is built once from validated entities and is read-only once traversal
// begins; it is not safe for concurrent mutation.
//
// Segment files may reference node ids that never appear in the node file.
// AddEdge tolerates this permissively by materializing the missing endpoint
// as a placeholder node with empty attributes. Placeholders are counted so
// the caller can surface them as a data-quality warning.
package network

import (
	"slices"

	"github.com/voltlab/gridclosure/pkg/entity"
)

// Attribute keys stored per node. AttrType is the key inspected by the
// root selector to find the traversal origin of a component.
const (
	AttrName      = "name"
	AttrType      = "type"
	AttrVoltageKV = "voltage_kv"
	AttrX         = "x"
	AttrY         = "y"
)

// Attributes stores the attribute bag of a single node.
type Attributes map[string]any

// Graph is an undirected adjacency structure over integer node ids.
//
// The zero value is not usable - use New to create a valid Graph instance.
type Graph struct {
	nodes       map[int]Attributes
	adjacency   map[int]map[int]struct{}
	edgeCount   int
	placeholder map[int]struct{}
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:       make(map[int]Attributes),
		adjacency:   make(map[int]map[int]struct{}),
		placeholder: make(map[int]struct{}),
	}
}

// Build constructs a Graph from validated entities. All nodes are added
// first so that segments referencing known nodes never create placeholders.
func Build(nodes []entity.Node, segments []entity.Segment) *Graph {
	g := New()
	for _, n := range nodes {
		g.AddNode(n.ID, Attributes{
			AttrName:      n.Name,
			AttrType:      n.Type,
			AttrVoltageKV: n.VoltageKV,
			AttrX:         n.X,
			AttrY:         n.Y,
		})
	}
	for _, s := range segments {
		g.AddEdge(s.From, s.To)
	}
	return g
}

// AddNode registers a node. Re-adding an existing id overwrites its
// attributes without duplicating the id. A nil attribute bag is stored as
// an empty one. Adding an id that previously existed only as a placeholder
// promotes it to a regular node.
func (g *Graph) AddNode(id int, attrs Attributes) {
	if attrs == nil {
		attrs = Attributes{}
	}
	g.nodes[id] = attrs
	if _, ok := g.adjacency[id]; !ok {
		g.adjacency[id] = make(map[int]struct{})
	}
	delete(g.placeholder, id)
}

// AddEdge registers a symmetric connection between a and b. Absent
// endpoints are implicitly created as placeholder nodes with empty
// attributes. Re-adding an existing edge is a no-op.
func (g *Graph) AddEdge(a, b int) {
	g.ensure(a)
	g.ensure(b)
	if _, ok := g.adjacency[a][b]; ok {
		return
	}
	g.adjacency[a][b] = struct{}{}
	g.adjacency[b][a] = struct{}{}
	g.edgeCount++
}

func (g *Graph) ensure(id int) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = Attributes{}
	g.adjacency[id] = make(map[int]struct{})
	g.placeholder[id] = struct{}{}
}

// HasNode reports whether id is present in the node set.
func (g *Graph) HasNode(id int) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all node ids sorted ascending. Sorted iteration keeps
// traversal output reproducible across runs.
func (g *Graph) Nodes() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Neighbors returns the ids adjacent to id, sorted ascending.
// An absent id yields an empty result, not an error.
func (g *Graph) Neighbors(id int) []int {
	adj, ok := g.adjacency[id]
	if !ok {
		return nil
	}
	ids := make([]int, 0, len(adj))
	for n := range adj {
		ids = append(ids, n)
	}
	slices.Sort(ids)
	return ids
}

// Attributes returns the attribute bag for id, or an empty bag if absent.
// The returned map is the live bag; callers must not mutate it.
func (g *Graph) Attributes(id int) Attributes {
	if attrs, ok := g.nodes[id]; ok {
		return attrs
	}
	return Attributes{}
}

// Type returns the type classification attribute of id, or "" when the
// node is absent or untyped (e.g. a placeholder).
func (g *Graph) Type(id int) string {
	if t, ok := g.Attributes(id)[AttrType].(string); ok {
		return t
	}
	return ""
}

// NodeCount returns the number of nodes, placeholders included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int { return g.edgeCount }

// IsPlaceholder reports whether id was materialized implicitly by AddEdge.
func (g *Graph) IsPlaceholder(id int) bool {
	_, ok := g.placeholder[id]
	return ok
}

// Placeholders returns the ids of implicitly created nodes, sorted ascending.
func (g *Graph) Placeholders() []int {
	ids := make([]int, 0, len(g.placeholder))
	for id := range g.placeholder {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
