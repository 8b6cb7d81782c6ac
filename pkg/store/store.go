// Package store defines the persistence boundary for network entities and
// closure entries, plus the hierarchical queries the closure table exists
// to answer.
//
// Implementations live in subpackages: postgres (pgx), mongodb
// (mongo-driver), and memory (map-backed, used by tests and by runs that
// serve queries directly off a fresh build).
//
// Every run replaces the stored data wholesale; there are no incremental
// update semantics. Sinks must deduplicate closure entries on the
// (ancestor, descendant) key: the same pair can never legitimately recur
// with a different depth, but idempotent insert semantics are required.
package store

import (
	"context"

	"github.com/voltlab/gridclosure/pkg/closure"
	"github.com/voltlab/gridclosure/pkg/entity"
)

// Relation is one query result: a node related to the queried node at the
// given hop distance, joined with its display attributes.
type Relation struct {
	NodeID int    `json:"node_id" bson:"node_id"`
	Name   string `json:"name" bson:"name"`
	Type   string `json:"type" bson:"type"`
	Depth  int    `json:"depth" bson:"depth"`
}

// Counts reports the stored row counts per table.
type Counts struct {
	Nodes          int `json:"nodes"`
	Segments       int `json:"segments"`
	ClosureEntries int `json:"closure_entries"`
}

// Store persists one build run and answers hierarchical queries.
type Store interface {
	// SaveNetwork replaces all stored data with the given run's output.
	SaveNetwork(ctx context.Context, nodes []entity.Node, segments []entity.Segment, entries []closure.Entry) error

	// Descendants returns all nodes strictly below id in its traversal
	// tree, ordered by depth then id. maxDepth <= 0 means unlimited.
	Descendants(ctx context.Context, id int, maxDepth int) ([]Relation, error)

	// Ancestors returns all nodes strictly above id in its traversal
	// tree, ordered farthest first (the component root comes first).
	Ancestors(ctx context.Context, id int) ([]Relation, error)

	// AtDepth returns the nodes exactly depth hops below id, ordered by id.
	AtDepth(ctx context.Context, id int, depth int) ([]Relation, error)

	// Counts reports the stored row counts.
	Counts(ctx context.Context) (Counts, error)

	// Close releases any underlying connections.
	Close(ctx context.Context) error
}
