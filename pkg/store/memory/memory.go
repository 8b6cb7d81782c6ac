// Package memory provides a map-backed store.Store implementation.
//
// It backs tests and the in-process mode of the serve command, where a
// fresh build is queried directly without external infrastructure.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/voltlab/gridclosure/pkg/closure"
	"github.com/voltlab/gridclosure/pkg/entity"
	"github.com/voltlab/gridclosure/pkg/store"
)

type pair struct{ ancestor, descendant int }

// Store is an in-memory store.Store. It is safe for concurrent reads
// after a SaveNetwork call; Save and reads are guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	nodes    map[int]entity.Node
	segments map[int]entity.Segment
	entries  map[pair]int // (ancestor, descendant) -> depth
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nodes:    make(map[int]entity.Node),
		segments: make(map[int]entity.Segment),
		entries:  make(map[pair]int),
	}
}

// SaveNetwork implements store.Store. Duplicate closure pairs are ignored
// after the first insert, mirroring the idempotent-insert semantics of the
// database-backed sinks.
func (s *Store) SaveNetwork(ctx context.Context, nodes []entity.Node, segments []entity.Segment, entries []closure.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[int]entity.Node, len(nodes))
	s.segments = make(map[int]entity.Segment, len(segments))
	s.entries = make(map[pair]int, len(entries))

	for _, n := range nodes {
		s.nodes[n.ID] = n
	}
	for _, seg := range segments {
		s.segments[seg.ID] = seg
	}
	for _, e := range entries {
		key := pair{e.Ancestor, e.Descendant}
		if _, ok := s.entries[key]; ok {
			continue
		}
		s.entries[key] = e.Depth
	}
	return nil
}

// Descendants implements store.Store.
func (s *Store) Descendants(ctx context.Context, id int, maxDepth int) ([]store.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rels []store.Relation
	for key, depth := range s.entries {
		if key.ancestor != id || depth == 0 {
			continue
		}
		if maxDepth > 0 && depth > maxDepth {
			continue
		}
		rels = append(rels, s.relation(key.descendant, depth))
	}
	slices.SortFunc(rels, func(a, b store.Relation) int {
		if a.Depth != b.Depth {
			return a.Depth - b.Depth
		}
		return a.NodeID - b.NodeID
	})
	return rels, nil
}

// Ancestors implements store.Store.
func (s *Store) Ancestors(ctx context.Context, id int) ([]store.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rels []store.Relation
	for key, depth := range s.entries {
		if key.descendant != id || depth == 0 {
			continue
		}
		rels = append(rels, s.relation(key.ancestor, depth))
	}
	slices.SortFunc(rels, func(a, b store.Relation) int {
		return b.Depth - a.Depth
	})
	return rels, nil
}

// AtDepth implements store.Store.
func (s *Store) AtDepth(ctx context.Context, id int, depth int) ([]store.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rels []store.Relation
	for key, d := range s.entries {
		if key.ancestor != id || d != depth || d == 0 {
			continue
		}
		rels = append(rels, s.relation(key.descendant, d))
	}
	slices.SortFunc(rels, func(a, b store.Relation) int {
		return a.NodeID - b.NodeID
	})
	return rels, nil
}

// Counts implements store.Store.
func (s *Store) Counts(ctx context.Context) (store.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.Counts{
		Nodes:          len(s.nodes),
		Segments:       len(s.segments),
		ClosureEntries: len(s.entries),
	}, nil
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) relation(id, depth int) store.Relation {
	rel := store.Relation{NodeID: id, Depth: depth}
	if n, ok := s.nodes[id]; ok {
		rel.Name = n.Name
		rel.Type = n.Type
	}
	return rel
}
