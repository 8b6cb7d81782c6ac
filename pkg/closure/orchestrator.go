package closure

import (
	"errors"
	"fmt"

	"github.com/voltlab/gridclosure/pkg/network"
)

// BuildAll sweeps every connected component of g and aggregates the
// closure entries of all of them. Each node is covered by exactly one
// component traversal; per-component node sets are pairwise disjoint, so
// entries from different components never overlap.
//
// Root selection is scoped to each component. A component without a
// marker-typed node is not fatal: its lowest id is used as a substitute
// root and Stats.FallbackRoots is incremented so the degraded selection
// stays observable.
//
// The visited set lives and dies with this call; concurrent invocations
// on the same graph are independent.
func BuildAll(g *network.Graph, marker string) ([]Entry, Stats, error) {
	var (
		entries []Entry
		stats   Stats
		visited = make(map[int]struct{}, g.NodeCount())
	)

	for _, seed := range g.Nodes() {
		if _, ok := visited[seed]; ok {
			continue
		}

		members := componentMembers(g, seed)
		root, err := rootAmong(g, members, marker)
		if errors.Is(err, ErrNoRootFound) {
			root = members[0]
			stats.FallbackRoots++
		}

		componentEntries, err := Build(g, root)
		if err != nil {
			// Build only fails on an absent root, and every candidate root
			// came out of the graph itself.
			return nil, Stats{}, fmt.Errorf("component at node %d: %w", seed, err)
		}

		for _, id := range members {
			visited[id] = struct{}{}
		}

		entries = append(entries, componentEntries...)
		stats.Components++
		stats.Nodes += len(members)
	}

	stats.Entries = len(entries)
	return entries, stats, nil
}
