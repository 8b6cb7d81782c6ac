package closure

import (
	"slices"

	"github.com/voltlab/gridclosure/pkg/network"
)

// FindRoot scans all graph nodes in ascending id order and returns the id
// of the first node whose type classification equals marker. Returns
// ErrNoRootFound when no node carries the marker.
func FindRoot(g *network.Graph, marker string) (int, error) {
	return rootAmong(g, g.Nodes(), marker)
}

// rootAmong selects the root within a single component's member set. The
// search is scoped to the members so that marked nodes from other
// components can never claim a component they do not belong to.
// members must be sorted ascending.
func rootAmong(g *network.Graph, members []int, marker string) (int, error) {
	for _, id := range members {
		if g.Type(id) == marker {
			return id, nil
		}
	}
	return 0, ErrNoRootFound
}

// componentMembers returns the ids of the connected component containing
// seed, sorted ascending.
func componentMembers(g *network.Graph, seed int) []int {
	visited := map[int]struct{}{seed: struct{}{}}
	queue := []int{seed}
	members := []int{seed}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range g.Neighbors(current) {
			if _, ok := visited[neighbor]; ok {
				continue
			}
			visited[neighbor] = struct{}{}
			members = append(members, neighbor)
			queue = append(queue, neighbor)
		}
	}

	// Seed is the lowest unvisited id but discovery order is breadth-first,
	// so the membership still needs sorting for deterministic selection.
	slices.Sort(members)
	return members
}
