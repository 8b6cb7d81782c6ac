package closure

import "github.com/voltlab/gridclosure/pkg/network"

// Build performs a breadth-first traversal from root and returns the
// closure entries for the connected component reachable from it.
//
// The queue is processed strictly FIFO so that every node's depth equals
// its minimum hop count from the root. Neighbors are visited in ascending
// id order, which fixes the discovery order (and therefore the output
// order) without affecting entry content.
//
// Each visited node's full ancestor chain is cached as it is discovered
// (its parent's chain prefixed with the parent), so emitting the
// transitive entries for a new node is a single walk over a slice rather
// than repeated parent-map chasing. Output is identical either way.
//
// Returns ErrInvalidRoot if root is not present in g. A root with no
// neighbors yields exactly its own self entry.
func Build(g *network.Graph, root int) ([]Entry, error) {
	if !g.HasNode(root) {
		return nil, ErrInvalidRoot
	}

	// chains[n] lists n's tree ancestors nearest-first: parent,
	// grandparent, ..., root. The root has an empty chain.
	chains := map[int][]int{root: nil}
	visited := map[int]struct{}{root: struct{}{}}
	queue := []int{root}

	entries := []Entry{{Ancestor: root, Descendant: root, Depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range g.Neighbors(current) {
			if _, ok := visited[neighbor]; ok {
				continue
			}
			visited[neighbor] = struct{}{}

			chain := make([]int, 0, len(chains[current])+1)
			chain = append(chain, current)
			chain = append(chain, chains[current]...)
			chains[neighbor] = chain

			entries = append(entries, Entry{Ancestor: neighbor, Descendant: neighbor, Depth: 0})
			for i, ancestor := range chain {
				entries = append(entries, Entry{Ancestor: ancestor, Descendant: neighbor, Depth: i + 1})
			}

			queue = append(queue, neighbor)
		}
	}

	return entries, nil
}
