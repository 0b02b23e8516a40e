package engine

import (
	"log/slog"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/graph"
)

// ResolveOrder topologically sorts instance ids by connection dependency
// using Kahn's algorithm: for every connection A->B, A precedes B in the
// result unless a cycle prevents it.
//
// Edges are restricted to connections whose endpoints both exist in the
// instance set; self-loops never count as dependency edges. Seed order is
// the instances' insertion order, so the result is deterministic for a
// given store state.
//
// When a cycle exists the sorted prefix is shorter than the instance
// count; the remaining ids are appended in insertion order (an explicit,
// documented policy) so every instance still executes once per tick. The
// second result reports that condition - it is non-fatal and callers log
// it rather than raising, since partial evaluation with stale inputs
// beats halting the whole graph.
//
// An empty graph returns an empty order. Unconnected instances have zero
// in-degree and surface at the front immediately.
func ResolveOrder(instances []*graph.BlockInstance, conns []graph.Connection) ([]string, bool) {
	if len(instances) == 0 {
		return nil, false
	}

	present := make(map[string]bool, len(instances))
	for _, inst := range instances {
		present[inst.ID] = true
	}

	adjacency := make(map[string][]string, len(instances))
	inDegree := make(map[string]int, len(instances))
	for _, c := range conns {
		if c.IsSelfLoop() {
			continue
		}
		if !present[c.Source.Instance] || !present[c.Target.Instance] {
			continue
		}
		adjacency[c.Source.Instance] = append(adjacency[c.Source.Instance], c.Target.Instance)
		inDegree[c.Target.Instance]++
	}

	queue := make([]string, 0, len(instances))
	for _, inst := range instances {
		if inDegree[inst.ID] == 0 {
			queue = append(queue, inst.ID)
		}
	}

	order := make([]string, 0, len(instances))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, next := range adjacency[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) == len(instances) {
		return order, false
	}

	// Cycle: append the unsorted remainder in insertion order.
	sorted := make(map[string]bool, len(order))
	for _, id := range order {
		sorted[id] = true
	}
	remainder := 0
	for _, inst := range instances {
		if !sorted[inst.ID] {
			order = append(order, inst.ID)
			remainder++
		}
	}

	slog.Warn("dependency cycle in block graph, executing cycle members in insertion order",
		"cycle_members", remainder,
		"total", len(instances),
	)
	return order, true
}
