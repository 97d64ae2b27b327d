package graph

import (
	"fmt"
	"sort"
	"strings"

	"lattice/internal/core/errors"
)

// Prerequisites is the transitive dependency set of a target node, ordered
// so that every prerequisite appears before anything that depends on it.
type Prerequisites struct {
	Target  Node
	Ordered []Node
}

// PrerequisitesSorted restricts the graph to the nodes reachable from target
// by walking prerequisite edges backwards, then topologically sorts that
// subgraph. A cycle in the prerequisite subgraph is a CYCLE_DETECTED error
// naming every member; it never hangs or silently truncates.
func PrerequisitesSorted(g *Graph, targetID string) (Prerequisites, error) {
	target, ok := g.GetNode(targetID)
	if !ok {
		return Prerequisites{}, errors.Newf(errors.CodeNotFound, "node %q not found", targetID)
	}

	// Collect the transitive prerequisite ancestors of the target.
	members := make(map[string]bool)
	queue := []string{targetID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, e := range g.Incoming(current) {
			if e.Relationship != Prerequisite {
				continue
			}
			if !members[e.From] {
				members[e.From] = true
				queue = append(queue, e.From)
			}
		}
	}

	if len(members) == 0 {
		return Prerequisites{Target: target, Ordered: []Node{}}, nil
	}

	if cycle := findPrerequisiteCycle(g, members, targetID); len(cycle) > 0 {
		return Prerequisites{}, errors.Newf(errors.CodeCycleDetected,
			"prerequisite cycle: %s", strings.Join(cycle, " -> "))
	}

	ordered := topoSortPrerequisites(g, members)
	nodes := make([]Node, 0, len(ordered))
	for _, id := range ordered {
		if node, ok := g.GetNode(id); ok {
			nodes = append(nodes, node)
		}
	}
	return Prerequisites{Target: target, Ordered: nodes}, nil
}

// findPrerequisiteCycle runs a three-color DFS over the prerequisite
// subgraph (members plus the target). It returns the members of the first
// cycle found, closed on the repeated node, or nil for an acyclic subgraph.
func findPrerequisiteCycle(g *Graph, members map[string]bool, targetID string) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	inScope := func(id string) bool { return members[id] || id == targetID }

	color := make(map[string]int, len(members)+1)
	ids := make([]string, 0, len(members)+1)
	for id := range members {
		ids = append(ids, id)
	}
	ids = append(ids, targetID)
	sort.Strings(ids)

	var cycle []string
	var visit func(id string, stack []string) bool
	visit = func(id string, stack []string) bool {
		color[id] = gray
		stack = append(stack, id)

		next := make([]string, 0)
		for _, e := range g.Outgoing(id) {
			if e.Relationship == Prerequisite && inScope(e.To) {
				next = append(next, e.To)
			}
		}
		sort.Strings(next)

		for _, to := range next {
			switch color[to] {
			case gray:
				start := 0
				for i, s := range stack {
					if s == to {
						start = i
						break
					}
				}
				cycle = append(append([]string{}, stack[start:]...), to)
				return true
			case white:
				if visit(to, stack) {
					return true
				}
			}
		}

		color[id] = black
		return false
	}

	for _, id := range ids {
		if color[id] == white {
			if visit(id, nil) {
				return cycle
			}
		}
	}
	return nil
}

// topoSortPrerequisites is a deterministic Kahn's sort over the member set,
// breaking ties by ascending node ID. The subgraph is known acyclic here.
func topoSortPrerequisites(g *Graph, members map[string]bool) []string {
	indegree := make(map[string]int, len(members))
	for id := range members {
		indegree[id] = 0
	}
	for id := range members {
		for _, e := range g.Outgoing(id) {
			if e.Relationship == Prerequisite && members[e.To] {
				indegree[e.To]++
			}
		}
	}

	ready := make([]string, 0)
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	ordered := make([]string, 0, len(members))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		ordered = append(ordered, id)

		released := make([]string, 0)
		for _, e := range g.Outgoing(id) {
			if e.Relationship != Prerequisite || !members[e.To] {
				continue
			}
			indegree[e.To]--
			if indegree[e.To] == 0 {
				released = append(released, e.To)
			}
		}
		sort.Strings(released)
		ready = mergeSorted(ready, released)
	}

	if len(ordered) != len(members) {
		// Unreachable once findPrerequisiteCycle has passed; kept as a guard.
		panic(fmt.Sprintf("topological sort dropped %d nodes", len(members)-len(ordered)))
	}
	return ordered
}

func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
