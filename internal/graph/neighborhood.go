package graph

import (
	"sort"

	"lattice/internal/core/errors"
)

// MaxDepth caps BFS traversals so dense hubs cannot blow up a query.
const MaxDepth = 10

// Neighborhood is the result of an N-hop exploration around a center node.
type Neighborhood struct {
	Center    Node
	Nodes     []Node
	Edges     []Edge
	Distances map[string]int
}

// NeighborhoodOf walks outward from center up to depth hops, following edges
// in both directions. A depth of 0 returns exactly the center node and no
// edges. Depth is capped at MaxDepth. An optional relationship filter limits
// which edges are followed.
func NeighborhoodOf(g *Graph, centerID string, depth int, filter []Relationship) (Neighborhood, error) {
	center, ok := g.GetNode(centerID)
	if !ok {
		return Neighborhood{}, errors.Newf(errors.CodeNotFound, "node %q not found", centerID)
	}

	if depth < 0 {
		depth = 0
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}

	result := Neighborhood{
		Center:    center,
		Nodes:     []Node{},
		Edges:     []Edge{},
		Distances: map[string]int{centerID: 0},
	}

	allowed := func(rel Relationship) bool {
		if len(filter) == 0 {
			return true
		}
		for _, f := range filter {
			if f.Name() == rel.Name() {
				return true
			}
		}
		return false
	}

	visited := map[string]bool{centerID: true}
	frontier := []string{centerID}

	for dist := 0; dist < depth && len(frontier) > 0; dist++ {
		next := make([]string, 0)
		for _, id := range frontier {
			neighbors := make([]string, 0)
			edgesByNeighbor := make(map[string]Edge)

			for _, e := range g.Outgoing(id) {
				if allowed(e.Relationship) && !visited[e.To] {
					if _, seen := edgesByNeighbor[e.To]; !seen {
						neighbors = append(neighbors, e.To)
						edgesByNeighbor[e.To] = e
					}
				}
			}
			for _, e := range g.Incoming(id) {
				if allowed(e.Relationship) && !visited[e.From] {
					if _, seen := edgesByNeighbor[e.From]; !seen {
						neighbors = append(neighbors, e.From)
						edgesByNeighbor[e.From] = e
					}
				}
			}

			sort.Strings(neighbors)
			for _, nid := range neighbors {
				if visited[nid] {
					continue
				}
				visited[nid] = true
				node, ok := g.GetNode(nid)
				if !ok {
					continue
				}
				result.Nodes = append(result.Nodes, node)
				result.Edges = append(result.Edges, edgesByNeighbor[nid])
				result.Distances[nid] = dist + 1
				next = append(next, nid)
			}
		}
		frontier = next
	}

	return result, nil
}
