package graph

import "sort"

// Bridge is a node that links two categories together. Nodes touching both
// sides of a category boundary are the natural entry points for cross-domain
// navigation.
type Bridge struct {
	Node      Node
	LinksA    int
	LinksB    int
	Neighbors []string
}

// FindBridges returns nodes connected to at least minLinks nodes in category
// a AND at least minLinks nodes in category b, ordered by total cross-links
// descending with ties by ascending node ID. A minLinks below 1 falls back
// to the default of 2.
func FindBridges(g *Graph, categoryA, categoryB string, minLinks int) []Bridge {
	if minLinks < 1 {
		minLinks = 2
	}

	bridges := make([]Bridge, 0)
	for _, n := range g.Nodes() {
		linksA, linksB := 0, 0
		neighborSet := make(map[string]bool)

		for _, e := range g.EdgesOf(n.ID) {
			other := e.To
			if other == n.ID {
				other = e.From
			}
			if other == n.ID || neighborSet[other] {
				continue
			}
			neighbor, ok := g.GetNode(other)
			if !ok {
				continue
			}
			switch neighbor.Category {
			case categoryA:
				linksA++
			case categoryB:
				linksB++
			default:
				continue
			}
			neighborSet[other] = true
		}

		if linksA < minLinks || linksB < minLinks {
			continue
		}

		neighbors := make([]string, 0, len(neighborSet))
		for id := range neighborSet {
			neighbors = append(neighbors, id)
		}
		sort.Strings(neighbors)
		bridges = append(bridges, Bridge{Node: n, LinksA: linksA, LinksB: linksB, Neighbors: neighbors})
	}

	sort.Slice(bridges, func(i, j int) bool {
		ti := bridges[i].LinksA + bridges[i].LinksB
		tj := bridges[j].LinksA + bridges[j].LinksB
		if ti == tj {
			return bridges[i].Node.ID < bridges[j].Node.ID
		}
		return ti > tj
	})
	return bridges
}
