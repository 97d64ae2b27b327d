package graph

import "sort"

// CentralityEntry scores one node by how connected it is.
type CentralityEntry struct {
	Node  Node
	In    int
	Out   int
	Score float64
}

// CentralityByDegree ranks nodes by total degree, most connected first.
// Ties break by ascending node ID so repeated runs produce identical output.
// When weighted is true the score sums edge weights instead of counting.
func CentralityByDegree(g *Graph, limit int, weighted bool) []CentralityEntry {
	nodes := g.Nodes()
	entries := make([]CentralityEntry, 0, len(nodes))

	for _, n := range nodes {
		in, out := g.Degree(n.ID)
		score := float64(in + out)
		if weighted {
			score = 0
			for _, e := range g.EdgesOf(n.ID) {
				score += e.Weight
			}
		}
		entries = append(entries, CentralityEntry{Node: n, In: in, Out: out, Score: score})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score == entries[j].Score {
			return entries[i].Node.ID < entries[j].Node.ID
		}
		return entries[i].Score > entries[j].Score
	})

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}
