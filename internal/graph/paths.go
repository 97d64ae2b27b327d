package graph

import "container/heap"

// Path is the result of a shortest-path query. Found is false when no route
// exists; absence of a path is an ordinary outcome, not an error.
type Path struct {
	Nodes       []Node
	Edges       []Edge
	TotalWeight float64
	Found       bool
}

func notFound() Path {
	return Path{Nodes: []Node{}, Edges: []Edge{}}
}

type pathItem struct {
	id   string
	cost float64
}

type pathQueue []pathItem

func (q pathQueue) Len() int { return len(q) }
func (q pathQueue) Less(i, j int) bool {
	if q[i].cost == q[j].cost {
		return q[i].id < q[j].id
	}
	return q[i].cost < q[j].cost
}
func (q pathQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *pathQueue) Push(x interface{}) { *q = append(*q, x.(pathItem)) }
func (q *pathQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ShortestPath runs Dijkstra over directed edges. Heavier edges represent
// stronger relationships, so traversal cost is the inverse of the weight.
// Equal-cost candidates are broken by ascending node ID for determinism.
func ShortestPath(g *Graph, fromID, toID string) Path {
	from, ok := g.GetNode(fromID)
	if !ok {
		return notFound()
	}
	if _, ok := g.GetNode(toID); !ok {
		return notFound()
	}

	if fromID == toID {
		return Path{Nodes: []Node{from}, Edges: []Edge{}, Found: true}
	}

	dist := map[string]float64{fromID: 0}
	prevEdge := make(map[string]Edge)
	done := make(map[string]bool)

	q := &pathQueue{{id: fromID, cost: 0}}
	heap.Init(q)

	for q.Len() > 0 {
		current := heap.Pop(q).(pathItem)
		if done[current.id] {
			continue
		}
		done[current.id] = true
		if current.id == toID {
			break
		}

		for _, e := range g.Outgoing(current.id) {
			w := e.Weight
			if w < 0.01 {
				w = 0.01
			}
			candidate := current.cost + 1.0/w
			if best, seen := dist[e.To]; !seen || candidate < best {
				dist[e.To] = candidate
				prevEdge[e.To] = e
				heap.Push(q, pathItem{id: e.To, cost: candidate})
			}
		}
	}

	if !done[toID] {
		return notFound()
	}

	// Walk predecessors back to the start.
	edges := make([]Edge, 0)
	for id := toID; id != fromID; {
		e, ok := prevEdge[id]
		if !ok {
			return notFound()
		}
		edges = append(edges, e)
		id = e.From
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	nodes := make([]Node, 0, len(edges)+1)
	nodes = append(nodes, from)
	total := 0.0
	for _, e := range edges {
		node, ok := g.GetNode(e.To)
		if !ok {
			return notFound()
		}
		nodes = append(nodes, node)
		total += e.Weight
	}

	return Path{Nodes: nodes, Edges: edges, TotalWeight: total, Found: true}
}
