package graph

import (
	"sort"
	"sync"

	"lattice/internal/core/errors"
	"lattice/internal/shared/observability"
)

// Graph owns the node and edge sets plus the derived adjacency indices used
// by every query. Mutations rebuild the indices before returning, so readers
// never observe edges without matching index entries.
//
// Once built, a Graph is typically published as an immutable snapshot via
// Handle and queried concurrently without locking. The internal mutex only
// matters for the rare runtime-mutation path (user-query overlay, manual
// edge patches).
type Graph struct {
	mu sync.RWMutex

	nodes map[string]Node
	edges []Edge

	// Derived indices: node ID -> positions into edges.
	outgoing map[string][]int
	incoming map[string][]int
	edgeKeys map[string]int
}

func New() *Graph {
	return &Graph{
		nodes:    make(map[string]Node),
		outgoing: make(map[string][]int),
		incoming: make(map[string][]int),
		edgeKeys: make(map[string]int),
	}
}

// AddNode inserts a node. Adding an ID that already exists is a
// DUPLICATE_NODE error: identity cannot be silently disambiguated.
func (g *Graph) AddNode(node Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[node.ID]; exists {
		return errors.Newf(errors.CodeDuplicateNode, "duplicate node id %q", node.ID)
	}
	g.nodes[node.ID] = node
	observability.GraphNodes.Set(float64(len(g.nodes)))
	return nil
}

// AddEdge inserts an edge. Both endpoints must already exist and the
// (from, to, relationship) triple must be unique.
func (g *Graph) AddEdge(edge Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[edge.From]; !ok {
		return errors.Newf(errors.CodeDanglingReference, "edge %s references unknown node %q", edge, edge.From)
	}
	if _, ok := g.nodes[edge.To]; !ok {
		return errors.Newf(errors.CodeDanglingReference, "edge %s references unknown node %q", edge, edge.To)
	}
	if _, dup := g.edgeKeys[edge.Key()]; dup {
		return errors.Newf(errors.CodeValidationError, "duplicate edge %s", edge)
	}

	idx := len(g.edges)
	g.edges = append(g.edges, edge)
	g.outgoing[edge.From] = append(g.outgoing[edge.From], idx)
	g.incoming[edge.To] = append(g.incoming[edge.To], idx)
	g.edgeKeys[edge.Key()] = idx
	observability.GraphEdges.Set(float64(len(g.edges)))
	return nil
}

// HasEdge reports whether an identical (from, to, relationship) edge exists.
func (g *Graph) HasEdge(from, to string, rel Relationship) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.edgeKeys[Edge{From: from, To: to, Relationship: rel}.Key()]
	return ok
}

// RemoveNode deletes a node and every edge touching it, then rebuilds the
// adjacency indices. Returns false if the node did not exist.
func (g *Graph) RemoveNode(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return false
	}
	delete(g.nodes, id)

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.From != id && e.To != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	g.rebuildIndicesLocked()
	return true
}

// RemoveEdge deletes the edge identified by (from, to, relationship) and
// rebuilds the adjacency indices. Returns false if no such edge exists.
func (g *Graph) RemoveEdge(from, to string, rel Relationship) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := Edge{From: from, To: to, Relationship: rel}.Key()
	idx, ok := g.edgeKeys[key]
	if !ok {
		return false
	}
	g.edges = append(g.edges[:idx], g.edges[idx+1:]...)
	g.rebuildIndicesLocked()
	return true
}

func (g *Graph) rebuildIndicesLocked() {
	g.outgoing = make(map[string][]int, len(g.nodes))
	g.incoming = make(map[string][]int, len(g.nodes))
	g.edgeKeys = make(map[string]int, len(g.edges))
	for i, e := range g.edges {
		g.outgoing[e.From] = append(g.outgoing[e.From], i)
		g.incoming[e.To] = append(g.incoming[e.To], i)
		g.edgeKeys[e.Key()] = i
	}
	observability.GraphNodes.Set(float64(len(g.nodes)))
	observability.GraphEdges.Set(float64(len(g.edges)))
}

func (g *Graph) GetNode(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	node, ok := g.nodes[id]
	return node, ok
}

func (g *Graph) ContainsNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// NodeIDs returns all node IDs in ascending order for deterministic output.
func (g *Graph) NodeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Edge(nil), g.edges...)
}

// Outgoing returns the edges leaving a node.
func (g *Graph) Outgoing(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgesAtLocked(g.outgoing[id])
}

// Incoming returns the edges arriving at a node.
func (g *Graph) Incoming(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgesAtLocked(g.incoming[id])
}

// EdgesOf returns all edges touching a node, outgoing first.
func (g *Graph) EdgesOf(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := g.edgesAtLocked(g.outgoing[id])
	return append(out, g.edgesAtLocked(g.incoming[id])...)
}

func (g *Graph) edgesAtLocked(indices []int) []Edge {
	edges := make([]Edge, 0, len(indices))
	for _, i := range indices {
		edges = append(edges, g.edges[i])
	}
	return edges
}

// Degree returns in-degree and out-degree for a node.
func (g *Graph) Degree(id string) (in, out int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.incoming[id]), len(g.outgoing[id])
}

// Clone produces a deep, independent copy. Runtime mutation clones the
// published snapshot, patches the clone, and republishes it so concurrent
// readers keep a consistent view.
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c := New()
	for id, n := range g.nodes {
		copied := n
		if n.Metadata != nil {
			copied.Metadata = make(map[string]interface{}, len(n.Metadata))
			for k, v := range n.Metadata {
				copied.Metadata[k] = v
			}
		}
		c.nodes[id] = copied
	}
	c.edges = append([]Edge(nil), g.edges...)
	c.rebuildIndicesLocked()
	return c
}

// Handle is a cheaply clonable shared-ownership reference to the currently
// published graph. Swap installs a new snapshot atomically with respect to
// concurrent Load calls.
type Handle struct {
	mu    sync.RWMutex
	graph *Graph
}

func NewHandle(g *Graph) *Handle {
	if g == nil {
		g = New()
	}
	return &Handle{graph: g}
}

// Load returns the current snapshot. Callers must treat it as read-only.
func (h *Handle) Load() *Graph {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.graph
}

// Swap publishes a new snapshot and returns the previous one.
func (h *Handle) Swap(g *Graph) *Graph {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.graph
	h.graph = g
	return prev
}
