// Package cache persists built graphs so unchanged content skips extraction
// entirely. Freshness is a pure comparison of content hashes; the cache
// never inspects the content tree itself.
package cache

import (
	"time"

	"lattice/internal/graph"
)

// SchemaVersion guards the snapshot layout. A stored snapshot with a
// different version is treated as absent and triggers a rebuild.
const SchemaVersion = 1

// Metadata describes the build a snapshot came from.
type Metadata struct {
	ContentHash string    `json:"content_hash"`
	BuiltAt     time.Time `json:"built_at"`
	NodeCount   int       `json:"node_count"`
	EdgeCount   int       `json:"edge_count"`
}

// Snapshot is the serialized form of a graph.
type Snapshot struct {
	Version  int          `json:"version"`
	Metadata Metadata     `json:"metadata"`
	Nodes    []graph.Node `json:"nodes"`
	Edges    []graph.Edge `json:"edges"`
}

// FromGraph captures a snapshot of a built graph.
func FromGraph(g *graph.Graph, contentHash string) Snapshot {
	return Snapshot{
		Version: SchemaVersion,
		Metadata: Metadata{
			ContentHash: contentHash,
			BuiltAt:     time.Now().UTC(),
			NodeCount:   g.NodeCount(),
			EdgeCount:   g.EdgeCount(),
		},
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	}
}

// Graph reconstructs a graph from a snapshot. Node-before-edge insertion
// order is guaranteed by construction, so errors here mean the snapshot
// itself is inconsistent.
func (s Snapshot) Graph() (*graph.Graph, error) {
	g := graph.New()
	for _, n := range s.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range s.Edges {
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Fresh reports whether a stored snapshot still matches the declared content
// hash. Both sides empty is stale: an unhashed tree can never be trusted.
func Fresh(declared, stored string) bool {
	return declared != "" && declared == stored
}
