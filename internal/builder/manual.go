package builder

import (
	"encoding/json"
	"os"

	"lattice/internal/core/errors"
	"lattice/internal/graph"
)

const manualEdgesVersion = 1

// manualEdgeFile is the on-disk overlay format. Edges listed here are merged
// after the extracted ones and tagged with Manual origin so diagnostics can
// tell them apart.
type manualEdgeFile struct {
	Version int          `json:"version"`
	Edges   []manualEdge `json:"edges"`
}

type manualEdge struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Type   string   `json:"type"`
	Weight *float64 `json:"weight,omitempty"`
}

// LoadManualEdges reads and validates a manual edge overlay file.
func LoadManualEdges(path string) ([]graph.Edge, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.CodeNotFound, "manual edges file "+path)
		}
		return nil, errors.Wrap(err, errors.CodeIO, "reading manual edges "+path)
	}

	var file manualEdgeFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrap(err, errors.CodeParseError, "parsing manual edges "+path)
	}
	if file.Version != manualEdgesVersion {
		return nil, errors.Newf(errors.CodeValidationError,
			"manual edges %s: unsupported version %d", path, file.Version)
	}

	edges := make([]graph.Edge, 0, len(file.Edges))
	for i, me := range file.Edges {
		if me.From == "" || me.To == "" || me.Type == "" {
			return nil, errors.Newf(errors.CodeValidationError,
				"manual edges %s: entry %d needs from, to, and type", path, i)
		}
		edge := graph.NewEdge(me.From, me.To, graph.ParseRelationship(me.Type))
		edge.Origin = graph.OriginManual
		if me.Weight != nil {
			edge.Weight = *me.Weight
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// applyManualEdges merges the overlay into an already-built graph. Manual
// edges follow the same rules as extracted ones: unknown endpoints become
// dangling diagnostics and duplicates are dropped.
func (b *Builder) applyManualEdges(g *graph.Graph, stats *Stats) (int, error) {
	edges, err := LoadManualEdges(b.opts.ManualEdgesPath)
	if err != nil {
		return 0, err
	}

	before := stats.EdgesCreated
	for _, e := range edges {
		b.mergeEdge(g, e, stats)
	}
	return stats.EdgesCreated - before, nil
}
