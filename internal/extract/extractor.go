// Package extract defines how raw content items become graph nodes and
// edges. The engine stays domain agnostic by delegating everything
// content-specific to an Extractor implementation.
package extract

import (
	"path"
	"strings"

	"lattice/internal/content"
	"lattice/internal/graph"
)

// Extractor maps content items onto graph entities. Implementations must be
// deterministic: the same item always yields the same ID, node, and edges.
type Extractor interface {
	// ComputeID derives the stable node ID for an item.
	ComputeID(item content.Item) string
	// ExtractNode returns the node an item contributes, or nil when the item
	// is not a graph entity.
	ExtractNode(item content.Item) (*graph.Node, error)
	// ExtractEdges returns the edges an item declares. Endpoints may
	// reference nodes from other items; resolution happens in the builder.
	ExtractEdges(item content.Item) ([]graph.Edge, error)
}

// NormalizeID lowercases an identifier into kebab case: underscores become
// hyphens and runs of whitespace collapse into a single hyphen.
func NormalizeID(id string) string {
	lowered := strings.ToLower(strings.TrimSpace(id))
	lowered = strings.ReplaceAll(lowered, "_", " ")
	return strings.Join(strings.Fields(lowered), "-")
}

// IDFromPath derives an ID from a file path's stem.
func IDFromPath(rel string) string {
	base := path.Base(rel)
	stem := strings.TrimSuffix(base, path.Ext(base))
	return NormalizeID(stem)
}
