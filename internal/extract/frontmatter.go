package extract

import (
	"lattice/internal/content"
	"lattice/internal/core/errors"
	"lattice/internal/graph"
)

// FrontmatterExtractor is the default extractor: nodes and edges are declared
// entirely in YAML frontmatter. Items without a title are not graph entities.
//
// Edge keys map onto relationships as follows. `prerequisites: [b]` in item a
// produces b -> a, so the arrow always points from the prerequisite toward
// what depends on it. Every other key produces item -> target.
type FrontmatterExtractor struct{}

// edgeKeys are frontmatter list keys with a fixed relationship. Inverted
// keys swap from and to.
var edgeKeys = []struct {
	key      string
	rel      graph.Relationship
	inverted bool
}{
	{"prerequisites", graph.Prerequisite, true},
	{"leads_to", graph.LeadsTo, false},
	{"related", graph.RelatesTo, false},
	{"extends", graph.Extends, false},
	{"introduces", graph.Introduces, false},
	{"covers", graph.Covers, false},
	{"variant_of", graph.VariantOf, false},
	{"contrasts_with", graph.ContrastsWith, false},
	{"answers_questions", graph.AnswersQuestion, false},
}

// reserved frontmatter keys that are not node metadata.
var reservedKeys = map[string]bool{
	"id": true, "title": true, "category": true, "relationships": true,
}

func init() {
	for _, ek := range edgeKeys {
		reservedKeys[ek.key] = true
	}
}

func (FrontmatterExtractor) ComputeID(item content.Item) string {
	if explicit := item.StringField("id"); explicit != "" {
		return NormalizeID(explicit)
	}
	return IDFromPath(item.Rel)
}

func (e FrontmatterExtractor) ExtractNode(item content.Item) (*graph.Node, error) {
	title := item.StringField("title")
	if title == "" {
		return nil, nil
	}

	node := &graph.Node{
		ID:       e.ComputeID(item),
		Title:    title,
		Category: item.StringField("category"),
		Kind:     graph.KindDomain,
		Source:   item.Rel,
	}

	for key, value := range item.Frontmatter {
		if reservedKeys[key] {
			continue
		}
		if node.Metadata == nil {
			node.Metadata = make(map[string]interface{})
		}
		node.Metadata[key] = value
	}
	return node, nil
}

func (e FrontmatterExtractor) ExtractEdges(item content.Item) ([]graph.Edge, error) {
	selfID := e.ComputeID(item)
	var edges []graph.Edge

	for _, ek := range edgeKeys {
		for _, target := range item.StringListField(ek.key) {
			targetID := NormalizeID(target)
			from, to := selfID, targetID
			if ek.inverted {
				from, to = targetID, selfID
			}
			edges = append(edges, graph.NewEdge(from, to, ek.rel))
		}
	}

	custom, err := customEdges(item, selfID)
	if err != nil {
		return nil, err
	}
	return append(edges, custom...), nil
}

// customEdges decodes the free-form `relationships:` list, where each entry
// carries its own relationship type and optional weight:
//
//	relationships:
//	  - to: other-node
//	    type: binds_to
//	    weight: 0.4
func customEdges(item content.Item, selfID string) ([]graph.Edge, error) {
	raw, ok := item.Frontmatter["relationships"]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Newf(errors.CodeParseError, "%s: relationships must be a list", item.Rel)
	}

	edges := make([]graph.Edge, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, errors.Newf(errors.CodeParseError, "%s: relationship entry must be a mapping", item.Rel)
		}
		to, _ := m["to"].(string)
		relName, _ := m["type"].(string)
		if to == "" || relName == "" {
			return nil, errors.Newf(errors.CodeParseError, "%s: relationship entry needs to and type", item.Rel)
		}

		edge := graph.NewEdge(selfID, NormalizeID(to), graph.ParseRelationship(relName))
		switch w := m["weight"].(type) {
		case float64:
			edge.Weight = w
		case int:
			edge.Weight = float64(w)
		}
		edges = append(edges, edge)
	}
	return edges, nil
}
