package extract

import (
	"testing"

	"lattice/internal/content"
	"lattice/internal/core/errors"
	"lattice/internal/graph"
)

func parseItem(t *testing.T, rel, raw string) content.Item {
	t.Helper()
	item, err := content.Parse("/content/"+rel, rel, []byte(raw))
	if err != nil {
		t.Fatalf("Parse(%s): %v", rel, err)
	}
	return item
}

func TestNormalizeID(t *testing.T) {
	cases := map[string]string{
		"Voice Leading":   "voice-leading",
		"non_chord_tone":  "non-chord-tone",
		"  Mixed   Case ": "mixed-case",
		"UPPERCASE":       "uppercase",
		"voice-leading":   "voice-leading",
		"":                "",
	}
	for input, want := range cases {
		if got := NormalizeID(input); got != want {
			t.Errorf("NormalizeID(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestComputeID(t *testing.T) {
	var ex FrontmatterExtractor

	item := parseItem(t, "concepts/Voice_Leading.md", "---\ntitle: Voice Leading\n---\n")
	if got := ex.ComputeID(item); got != "voice-leading" {
		t.Errorf("path-derived ID = %q", got)
	}

	item = parseItem(t, "concepts/anything.md", "---\nid: Custom ID\ntitle: X\n---\n")
	if got := ex.ComputeID(item); got != "custom-id" {
		t.Errorf("explicit ID = %q", got)
	}
}

func TestExtractNode(t *testing.T) {
	var ex FrontmatterExtractor
	item := parseItem(t, "limits.md", `---
title: Limits
category: calculus
difficulty: intermediate
prerequisites:
  - functions
---
body`)

	node, err := ex.ExtractNode(item)
	if err != nil {
		t.Fatalf("ExtractNode: %v", err)
	}
	if node == nil {
		t.Fatal("expected a node")
	}
	if node.ID != "limits" || node.Title != "Limits" || node.Category != "calculus" {
		t.Errorf("node = %+v", node)
	}
	if node.Kind != graph.KindDomain {
		t.Errorf("kind = %v", node.Kind)
	}
	if node.Metadata["difficulty"] != "intermediate" {
		t.Errorf("metadata = %v", node.Metadata)
	}
	if _, leaked := node.Metadata["prerequisites"]; leaked {
		t.Errorf("edge key leaked into metadata")
	}
}

func TestExtractNodeUntitledIsNotEntity(t *testing.T) {
	var ex FrontmatterExtractor
	item := parseItem(t, "notes.md", "---\ncategory: scratch\n---\nfree text")

	node, err := ex.ExtractNode(item)
	if err != nil {
		t.Fatalf("ExtractNode: %v", err)
	}
	if node != nil {
		t.Errorf("untitled item should not produce a node, got %+v", node)
	}
}

func TestExtractEdgesDirections(t *testing.T) {
	var ex FrontmatterExtractor
	item := parseItem(t, "limits.md", `---
title: Limits
prerequisites:
  - functions
leads_to:
  - derivatives
related:
  - continuity
---
`)

	edges, err := ex.ExtractEdges(item)
	if err != nil {
		t.Fatalf("ExtractEdges: %v", err)
	}
	if len(edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(edges))
	}

	byRel := make(map[graph.Relationship]graph.Edge)
	for _, e := range edges {
		byRel[e.Relationship] = e
	}

	// Prerequisite arrows point from the prerequisite toward the dependent.
	prereq := byRel[graph.Prerequisite]
	if prereq.From != "functions" || prereq.To != "limits" {
		t.Errorf("prerequisite edge = %s", prereq)
	}
	leads := byRel[graph.LeadsTo]
	if leads.From != "limits" || leads.To != "derivatives" {
		t.Errorf("leads_to edge = %s", leads)
	}
	if byRel[graph.RelatesTo].Weight != 0.7 {
		t.Errorf("related weight = %v", byRel[graph.RelatesTo].Weight)
	}
}

func TestExtractCustomRelationships(t *testing.T) {
	var ex FrontmatterExtractor
	item := parseItem(t, "tonic.md", `---
title: Tonic
relationships:
  - to: Dominant Chord
    type: resolves_from
    weight: 0.4
  - to: scale
    type: related
---
`)

	edges, err := ex.ExtractEdges(item)
	if err != nil {
		t.Fatalf("ExtractEdges: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(edges))
	}

	custom := edges[0]
	if custom.From != "tonic" || custom.To != "dominant-chord" {
		t.Errorf("custom edge = %s", custom)
	}
	if !custom.Relationship.IsCustom() || custom.Weight != 0.4 {
		t.Errorf("custom edge = %+v", custom)
	}

	// A well-known type name in the custom list resolves to the constant.
	if edges[1].Relationship != graph.RelatesTo {
		t.Errorf("second edge relationship = %v", edges[1].Relationship)
	}
}

func TestExtractEdgesMalformedRelationships(t *testing.T) {
	var ex FrontmatterExtractor
	item := parseItem(t, "bad.md", `---
title: Bad
relationships:
  - to: somewhere
---
`)

	if _, err := ex.ExtractEdges(item); !errors.IsCode(err, errors.CodeParseError) {
		t.Errorf("got %v, want PARSE_ERROR", err)
	}
}
