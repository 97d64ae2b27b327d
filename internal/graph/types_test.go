package graph

import "testing"

func TestParseRelationshipAliases(t *testing.T) {
	cases := map[string]Relationship{
		"prerequisite":      Prerequisite,
		"prereq":            Prerequisite,
		"LeadsTo":           LeadsTo,
		"leads_to":          LeadsTo,
		"related":           RelatesTo,
		"relates_to":        RelatesTo,
		"extends":           Extends,
		"variantof":         VariantOf,
		"contrasts_with":    ContrastsWith,
		"answers_questions": AnswersQuestion,
		"  Covers  ":        Covers,
	}
	for input, want := range cases {
		if got := ParseRelationship(input); got != want {
			t.Errorf("ParseRelationship(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseRelationshipCustom(t *testing.T) {
	rel := ParseRelationship("binds_to")
	if !rel.IsCustom() {
		t.Errorf("expected binds_to to be custom")
	}
	if rel.Name() != "binds_to" {
		t.Errorf("custom relationship name = %q, want binds_to", rel.Name())
	}
	if Prerequisite.IsCustom() {
		t.Errorf("prerequisite must not be custom")
	}
}

func TestDefaultWeights(t *testing.T) {
	cases := []struct {
		rel    Relationship
		weight float64
	}{
		{Prerequisite, 1.0},
		{LeadsTo, 1.0},
		{Extends, 0.9},
		{VariantOf, 0.9},
		{Introduces, 0.8},
		{Covers, 0.8},
		{RelatesTo, 0.7},
		{ContrastsWith, 0.7},
		{AnswersQuestion, 0.6},
		{Custom("binds_to"), 0.5},
	}
	for _, tc := range cases {
		if got := tc.rel.DefaultWeight(); got != tc.weight {
			t.Errorf("%s default weight = %v, want %v", tc.rel, got, tc.weight)
		}
	}
}

func TestEdgeKeyAndString(t *testing.T) {
	e := NewEdge("a", "b", Prerequisite)
	if e.Weight != 1.0 {
		t.Errorf("NewEdge weight = %v, want 1.0", e.Weight)
	}
	if e.Origin != OriginFrontmatter {
		t.Errorf("NewEdge origin = %v, want frontmatter", e.Origin)
	}
	if e.String() != "a -[prerequisite]-> b" {
		t.Errorf("edge string = %q", e.String())
	}

	other := NewEdge("a", "b", RelatesTo)
	if e.Key() == other.Key() {
		t.Errorf("edges with different relationships must have different keys")
	}
}

func TestRelationshipTextRoundTrip(t *testing.T) {
	data, err := AnswersQuestion.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var rel Relationship
	if err := rel.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if rel != AnswersQuestion {
		t.Errorf("round trip = %v, want %v", rel, AnswersQuestion)
	}
}
