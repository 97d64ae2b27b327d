package query

import (
	"context"
	"strings"
	"testing"

	"lattice/internal/core/errors"
	"lattice/internal/graph"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	g := graph.New()
	nodes := []graph.Node{
		{ID: "functions", Title: "Functions", Category: "algebra", Kind: graph.KindDomain},
		{ID: "limits", Title: "Limits", Category: "calculus", Kind: graph.KindDomain},
		{ID: "derivatives", Title: "Derivatives", Category: "calculus", Kind: graph.KindDomain},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	edges := []graph.Edge{
		graph.NewEdge("functions", "limits", graph.Prerequisite),
		graph.NewEdge("limits", "derivatives", graph.Prerequisite),
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return NewService(graph.NewHandle(g))
}

func TestGetNode(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	view, err := s.GetNode(ctx, "limits")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if view.Title != "Limits" || view.Kind != "domain" {
		t.Errorf("view = %+v", view)
	}

	if _, err := s.GetNode(ctx, "ghost"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("got %v, want NOT_FOUND", err)
	}
}

func TestNeighborhoodView(t *testing.T) {
	s := newTestService(t)

	view, err := s.Neighborhood(context.Background(), "limits", 1, nil)
	if err != nil {
		t.Fatalf("Neighborhood: %v", err)
	}
	if view.Center.ID != "limits" || len(view.Nodes) != 2 {
		t.Errorf("view = %+v", view)
	}

	filtered, err := s.Neighborhood(context.Background(), "limits", 1, []string{"leads_to"})
	if err != nil {
		t.Fatalf("Neighborhood: %v", err)
	}
	if len(filtered.Nodes) != 0 {
		t.Errorf("filter leaked nodes: %+v", filtered.Nodes)
	}
}

func TestRelatedView(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	// limits touches both neighbors, one hop each way.
	views, err := s.Related(ctx, "limits", nil)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %+v", views)
	}
	for _, v := range views {
		if v.Edge.From != "limits" && v.Edge.To != "limits" {
			t.Errorf("edge does not touch the center: %+v", v.Edge)
		}
		if v.Node.ID == "limits" {
			t.Errorf("center listed as its own relation")
		}
	}

	filtered, err := s.Related(ctx, "limits", []string{"leads_to"})
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("filter leaked relations: %+v", filtered)
	}

	if _, err := s.Related(ctx, "ghost", nil); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("got %v, want NOT_FOUND", err)
	}
}

func TestShortestPathView(t *testing.T) {
	s := newTestService(t)

	view := s.ShortestPath(context.Background(), "functions", "derivatives")
	if !view.Found || len(view.Nodes) != 3 || view.TotalWeight != 2.0 {
		t.Errorf("view = %+v", view)
	}

	if view := s.ShortestPath(context.Background(), "derivatives", "functions"); view.Found {
		t.Errorf("reverse path must not be found")
	}
}

func TestPrerequisitesView(t *testing.T) {
	s := newTestService(t)

	view, err := s.Prerequisites(context.Background(), "derivatives")
	if err != nil {
		t.Fatalf("Prerequisites: %v", err)
	}
	if len(view.Ordered) != 2 || view.Ordered[0].ID != "functions" || view.Ordered[1].ID != "limits" {
		t.Errorf("ordering = %+v", view.Ordered)
	}
}

func TestValidateView(t *testing.T) {
	s := newTestService(t)
	view := s.Validate(context.Background())
	if !view.OK || len(view.Findings) != 0 {
		t.Errorf("view = %+v", view)
	}
}

func TestAttachDetachUserQuery(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	before := s.handle.Load()

	id, err := s.AttachUserQuery(ctx, "how do derivatives work?", []string{"derivatives", "limits"})
	if err != nil {
		t.Fatalf("AttachUserQuery: %v", err)
	}
	if !strings.HasPrefix(id, "query-") {
		t.Errorf("id = %q", id)
	}

	// The pre-attach snapshot is untouched.
	if before.ContainsNode(id) {
		t.Errorf("mutation leaked into previous snapshot")
	}

	view, err := s.GetNode(ctx, id)
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if view.Kind != "user_query" {
		t.Errorf("kind = %q", view.Kind)
	}

	edges, err := s.GetEdges(ctx, id)
	if err != nil {
		t.Fatalf("GetEdges: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("edges = %+v", edges)
	}
	for _, e := range edges {
		if e.Relationship != "answers_question" || e.Origin != "inferred" {
			t.Errorf("edge = %+v", e)
		}
	}

	if err := s.DetachUserQuery(ctx, id); err != nil {
		t.Fatalf("DetachUserQuery: %v", err)
	}
	if _, err := s.GetNode(ctx, id); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("node survived detach: %v", err)
	}

	stats := s.Stats(ctx)
	if stats.Nodes != 3 || stats.Edges != 2 {
		t.Errorf("stats after detach = %+v", stats)
	}
}

func TestAttachUserQueryUnknownMatch(t *testing.T) {
	s := newTestService(t)
	if _, err := s.AttachUserQuery(context.Background(), "q", []string{"ghost"}); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("got %v, want NOT_FOUND", err)
	}
}

func TestDetachRejectsDomainNode(t *testing.T) {
	s := newTestService(t)
	if err := s.DetachUserQuery(context.Background(), "limits"); !errors.IsCode(err, errors.CodeValidationError) {
		t.Errorf("got %v, want VALIDATION_ERROR", err)
	}
}

func TestAttachDistinctIDs(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	first, err := s.AttachUserQuery(ctx, "q1", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.AttachUserQuery(ctx, "q2", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("user query ids must be unique")
	}
}
