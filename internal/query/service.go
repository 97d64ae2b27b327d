package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lattice/internal/core/errors"
	"lattice/internal/graph"
	"lattice/internal/shared/observability"
)

// Service answers queries against the currently published snapshot. Reads
// never block a rebuild: a rebuild publishes a fresh snapshot through the
// handle while in-flight queries keep the one they started with.
type Service struct {
	handle *graph.Handle
}

func NewService(handle *graph.Handle) *Service {
	return &Service{handle: handle}
}

// Handle exposes the snapshot publisher, primarily for the rebuild loop.
func (s *Service) Handle() *graph.Handle {
	return s.handle
}

func (s *Service) observe(ctx context.Context, operation string) (context.Context, func()) {
	ctx, span := observability.Tracer.Start(ctx, "query."+operation)
	started := time.Now()
	return ctx, func() {
		observability.QueryDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
		span.End()
	}
}

func (s *Service) Stats(ctx context.Context) StatsView {
	_, done := s.observe(ctx, "stats")
	defer done()

	g := s.handle.Load()
	return StatsView{Nodes: g.NodeCount(), Edges: g.EdgeCount()}
}

func (s *Service) GetNode(ctx context.Context, id string) (NodeView, error) {
	_, done := s.observe(ctx, "get_node")
	defer done()

	node, ok := s.handle.Load().GetNode(id)
	if !ok {
		return NodeView{}, errors.Newf(errors.CodeNotFound, "node %q not found", id)
	}
	return nodeView(node), nil
}

func (s *Service) GetEdges(ctx context.Context, id string) ([]EdgeView, error) {
	_, done := s.observe(ctx, "get_edges")
	defer done()

	g := s.handle.Load()
	if !g.ContainsNode(id) {
		return nil, errors.Newf(errors.CodeNotFound, "node %q not found", id)
	}
	return edgeViews(g.EdgesOf(id)), nil
}

func (s *Service) Neighborhood(ctx context.Context, id string, depth int, relationships []string) (NeighborhoodView, error) {
	_, done := s.observe(ctx, "neighborhood")
	defer done()

	filter := make([]graph.Relationship, 0, len(relationships))
	for _, name := range relationships {
		filter = append(filter, graph.ParseRelationship(name))
	}

	nb, err := graph.NeighborhoodOf(s.handle.Load(), id, depth, filter)
	if err != nil {
		return NeighborhoodView{}, err
	}
	return NeighborhoodView{
		Center:    nodeView(nb.Center),
		Nodes:     nodeViews(nb.Nodes),
		Edges:     edgeViews(nb.Edges),
		Distances: nb.Distances,
	}, nil
}

// Related returns the nodes one hop away from id, optionally restricted to
// the given relationship names. Unlike Neighborhood it keeps the connecting
// edge next to each node, so callers see how the pair is linked.
func (s *Service) Related(ctx context.Context, id string, relationships []string) ([]RelatedView, error) {
	_, done := s.observe(ctx, "related")
	defer done()

	g := s.handle.Load()
	if !g.ContainsNode(id) {
		return nil, errors.Newf(errors.CodeNotFound, "node %q not found", id)
	}

	filter := make(map[graph.Relationship]bool, len(relationships))
	for _, name := range relationships {
		filter[graph.ParseRelationship(name)] = true
	}

	var views []RelatedView
	for _, e := range g.EdgesOf(id) {
		if len(filter) > 0 && !filter[e.Relationship] {
			continue
		}
		otherID := e.To
		if otherID == id {
			otherID = e.From
		}
		other, ok := g.GetNode(otherID)
		if !ok {
			continue
		}
		views = append(views, RelatedView{Node: nodeView(other), Edge: edgeView(e)})
	}
	return views, nil
}

func (s *Service) ShortestPath(ctx context.Context, from, to string) PathView {
	_, done := s.observe(ctx, "shortest_path")
	defer done()

	p := graph.ShortestPath(s.handle.Load(), from, to)
	return PathView{
		Found:       p.Found,
		Nodes:       nodeViews(p.Nodes),
		Edges:       edgeViews(p.Edges),
		TotalWeight: p.TotalWeight,
	}
}

func (s *Service) Prerequisites(ctx context.Context, id string) (PrerequisitesView, error) {
	_, done := s.observe(ctx, "prerequisites")
	defer done()

	p, err := graph.PrerequisitesSorted(s.handle.Load(), id)
	if err != nil {
		return PrerequisitesView{}, err
	}
	return PrerequisitesView{Target: nodeView(p.Target), Ordered: nodeViews(p.Ordered)}, nil
}

func (s *Service) Centrality(ctx context.Context, limit int, weighted bool) []CentralityView {
	_, done := s.observe(ctx, "centrality")
	defer done()

	entries := graph.CentralityByDegree(s.handle.Load(), limit, weighted)
	views := make([]CentralityView, 0, len(entries))
	for _, e := range entries {
		views = append(views, CentralityView{Node: nodeView(e.Node), In: e.In, Out: e.Out, Score: e.Score})
	}
	return views
}

func (s *Service) Bridges(ctx context.Context, categoryA, categoryB string, minLinks int) []BridgeView {
	_, done := s.observe(ctx, "bridges")
	defer done()

	bridges := graph.FindBridges(s.handle.Load(), categoryA, categoryB, minLinks)
	views := make([]BridgeView, 0, len(bridges))
	for _, b := range bridges {
		views = append(views, BridgeView{
			Node: nodeView(b.Node), LinksA: b.LinksA, LinksB: b.LinksB, Neighbors: b.Neighbors,
		})
	}
	return views
}

func (s *Service) Validate(ctx context.Context) ReportView {
	_, done := s.observe(ctx, "validate")
	defer done()

	report := graph.Validate(s.handle.Load())
	view := ReportView{
		OK:       report.OK(),
		Errors:   report.Errors(),
		Warnings: report.Warnings(),
		Findings: make([]FindingView, 0, len(report.Findings)),
	}
	for _, f := range report.Findings {
		view.Findings = append(view.Findings, FindingView{
			Severity: string(f.Severity), Code: f.Code, NodeID: f.NodeID, Message: f.Message,
		})
	}
	return view
}

// AttachUserQuery overlays a transient node representing a user question and
// links every matched node to it. The mutation clones the published
// snapshot, patches the clone, and republishes, so concurrent readers are
// never disturbed. Returns the generated node ID.
func (s *Service) AttachUserQuery(ctx context.Context, text string, matches []string) (string, error) {
	_, done := s.observe(ctx, "attach_user_query")
	defer done()

	g := s.handle.Load()
	for _, match := range matches {
		if !g.ContainsNode(match) {
			return "", errors.Newf(errors.CodeNotFound, "matched node %q not found", match)
		}
	}

	id := "query-" + uuid.NewString()
	clone := g.Clone()
	if err := clone.AddNode(graph.Node{
		ID:    id,
		Title: text,
		Kind:  graph.KindUserQuery,
	}); err != nil {
		return "", err
	}
	for _, match := range matches {
		edge := graph.NewEdge(match, id, graph.AnswersQuestion)
		edge.Origin = graph.OriginInferred
		if err := clone.AddEdge(edge); err != nil {
			return "", err
		}
	}

	s.handle.Swap(clone)
	return id, nil
}

// DetachUserQuery removes a previously attached user-query node along with
// its edges and republishes the snapshot.
func (s *Service) DetachUserQuery(ctx context.Context, id string) error {
	_, done := s.observe(ctx, "detach_user_query")
	defer done()

	g := s.handle.Load()
	node, ok := g.GetNode(id)
	if !ok {
		return errors.Newf(errors.CodeNotFound, "node %q not found", id)
	}
	if node.Kind != graph.KindUserQuery {
		return errors.Newf(errors.CodeValidationError, "node %q is not a user query", id)
	}

	clone := g.Clone()
	clone.RemoveNode(id)
	s.handle.Swap(clone)
	return nil
}

func nodeView(n graph.Node) NodeView {
	return NodeView{
		ID:       n.ID,
		Title:    n.Title,
		Category: n.Category,
		Kind:     string(n.Kind),
		Source:   n.Source,
		Metadata: n.Metadata,
	}
}

func nodeViews(nodes []graph.Node) []NodeView {
	views := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, nodeView(n))
	}
	return views
}

func edgeView(e graph.Edge) EdgeView {
	return EdgeView{
		From:         e.From,
		To:           e.To,
		Relationship: e.Relationship.Name(),
		Weight:       e.Weight,
		Origin:       string(e.Origin),
	}
}

func edgeViews(edges []graph.Edge) []EdgeView {
	views := make([]EdgeView, 0, len(edges))
	for _, e := range edges {
		views = append(views, edgeView(e))
	}
	return views
}
