// Package builder turns extracted content into a published graph. The build
// runs in two phases so edges can reference nodes defined anywhere in the
// content set, including files processed later.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"lattice/internal/content"
	"lattice/internal/core/errors"
	"lattice/internal/extract"
	"lattice/internal/graph"
	"lattice/internal/shared/observability"
)

// ItemError records a per-item extraction failure. Unless fail-fast is set,
// a failing item is skipped and the build continues.
type ItemError struct {
	Item    string
	Message string
}

// Stats summarizes one build for logging and diagnostics.
type Stats struct {
	CacheHit       bool
	ItemsProcessed int
	ItemsSkipped   int
	NodesCreated   int
	EdgesCreated   int
	DedupedEdges   int
	ManualEdges    int
	DanglingRefs   []string
	Errors         []ItemError
	// Report carries the structural validation of the finished graph, so a
	// build returns every diagnostic in one place.
	Report graph.Report
}

type Options struct {
	// Workers bounds the extraction pool. Zero means GOMAXPROCS.
	Workers int
	// FailFast aborts the build on the first extraction error instead of
	// collecting it as a diagnostic.
	FailFast bool
	// ManualEdgesPath optionally points at a JSON overlay merged after the
	// extracted edges.
	ManualEdgesPath string
}

type Builder struct {
	extractor extract.Extractor
	opts      Options
	log       *slog.Logger
}

func New(extractor extract.Extractor, opts Options, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{extractor: extractor, opts: opts, log: log}
}

type itemResult struct {
	rel   string
	node  *graph.Node
	edges []graph.Edge
	err   error
}

// Build runs extraction over a bounded worker pool, merges nodes through a
// single writer, then resolves edges against the complete node set. A
// duplicate node ID is fatal. Edges with unknown endpoints are dropped and
// reported in Stats.DanglingRefs.
func (b *Builder) Build(ctx context.Context, items []content.Item) (*graph.Graph, Stats, error) {
	ctx, span := observability.Tracer.Start(ctx, "builder.Build")
	defer span.End()

	started := time.Now()
	defer func() {
		observability.BuildDuration.Observe(time.Since(started).Seconds())
	}()

	workers := b.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(items) && len(items) > 0 {
		workers = len(items)
	}

	jobs := make(chan content.Item)
	results := make(chan itemResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				results <- b.extractItem(item)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, item := range items {
			select {
			case jobs <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	// Single-writer merge. Phase 1 adds nodes; edges are held back until the
	// whole ID space exists.
	g := graph.New()
	var stats Stats
	var pending []graph.Edge

	for res := range results {
		stats.ItemsProcessed++
		if res.err != nil {
			observability.ExtractionFailuresTotal.Inc()
			if b.opts.FailFast {
				// Drain remaining workers before returning.
				for range results {
				}
				return nil, stats, res.err
			}
			stats.ItemsSkipped++
			stats.Errors = append(stats.Errors, ItemError{Item: res.rel, Message: res.err.Error()})
			b.log.Warn("extraction failed", "item", res.rel, "error", res.err)
			continue
		}
		if res.node == nil {
			stats.ItemsSkipped++
			continue
		}
		if err := g.AddNode(*res.node); err != nil {
			for range results {
			}
			return nil, stats, errors.AddContext(err, errors.CtxPath, res.rel)
		}
		stats.NodesCreated++
		pending = append(pending, res.edges...)
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	// Phase 2: resolve edges against the complete node set. Ordering is
	// normalized so diagnostics and edge insertion order are deterministic
	// regardless of worker scheduling.
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Key() < pending[j].Key() })
	for _, e := range pending {
		b.mergeEdge(g, e, &stats)
	}

	if b.opts.ManualEdgesPath != "" {
		n, err := b.applyManualEdges(g, &stats)
		if err != nil {
			return nil, stats, err
		}
		stats.ManualEdges = n
	}

	stats.Report = graph.Validate(g)

	b.log.Info("graph built",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"items", stats.ItemsProcessed,
		"skipped", stats.ItemsSkipped,
		"dangling", len(stats.DanglingRefs),
		"findings", len(stats.Report.Findings),
		"duration", time.Since(started))

	return g, stats, nil
}

func (b *Builder) extractItem(item content.Item) itemResult {
	node, err := b.extractor.ExtractNode(item)
	if err != nil {
		return itemResult{rel: item.Rel, err: err}
	}
	if node == nil {
		return itemResult{rel: item.Rel}
	}
	edges, err := b.extractor.ExtractEdges(item)
	if err != nil {
		return itemResult{rel: item.Rel, err: err}
	}
	return itemResult{rel: item.Rel, node: node, edges: edges}
}

// mergeEdge adds one edge, downgrading structural problems to diagnostics:
// unknown endpoints become dangling refs and exact duplicates are counted
// once, never inserted twice.
func (b *Builder) mergeEdge(g *graph.Graph, e graph.Edge, stats *Stats) {
	if !g.ContainsNode(e.From) || !g.ContainsNode(e.To) {
		observability.DanglingEdgesTotal.Inc()
		stats.DanglingRefs = append(stats.DanglingRefs, e.String())
		return
	}
	if g.HasEdge(e.From, e.To, e.Relationship) {
		stats.DedupedEdges++
		return
	}
	if err := g.AddEdge(e); err != nil {
		stats.Errors = append(stats.Errors, ItemError{
			Item:    e.From,
			Message: fmt.Sprintf("adding edge %s: %v", e, err),
		})
		return
	}
	stats.EdgesCreated++
}
