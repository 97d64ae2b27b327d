// Package watch keeps a published graph in sync with a content directory.
package watch

import (
	"context"
	"log/slog"

	"lattice/internal/builder"
	"lattice/internal/content"
	"lattice/internal/data/cache"
	"lattice/internal/graph"
	"lattice/internal/shared/observability"
	"lattice/internal/shared/util"
)

// Rebuilder runs full rebuilds in response to content changes and publishes
// the result through the shared handle. A token bucket bounds rebuild churn:
// however fast files change, rebuilds are spaced out and readers always see
// either the previous complete graph or the new one.
type Rebuilder struct {
	builder *builder.Builder
	source  *content.Source
	cache   *cache.FileCache
	handle  *graph.Handle
	limiter *util.Limiter
	log     *slog.Logger
}

func NewRebuilder(b *builder.Builder, src *content.Source, fc *cache.FileCache, handle *graph.Handle, limiter *util.Limiter, log *slog.Logger) *Rebuilder {
	if log == nil {
		log = slog.Default()
	}
	return &Rebuilder{builder: b, source: src, cache: fc, handle: handle, limiter: limiter, log: log}
}

// Rebuild builds from the current content tree and swaps the snapshot in.
// It blocks until the rate limiter grants a token.
func (r *Rebuilder) Rebuild(ctx context.Context) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, 1); err != nil {
			return err
		}
	}

	g, stats, err := r.builder.BuildFromSource(ctx, r.source, r.cache)
	if err != nil {
		return err
	}

	r.handle.Swap(g)
	observability.RebuildsTotal.Inc()
	r.log.Info("graph republished",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cache_hit", stats.CacheHit,
		"dangling", len(stats.DanglingRefs))
	return nil
}

// OnChange is the watcher callback. Rebuild failures are logged, never
// fatal: the previous snapshot stays published.
func (r *Rebuilder) OnChange(ctx context.Context) func([]string) {
	return func(paths []string) {
		r.log.Debug("content changed", "files", len(paths))
		if err := r.Rebuild(ctx); err != nil {
			r.log.Error("rebuild failed, keeping previous graph", "error", err)
		}
	}
}
