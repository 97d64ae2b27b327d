package builder

import (
	"context"

	"lattice/internal/content"
	"lattice/internal/core/errors"
	"lattice/internal/data/cache"
	"lattice/internal/graph"
	"lattice/internal/shared/observability"
)

// BuildFromSource is the full pipeline: hash the content tree, serve from
// the cache when it is fresh, otherwise load, extract, build, and refresh
// the cache. A nil cache disables persistence entirely.
func (b *Builder) BuildFromSource(ctx context.Context, src *content.Source, fc *cache.FileCache) (*graph.Graph, Stats, error) {
	ctx, span := observability.Tracer.Start(ctx, "builder.BuildFromSource")
	defer span.End()

	hash, err := src.HashTree()
	if err != nil {
		return nil, Stats{}, err
	}

	if fc != nil {
		if g, ok := b.loadFresh(fc, hash); ok {
			observability.CacheHitsTotal.Inc()
			b.log.Info("graph loaded from cache",
				"path", fc.Path(), "nodes", g.NodeCount(), "edges", g.EdgeCount())
			return g, Stats{CacheHit: true, NodesCreated: g.NodeCount(), EdgesCreated: g.EdgeCount()}, nil
		}
		observability.CacheMissesTotal.Inc()
	}

	items, itemErrs, err := src.Load()
	if err != nil {
		return nil, Stats{}, err
	}

	g, stats, err := b.Build(ctx, items)
	if err != nil {
		return nil, stats, err
	}

	for _, itemErr := range itemErrs {
		if b.opts.FailFast {
			return nil, stats, itemErr
		}
		stats.ItemsSkipped++
		stats.Errors = append(stats.Errors, ItemError{Message: itemErr.Error()})
	}

	if fc != nil {
		if saveErr := fc.Save(cache.FromGraph(g, hash)); saveErr != nil {
			// A failed cache write never fails the build.
			b.log.Warn("failed to save graph cache", "path", fc.Path(), "error", saveErr)
		}
	}
	return g, stats, nil
}

// loadFresh returns the cached graph when the snapshot exists, is readable,
// and matches the declared hash.
func (b *Builder) loadFresh(fc *cache.FileCache, hash string) (*graph.Graph, bool) {
	snapshot, err := fc.Load()
	if err != nil {
		if errors.IsCode(err, errors.CodeCacheUnreadable) {
			b.log.Warn("cache unreadable, rebuilding", "path", fc.Path(), "error", err)
		} else {
			b.log.Debug("no cache snapshot", "path", fc.Path())
		}
		return nil, false
	}
	if !cache.Fresh(hash, snapshot.Metadata.ContentHash) {
		b.log.Debug("cache stale", "path", fc.Path())
		return nil, false
	}
	g, err := snapshot.Graph()
	if err != nil {
		b.log.Warn("cache snapshot inconsistent, rebuilding", "path", fc.Path(), "error", err)
		return nil, false
	}
	return g, true
}
