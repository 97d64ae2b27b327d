package cliapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lattice/internal/builder"
	"lattice/internal/content"
	"lattice/internal/core/config"
	"lattice/internal/data/cache"
	"lattice/internal/data/store"
	"lattice/internal/extract"
	"lattice/internal/graph"
	"lattice/internal/query"
	"lattice/internal/shared/observability"
	"lattice/internal/shared/util"
	"lattice/internal/watch"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("lattice v%s\n", versionString)
		return 0
	}

	configureLogging(opts.verbose)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		shutdown, traceErr := observability.InitTracing(ctx, cfg.Tracing.Endpoint)
		if traceErr != nil {
			slog.Error("failed to initialize tracing", "error", traceErr)
			return 1
		}
		defer shutdown(ctx)
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Address)
	}

	src, err := content.NewSource(cfg.Paths.ContentDir, content.SourceOptions{
		ExcludeDirs:  cfg.Exclude.Dirs,
		ExcludeFiles: cfg.Exclude.Files,
	})
	if err != nil {
		slog.Error("failed to open content directory", "path", cfg.Paths.ContentDir, "error", err)
		return 1
	}

	b := builder.New(extract.FrontmatterExtractor{}, builder.Options{
		Workers:         cfg.Build.Workers,
		FailFast:        cfg.Build.FailFast,
		ManualEdgesPath: cfg.Build.ManualEdges,
	}, slog.Default())

	g, fc, err := buildGraph(ctx, cfg, src, b, opts.rebuild)
	if err != nil {
		slog.Error("failed to build graph", "error", err)
		return 1
	}

	handle := graph.NewHandle(g)
	svc := query.NewService(handle)

	if stop, code := runSingleCommand(ctx, svc, cfg, opts); stop {
		return code
	}

	if !opts.ui {
		printSummary(svc.Stats(ctx))
	}
	if opts.once || !longRunning(opts, cfg) {
		return 0
	}

	limiter := util.NewLimiter(cfg.Watch.RebuildRate, cfg.Watch.RebuildBurst)
	rebuilder := watch.NewRebuilder(b, src, fc, handle, limiter, slog.Default())

	w, watchErr := watch.NewWatcher(cfg.Watch.Debounce, nil, cfg.Exclude.Dirs, cfg.Exclude.Files, rebuilder.OnChange(ctx))
	if watchErr != nil {
		slog.Error("failed to create watcher", "error", watchErr)
		return 1
	}
	defer w.Close()
	if watchErr := w.Watch(cfg.Paths.ContentDir); watchErr != nil {
		slog.Error("failed to watch content directory", "error", watchErr)
		return 1
	}

	if opts.ui {
		if err := runUI(svc); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	select {}
}

// longRunning reports whether anything keeps the process alive after the
// initial build: a file watcher or the interactive UI. Plain invocations
// print the summary and exit as if -once were set.
func longRunning(opts cliOptions, cfg *config.Config) bool {
	return opts.watch || opts.ui || cfg.Watch.Enabled
}

func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	// The default path is optional; anything explicit must exist.
	if path == defaultConfigPath && os.IsNotExist(err) {
		return config.Default(), nil
	}
	return nil, err
}

// buildGraph runs the build through the configured backend. The returned
// file cache is nil for the sqlite backend; the watch loop then rebuilds
// without snapshot reuse, which is correct if slower.
func buildGraph(ctx context.Context, cfg *config.Config, src *content.Source, b *builder.Builder, force bool) (*graph.Graph, *cache.FileCache, error) {
	if !cfg.Cache.CacheEnabled() {
		g, _, err := b.BuildFromSource(ctx, src, nil)
		return g, nil, err
	}

	cachePath := cfg.Cache.Path
	if !filepath.IsAbs(cachePath) {
		cachePath = filepath.Join(cfg.Paths.CacheDir, cachePath)
	}

	if cfg.Cache.Backend == "sqlite" {
		g, err := buildWithStore(ctx, cachePath, src, b, force)
		return g, nil, err
	}

	codec, err := cache.NewCodec(cfg.Cache.Codec)
	if err != nil {
		return nil, nil, err
	}
	fc := cache.NewFileCache(cachePath, codec)

	if force {
		g, _, buildErr := b.BuildFromSource(ctx, src, nil)
		if buildErr != nil {
			return nil, nil, buildErr
		}
		hash, hashErr := src.HashTree()
		if hashErr != nil {
			return nil, nil, hashErr
		}
		if saveErr := fc.Save(cache.FromGraph(g, hash)); saveErr != nil {
			slog.Warn("failed to save graph cache", "error", saveErr)
		}
		return g, fc, nil
	}

	g, _, err := b.BuildFromSource(ctx, src, fc)
	return g, fc, err
}

func buildWithStore(ctx context.Context, path string, src *content.Source, b *builder.Builder, force bool) (*graph.Graph, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	hash, err := src.HashTree()
	if err != nil {
		return nil, err
	}

	if !force {
		if fresh, freshErr := st.Fresh(hash); freshErr == nil && fresh {
			if g, loadErr := st.Load(); loadErr == nil {
				observability.CacheHitsTotal.Inc()
				return g, nil
			}
		}
		observability.CacheMissesTotal.Inc()
	}

	g, _, err := b.BuildFromSource(ctx, src, nil)
	if err != nil {
		return nil, err
	}
	if saveErr := st.Save(g, hash); saveErr != nil {
		slog.Warn("failed to save graph store", "error", saveErr)
	}
	return g, nil
}

func serveMetrics(address string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics server listening", "address", address)
	if err := http.ListenAndServe(address, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}

func runSingleCommand(ctx context.Context, svc *query.Service, cfg *config.Config, opts cliOptions) (bool, int) {
	if opts.validate {
		report := svc.Validate(ctx)
		for _, f := range report.Findings {
			fmt.Printf("%s: %s\n", f.Severity, f.Message)
		}
		fmt.Printf("%d errors, %d warnings\n", report.Errors, report.Warnings)
		if !report.OK {
			return true, 1
		}
		return true, 0
	}

	if opts.path != "" {
		from, to, ok := splitPair(opts.path)
		if !ok {
			fmt.Fprintln(os.Stderr, "-path requires from:to")
			return true, 2
		}
		view := svc.ShortestPath(ctx, from, to)
		if !view.Found {
			fmt.Printf("no path from %s to %s\n", from, to)
			return true, 1
		}
		printPath(view)
		return true, 0
	}

	if opts.prereqs != "" {
		view, err := svc.Prerequisites(ctx, opts.prereqs)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return true, 1
		}
		fmt.Printf("prerequisites for %s (%d):\n", view.Target.ID, len(view.Ordered))
		for i, n := range view.Ordered {
			fmt.Printf("%3d. %s (%s)\n", i+1, n.Title, n.ID)
		}
		return true, 0
	}

	if opts.neighbors != "" {
		view, err := svc.Neighborhood(ctx, opts.neighbors, opts.depth, nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return true, 1
		}
		fmt.Printf("neighborhood of %s at depth %d:\n", view.Center.ID, opts.depth)
		for _, n := range view.Nodes {
			fmt.Printf("  %s (%s) at distance %d\n", n.Title, n.ID, view.Distances[n.ID])
		}
		return true, 0
	}

	if opts.centrality > 0 {
		for i, entry := range svc.Centrality(ctx, opts.centrality, false) {
			fmt.Printf("%3d. %-30s in=%d out=%d\n", i+1, entry.Node.ID, entry.In, entry.Out)
		}
		return true, 0
	}

	if opts.bridges != "" {
		catA, catB, ok := splitPair(opts.bridges)
		if !ok {
			fmt.Fprintln(os.Stderr, "-bridges requires catA:catB")
			return true, 2
		}
		bridges := svc.Bridges(ctx, catA, catB, cfg.Bridges.MinLinks)
		for _, b := range bridges {
			fmt.Printf("%s links %s x%d and %s x%d\n", b.Node.ID, catA, b.LinksA, catB, b.LinksB)
		}
		if len(bridges) == 0 {
			fmt.Printf("no bridges between %s and %s\n", catA, catB)
		}
		return true, 0
	}

	return false, 0
}

func splitPair(s string) (string, string, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func printPath(view query.PathView) {
	ids := make([]string, 0, len(view.Nodes))
	for _, n := range view.Nodes {
		ids = append(ids, n.ID)
	}
	fmt.Printf("%s (weight %.2f)\n", strings.Join(ids, " -> "), view.TotalWeight)
}

func printSummary(stats query.StatsView) {
	fmt.Printf("graph: %d nodes, %d edges\n", stats.Nodes, stats.Edges)
}
