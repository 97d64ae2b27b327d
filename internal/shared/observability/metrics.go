package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lattice_graph_nodes_total",
		Help: "Total number of nodes in the knowledge graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lattice_graph_edges_total",
		Help: "Total number of edges in the knowledge graph.",
	})

	BuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lattice_build_seconds",
		Help:    "Time spent building the graph from content.",
		Buckets: prometheus.DefBuckets,
	})

	ExtractionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lattice_extraction_failures_total",
		Help: "Total number of content items that failed extraction.",
	})

	DanglingEdgesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lattice_dangling_edges_total",
		Help: "Total number of edges dropped for referencing unknown nodes.",
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lattice_cache_hits_total",
		Help: "Total number of builds served from a fresh cache snapshot.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lattice_cache_misses_total",
		Help: "Total number of builds that could not use the cache.",
	})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lattice_query_seconds",
		Help:    "Time spent answering graph queries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lattice_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lattice_rebuilds_total",
		Help: "Total number of graph rebuilds triggered by content changes.",
	})
)
