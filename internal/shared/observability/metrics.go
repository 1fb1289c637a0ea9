package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "holindex_parsing_seconds",
		Help:    "Time spent lexing and parsing a source file.",
		Buckets: prometheus.DefBuckets,
	})

	IndexedFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "holindex_indexed_files",
		Help: "Number of files currently held in the symbol database.",
	})

	IndexedDefinitions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "holindex_indexed_definitions",
		Help: "Number of definitions currently held in the symbol database.",
	})

	IndexedModules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "holindex_indexed_modules",
		Help: "Number of modules currently held in the symbol database.",
	})

	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "holindex_scan_seconds",
		Help:    "Time spent on whole indexing passes.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	UnresolvedDependencies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "holindex_unresolved_dependencies_total",
		Help: "Total number of dependency strings that failed to resolve to a file.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "holindex_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	ReindexedFilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "holindex_reindexed_files_total",
		Help: "Total number of single-file (re)index operations performed.",
	})
)
