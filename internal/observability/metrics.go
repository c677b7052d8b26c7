package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	SnapshotsLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typecov_snapshots_loaded_total",
		Help: "Total number of snapshot files parsed.",
	})

	SnapshotsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typecov_snapshots_recorded_total",
		Help: "Total number of snapshots persisted to the history store.",
	})

	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "typecov_render_seconds",
		Help:    "Time spent rendering a report.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	StoreWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "typecov_store_write_seconds",
		Help:    "Latency for persisting a snapshot.",
		Buckets: prometheus.DefBuckets,
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typecov_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RendersThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typecov_renders_throttled_total",
		Help: "Total number of re-renders skipped by the rate limiter.",
	})
)
