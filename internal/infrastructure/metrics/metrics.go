package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Loader metrics
	FetchRequests *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FetchBytes    prometheus.Histogram
	FetchRetries  prometheus.Counter

	// Extraction metrics
	BalancesExtracted prometheus.Counter
	EntriesExtracted  prometheus.Counter
	EmptySnapshots    prometheus.Counter
	SnapshotDuration  prometheus.Histogram

	// Cache metrics
	CacheOperations *prometheus.CounterVec

	// Insight metrics
	InsightRequests *prometheus.CounterVec
	InsightDuration prometheus.Histogram

	// Tracker metrics
	TrackerRefreshes *prometheus.CounterVec

	// Relay metrics
	RelayRequests *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all Prometheus metrics and registers them on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Loader metrics
		FetchRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_fetch_requests_total",
				Help: "Total document fetches by page and outcome",
			},
			[]string{"page", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardledger_fetch_duration_seconds",
				Help:    "Duration of document fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"page"},
		),
		FetchBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardledger_fetch_bytes",
			Help:    "Size of fetched documents",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		FetchRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_fetch_retries_total",
			Help: "Total document fetch retries",
		}),

		// Extraction metrics
		BalancesExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_balances_extracted_total",
			Help: "Total account balances extracted",
		}),
		EntriesExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_entries_extracted_total",
			Help: "Total ledger entries extracted",
		}),
		EmptySnapshots: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardledger_empty_snapshots_total",
			Help: "Total snapshots assembled without any balance or entry",
		}),
		SnapshotDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardledger_snapshot_duration_seconds",
			Help:    "Duration of the fetch, extract and assemble pipeline",
			Buckets: prometheus.DefBuckets,
		}),

		// Cache metrics
		CacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_cache_operations_total",
				Help: "Snapshot cache operations by result",
			},
			[]string{"operation", "result"},
		),

		// Insight metrics
		InsightRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_insight_requests_total",
				Help: "Insight generations by outcome",
			},
			[]string{"outcome"},
		),
		InsightDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardledger_insight_duration_seconds",
			Help:    "Duration of insight generation",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),

		// Tracker metrics
		TrackerRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_tracker_refreshes_total",
				Help: "Periodic snapshot refreshes by outcome",
			},
			[]string{"outcome"},
		),

		// Relay metrics
		RelayRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_relay_requests_total",
				Help: "Relayed upstream requests by path and status",
			},
			[]string{"path", "status"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
