// Package metrics exposes Prometheus collectors for the salon client core:
// cache effectiveness, blob prefetch traffic, and booking commits. HTTP
// traffic instrumentation lives in the middleware package; everything here
// is domain-level and label cardinality is bounded by the closed domain set.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// CacheReads counts cache reads by domain and outcome
	// (hit, miss, decode_error).
	CacheReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_reads_total",
			Help: "Total cache reads by domain and outcome.",
		},
		[]string{"domain", "outcome"},
	)

	// CacheWrites counts cache writes by domain and outcome (ok, error).
	CacheWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_writes_total",
			Help: "Total cache writes by domain and outcome.",
		},
		[]string{"domain", "outcome"},
	)

	// CachePurges counts full namespace purges triggered by a schema
	// version change.
	CachePurges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_version_purges_total",
			Help: "Total cache purges caused by a schema version change.",
		},
	)

	// PrefetchFetches counts blob prefetch attempts by outcome
	// (fetched, cached, error).
	PrefetchFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blob_prefetch_total",
			Help: "Total blob prefetch attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// Commits counts booking commits by result
	// (succeeded, failed, rejected, inflight).
	Commits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_commits_total",
			Help: "Total booking commit attempts by result.",
		},
		[]string{"result"},
	)

	// CommitDuration records end-to-end commit latency in seconds.
	CommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_commit_duration_seconds",
			Help:    "Duration of booking commits in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		CacheReads, CacheWrites, CachePurges,
		PrefetchFetches, Commits, CommitDuration,
	)
}
