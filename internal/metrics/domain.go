package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Domain Prometheus metrics.
var (
	FacetQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "specdex",
			Name:      "facet_query_duration_seconds",
			Help:      "Facet selection query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"doctype", "status"},
	)

	FacetQueryResultSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "specdex",
			Name:      "facet_query_result_size",
			Help:      "Number of documents matched by a restricted facet query",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"doctype"},
	)

	ValuesMaterializedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specdex",
			Name:      "values_materialized_total",
			Help:      "Attribute value rows written or removed by the materializer",
		},
		[]string{"operation"}, // "create" / "update" / "delete" / "skip"
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specdex",
			Name:      "jobs_total",
			Help:      "Background jobs by type and outcome",
		},
		[]string{"type", "status"}, // "ok" / "retry" / "failed" / "dropped"
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "specdex",
			Name:      "job_duration_seconds",
			Help:      "Background job attempt duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"type"},
	)
)

var registerOnce sync.Once

// RegisterDomainMetrics registers facet, materializer and job metrics. Safe to call more than once.
func RegisterDomainMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			FacetQueryDuration,
			FacetQueryResultSize,
			ValuesMaterializedTotal,
			JobsTotal,
			JobDuration,
		)
	})
}
