// Package metrics holds the Prometheus collectors for the resolver pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SourceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinemabot",
		Name:      "source_requests_total",
		Help:      "Total requests to remote sources by source and result status (ok, empty, error).",
	}, []string{"source", "status"})

	SourceRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cinemabot",
		Name:      "source_request_duration_seconds",
		Help:      "Remote source request duration in seconds.",
		Buckets:   []float64{0.1, 0.3, 0.5, 1, 2, 5, 10, 15, 30},
	}, []string{"source"})

	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinemabot",
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by namespace and result (hit, miss, expired, error).",
	}, []string{"namespace", "result"})

	PostersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinemabot",
		Name:      "posters_total",
		Help:      "Poster resolutions by result (cached, fetched, fallback).",
	}, []string{"result"})

	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinemabot",
		Name:      "resolutions_total",
		Help:      "Resolved queries by outcome kind.",
	}, []string{"outcome"})
)

// Register adds all collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		SourceRequestsTotal,
		SourceRequestDuration,
		CacheLookupsTotal,
		PostersTotal,
		ResolutionsTotal,
	)
}
