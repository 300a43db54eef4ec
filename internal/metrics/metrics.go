// Package metrics registers the dispatcher's prometheus collectors on the default registry,
// which the HTTP layer exposes at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GroupsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_groups_created_total",
		Help: "Delivery groups created, by allocation strategy.",
	}, []string{"strategy"})

	Allocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_allocations_total",
		Help: "Allocation runs, by strategy and whether a shortage was forced.",
	}, []string{"strategy", "shortage"})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_deliveries_total",
		Help: "Delivery attempts by resulting group status.",
	}, []string{"status"})

	PartialSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_partial_submissions_total",
		Help: "Groups left partially populated after an item submission failed.",
	})

	backendRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_backend_request_seconds",
		Help:    "Latency of workshop backend calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)

func ObserveBackend(method, route, code string, d time.Duration) {
	backendRequests.WithLabelValues(method, route, code).Observe(d.Seconds())
}

func ObserveAllocation(strategy string, shortage bool) {
	s := "false"
	if shortage {
		s = "true"
	}
	Allocations.WithLabelValues(strategy, s).Inc()
}
