// Package metrics holds the prometheus collectors for the admin API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// SchemaMissWrites counts attribute writes ignored because the slug was
	// not in the target category's schema.
	SchemaMissWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_attribute_schema_miss_writes_total",
			Help: "Attribute value writes ignored because the slug is not in the category schema",
		},
	)
)
