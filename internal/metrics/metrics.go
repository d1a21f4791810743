package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookcatalog_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookcatalog_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookcatalog_api_client_requests_total",
		Help: "Outbound catalog API calls by method and outcome",
	}, []string{"method", "outcome"})

	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookcatalog_cache_lookups_total",
		Help: "API response cache lookups by result (hit, miss, error)",
	}, []string{"result"})
)
