// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resumehub_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resumehub_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resumehub_resume_uploads_total",
		Help: "Stored resumes by uploader kind.",
	}, []string{"source"})

	ExtractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resumehub_extraction_failures_total",
		Help: "PDF uploads stored without searchable text.",
	})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resumehub_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resumehub_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)
