// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests by route pattern and status class.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "testigo_http_requests_total",
		Help: "Total HTTP requests served.",
	}, []string{"method", "route", "status"})

	// RequestDuration observes request latency by route pattern.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "testigo_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"method", "route"})

	// SamplesStarted counts opened mesa-testigo samples.
	SamplesStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "testigo_samples_started_total",
		Help: "Samples opened.",
	})

	// SamplesFinalized counts successfully finalized samples.
	SamplesFinalized = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "testigo_samples_finalized_total",
		Help: "Samples finalized.",
	})

	// SamplesCanceled counts canceled (hard-deleted) open samples.
	SamplesCanceled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "testigo_samples_canceled_total",
		Help: "Open samples canceled.",
	})

	// SampleErrors counts failed lifecycle operations by operation and
	// error kind.
	SampleErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "testigo_sample_errors_total",
		Help: "Failed sample lifecycle operations.",
	}, []string{"op", "kind"})

	// VotesMarked counts fiscalized vote marks.
	VotesMarked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "testigo_votes_marked_total",
		Help: "Fiscalized votes marked.",
	})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		SamplesStarted,
		SamplesFinalized,
		SamplesCanceled,
		SampleErrors,
		VotesMarked,
	)
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
