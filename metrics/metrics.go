// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paralympics_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paralympics_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	SeededRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "paralympics_seeded_rows",
			Help: "Rows written to each derived table by the last seed.",
		},
		[]string{"table"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paralympics_login_attempts_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"},
	)
)

func RecordRequest(method, route, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordSeed(table string, rows int) {
	SeededRows.WithLabelValues(table).Set(float64(rows))
}

func RecordLogin(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	LoginAttempts.WithLabelValues(result).Inc()
}
