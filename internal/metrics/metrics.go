// Package metrics defines and registers all custom Prometheus metrics for
// blogkit. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation; the reference backend exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blogkit"

// ── Client metrics ────────────────────────────────────────────────────────────

// ClientRequestsTotal counts completed client calls.
// Labels:
//   - method: HTTP method (e.g. "GET")
//   - code:   response status code, or "error" when no response was received
var ClientRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Total number of API requests issued by the client.",
	},
	[]string{"method", "code"},
)

// ClientRequestDuration measures round-trip latency of client calls.
// Label:
//   - method: HTTP method
var ClientRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Duration of API requests issued by the client.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ── Server metrics ────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts on the reference backend.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// PostMutationsTotal counts successful post mutations.
// Label:
//   - op: "create", "update", "publish" or "delete"
var PostMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_mutations_total",
		Help:      "Total number of post mutations, by operation.",
	},
	[]string{"op"},
)

// MediaUploadedBytes counts bytes accepted by the media endpoint.
var MediaUploadedBytes = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_uploaded_bytes_total",
		Help:      "Total number of bytes stored by media uploads.",
	},
)
