// Package metrics exposes the Prometheus collectors for story generation.
// Collectors register on the default registry at init, so /metrics served
// with promhttp.Handler picks them up without further wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storypdf"

// Generation outcome labels.
const (
	StatusSuccess       = "success"
	StatusFailure       = "failure"
	StatusValidation    = "validation_error"
	StatusTemplateError = "template_error"
	StatusRenderError   = "render_error"
	StatusIOError       = "io_error"
	StatusCanceled      = "canceled"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// Generation pipeline
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "generations_total",
			Help:      "Total number of story PDF generations by outcome",
		},
		[]string{"status"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "generation_duration_seconds",
			Help:      "End-to-end story PDF generation duration in seconds",
			Buckets:   []float64{.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	// Rendering engine
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "render_duration_seconds",
			Help:      "HTML to PDF rendering duration in seconds",
			Buckets:   []float64{.25, .5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"backend"},
	)

	ActivePages = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "active_pages",
			Help:      "Number of browser pages currently rendering",
		},
		[]string{"backend"},
	)

	BrowserLaunchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "browser_launches_total",
			Help:      "Total number of browser process launches",
		},
		[]string{"backend", "status"},
	)

	// Artifact store
	ArtifactBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "artifact_size_bytes",
			Help:      "Size of saved PDF artifacts in bytes",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 8),
		},
	)

	ArtifactsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "artifacts_pruned_total",
			Help:      "Total number of files removed by retention pruning",
		},
	)
)
