package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/docshot/docshot/internal/pipeline"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docshot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docshot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Detection metrics
	detectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docshot_detections_total",
			Help: "Total number of analyzed frames",
		},
		[]string{"strategy", "status"}, // status: found, not_found, error
	)

	detectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docshot_detection_duration_seconds",
			Help:    "Frame analysis duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"source"}, // source: http, websocket
	)

	detectionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docshot_detection_confidence",
			Help:    "Confidence of accepted detections",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "docshot_upload_size_bytes",
			Help: "Size of uploaded files in bytes",
			Buckets: []float64{
				1024, 10 * 1024, 100 * 1024, 1024 * 1024,
				10 * 1024 * 1024, 50 * 1024 * 1024,
			},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docshot_websocket_active_connections",
			Help: "Number of active stream connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docshot_websocket_messages_total",
			Help: "Total number of stream messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

// recordDetection updates the detection metrics for one analyzed frame.
func recordDetection(source string, fr *pipeline.FrameResult, elapsed time.Duration) {
	if fr == nil {
		return
	}
	strategy := fr.Strategy
	if strategy == "" {
		strategy = "none"
	}
	status := "not_found"
	if fr.Detection.Found {
		status = "found"
		detectionConfidence.Observe(fr.Detection.Confidence)
	}
	detectionsTotal.WithLabelValues(strategy, status).Inc()
	detectionDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}
