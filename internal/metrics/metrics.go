package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zerostrike",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zerostrike",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Ingestion metrics
	Polls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zerostrike",
		Subsystem: "ingestion",
		Name:      "polls_total",
		Help:      "Total upstream polls by source",
	}, []string{"source"})

	PollErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zerostrike",
		Subsystem: "ingestion",
		Name:      "poll_errors_total",
		Help:      "Total failed upstream polls by source",
	}, []string{"source"})

	PollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zerostrike",
		Subsystem: "ingestion",
		Name:      "poll_duration_seconds",
		Help:      "Duration of upstream polls",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 15},
	}, []string{"source"})

	// Layer metrics
	LayerRecomputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zerostrike",
		Subsystem: "layers",
		Name:      "recompute_duration_seconds",
		Help:      "Time spent rebuilding a derived GeoJSON layer",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"layer"})

	ActiveCollisions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "zerostrike",
		Subsystem: "layers",
		Name:      "active_collisions",
		Help:      "Threats currently inside a critical land-risk zone",
	})

	CollisionEventsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zerostrike",
		Subsystem: "layers",
		Name:      "collision_events_total",
		Help:      "Total threats that entered a critical zone",
	})

	// Risk engine metrics
	EngineRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zerostrike",
		Subsystem: "engine",
		Name:      "run_duration_seconds",
		Help:      "Time spent scoring the grid and projecting storm cells",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	EngineHits = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "zerostrike",
		Subsystem: "engine",
		Name:      "threatened_cells",
		Help:      "Grid cells reached by a storm cell within the forecast horizon",
	})

	// Streaming / workers
	StreamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "zerostrike",
		Subsystem: "grpc",
		Name:      "stream_subscribers",
		Help:      "Current number of layer stream subscribers",
	})

	JobsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zerostrike",
		Subsystem: "worker",
		Name:      "jobs_dropped_total",
		Help:      "Persistence jobs dropped because the queue was full",
	}, []string{"job"})
)

// Middleware records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus /metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
