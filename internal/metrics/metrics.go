package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const serviceName = "marketing-asset-agent"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// Generative backend metrics
	BackendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_backend_calls_total",
			Help: "Total number of generative backend calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	BackendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_backend_call_duration_seconds",
			Help:    "Generative backend call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	BackendCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_backend_cache_total",
			Help: "Backend response cache lookups by result",
		},
		[]string{"result"},
	)

	// Business metrics
	InsightsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_insights_generated_total",
			Help: "Research insights records produced, by origin",
		},
		[]string{"origin"},
	)

	AssetsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_assets_generated_total",
			Help: "Platform assets produced, by platform and origin",
		},
		[]string{"platform", "origin"},
	)

	BatchesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_batches_generated_total",
			Help: "Generation batches assembled, by status",
		},
		[]string{"status"},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asset_batch_duration_seconds",
			Help:    "Time to produce a full asset batch",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of NATS messages published",
		},
		[]string{"subject", "status"},
	)

	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"service", "version", "provider"},
	)
)

// Init publishes static application info.
func Init(version, provider string) {
	ApplicationInfo.WithLabelValues(serviceName, version, provider).Set(1)
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status, serviceName).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path, serviceName).Observe(time.Since(start).Seconds())
	}
}
