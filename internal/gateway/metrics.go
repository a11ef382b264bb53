package gateway

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	agritrackRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agritrack_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	agritrackRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agritrack_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	agritrackTxTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agritrack_transactions_total",
		Help: "Total ledger transactions by operation and result.",
	}, []string{"operation", "result"})

	agritrackEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agritrack_events_total",
		Help: "Total ledger events emitted by type.",
	}, []string{"type"})

	agritrackViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agritrack_temperature_violations_total",
		Help: "Total cold-chain temperature violations detected.",
	})

	agritrackWebhookDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agritrack_webhook_deliveries_total",
		Help: "Total webhook deliveries by success status.",
	}, []string{"status"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		agritrackRequestsTotal.WithLabelValues(method, path, status).Inc()
		agritrackRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordTransaction records a submitted ledger operation and its result.
func RecordTransaction(operation string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	agritrackTxTotal.WithLabelValues(operation, result).Inc()
}

// RecordEvent records an emitted ledger event by type.
func RecordEvent(eventType string) {
	agritrackEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordViolation records a detected cold-chain temperature violation.
func RecordViolation() {
	agritrackViolationsTotal.Inc()
}

// RecordWebhookDelivery records a webhook delivery attempt.
func RecordWebhookDelivery(success bool) {
	if success {
		agritrackWebhookDeliveriesTotal.WithLabelValues("success").Inc()
	} else {
		agritrackWebhookDeliveriesTotal.WithLabelValues("failure").Inc()
	}
}
