// Package metrics exposes Prometheus instruments for the HTTP surface and
// the quota engine.
package metrics

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics records request counts and latencies per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chandlery_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chandlery_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// QuotaMetrics counts quota guard decisions.
type QuotaMetrics struct {
	accepted *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

func NewQuotaMetrics() *QuotaMetrics {
	return &QuotaMetrics{
		accepted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chandlery_quota_authorize_accepted_total",
			Help: "Order submissions accepted by the quota guard.",
		}, []string{"tariff"}),
		rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chandlery_quota_authorize_rejected_total",
			Help: "Order submissions rejected by the quota guard.",
		}, []string{"tariff", "reason"}),
	}
}

func (m *QuotaMetrics) RecordAccepted(tariff string) {
	if m == nil {
		return
	}
	m.accepted.WithLabelValues(tariff).Inc()
}

func (m *QuotaMetrics) RecordRejected(tariff, reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(tariff, reason).Inc()
}

// GinMiddleware instruments inbound requests.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		status := statusClass(c.Writer.Status())
		m.requests.WithLabelValues(route, c.Request.Method, status).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
