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
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cress_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cress_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	auditWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cress_audit_writes_total",
		Help: "Activity log writes by outcome.",
	}, []string{"outcome"})

	alertBroadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cress_alert_broadcast_recipients_total",
		Help: "Alert broadcast deliveries by outcome.",
	}, []string{"outcome"})
)

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) { h.ServeHTTP(c.Writer, c.Request) }
}

func ObserveAuditWrite(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	auditWrites.WithLabelValues(outcome).Inc()
}

func ObserveBroadcast(ok bool) {
	outcome := "sent"
	if !ok {
		outcome = "failed"
	}
	alertBroadcasts.WithLabelValues(outcome).Inc()
}
