package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rewards",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	// LedgerEntries counts appended ledger rows by direction (credit, debit).
	LedgerEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "ledger",
			Name:      "entries_total",
			Help:      "Total number of points ledger entries appended.",
		},
		[]string{"direction"},
	)

	// ApplicationReviews counts application decisions by outcome.
	ApplicationReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "applications",
			Name:      "reviews_total",
			Help:      "Total number of reviewed sponsor applications.",
		},
		[]string{"decision"},
	)

	// TokenRefreshes counts marketplace OAuth token exchanges by result.
	TokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rewards",
			Subsystem: "marketplace",
			Name:      "token_refreshes_total",
			Help:      "Total number of marketplace OAuth token exchanges.",
		},
		[]string{"result"},
	)

	// Users, Applications and OutstandingPoints are refreshed periodically from the database.
	Users = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "rewards",
			Subsystem: "platform",
			Name:      "users",
			Help:      "Registered users by role.",
		},
		[]string{"role"},
	)

	Applications = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "rewards",
			Subsystem: "platform",
			Name:      "applications",
			Help:      "Sponsor applications by status.",
		},
		[]string{"status"},
	)

	OutstandingPoints = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rewards",
			Subsystem: "platform",
			Name:      "outstanding_points",
			Help:      "Sum of every driver's point balance.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		LedgerEntries,
		ApplicationReviews,
		TokenRefreshes,
		Users,
		Applications,
		OutstandingPoints,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Middleware records request counts and latency labelled by the matched route
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

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
