package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records outbound calls made to the spreadsheet record API.
type GatewayMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sheets_request_duration_seconds",
		Help:    "Duration of spreadsheet API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "op"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheets_requests_total",
		Help: "Spreadsheet API calls by response status.",
	}, []string{"collection", "op", "status"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheets_request_failures_total",
		Help: "Spreadsheet API calls that failed in transport or returned an error status.",
	}, []string{"collection", "op"})
	reg.MustRegister(duration, requests, failure)
	return &GatewayMetrics{
		duration: duration,
		requests: requests,
		failure:  failure,
	}
}

// Observe records a completed call. status is zero when no response was received.
func (g *GatewayMetrics) Observe(collection, op string, status int, duration time.Duration) {
	if g == nil || g.duration == nil {
		return
	}
	collection, op = normalizeLabel(collection), normalizeLabel(op)
	g.duration.WithLabelValues(collection, op).Observe(duration.Seconds())
	g.requests.WithLabelValues(collection, op, statusLabel(status)).Inc()
}

// IncFailure increments the failure counter for the collection operation.
func (g *GatewayMetrics) IncFailure(collection, op string) {
	if g == nil || g.failure == nil {
		return
	}
	g.failure.WithLabelValues(normalizeLabel(collection), normalizeLabel(op)).Inc()
}

func statusLabel(status int) string {
	if status <= 0 {
		return "none"
	}
	return strconv.Itoa(status)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
