package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safetypal_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "safetypal_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Moderation metrics
var (
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safetypal_transitions_total",
		Help: "Total number of moderation transition attempts",
	}, []string{"action", "outcome"})

	ReportsIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safetypal_reports_ingested_total",
		Help: "Total number of incident reports accepted for moderation",
	})

	AuditEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safetypal_audit_entries_total",
		Help: "Total number of audit log entries appended",
	})
)

// Business metrics (gauges updated periodically by collector)
var (
	ReportsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "safetypal_reports_by_status",
		Help: "Number of incident reports by lifecycle status",
	}, []string{"status"})

	SafeZonesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safetypal_safe_zones_active",
		Help: "Number of active safe zones",
	})
)

// NormalizePath reduces high-cardinality path labels by replacing dynamic
// segments with placeholders. This keeps the metric label space bounded.
func NormalizePath(path string) string {
	segments := splitPath(path)
	if len(segments) < 3 || segments[0] != "api" {
		return path
	}

	switch segments[1] {
	case "reports":
		if len(segments) == 3 {
			return "/api/reports/:id"
		}
		if len(segments) == 4 {
			switch segments[3] {
			case "approve", "reject", "audit":
				return "/api/reports/:id/" + segments[3]
			}
		}
	case "safe-zones":
		if len(segments) == 3 {
			return "/api/safe-zones/:id"
		}
	}

	return path
}

func splitPath(path string) []string {
	// Skip leading slash
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	// Split on /
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		segments = append(segments, path[start:])
	}
	return segments
}
