package routing

import (
	"net/http"

	"safetypal/internal/handlers"
	"safetypal/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the configuration needed for setting up routes
type Config struct {
	Handlers *handlers.Handler
	Logger   zerolog.Logger

	// TracingEnabled wraps the router in an otelhttp server span when set.
	TracingEnabled bool
}

// SetupRouter creates and configures the HTTP router with all routes and middleware
func SetupRouter(cfg Config) http.Handler {
	h := cfg.Handlers
	mux := http.NewServeMux()

	// Create CrossOriginProtection for CSRF protection on mutating routes
	cop := http.NewCrossOriginProtection()

	// Incident report lifecycle
	mux.Handle("POST /api/reports", cop.Handler(http.HandlerFunc(h.HandleReportSubmit)))
	mux.HandleFunc("GET /api/reports", h.HandleReportList)
	mux.HandleFunc("GET /api/reports/{id}", h.HandleReportGet)
	mux.Handle("POST /api/reports/{id}/approve", cop.Handler(http.HandlerFunc(h.HandleReportApprove)))
	mux.Handle("POST /api/reports/{id}/reject", cop.Handler(http.HandlerFunc(h.HandleReportReject)))

	// Audit trail (read-only; entries are only ever created by decisions)
	mux.HandleFunc("GET /api/reports/{id}/audit", h.HandleReportAudit)
	mux.HandleFunc("GET /api/audit-log", h.HandleAuditLog)

	// Dashboard statistics
	mux.HandleFunc("GET /api/stats", h.HandleStats)

	// Safe zone CRUD
	mux.HandleFunc("GET /api/safe-zones", h.HandleSafeZoneList)
	mux.Handle("POST /api/safe-zones", cop.Handler(http.HandlerFunc(h.HandleSafeZoneCreate)))
	mux.HandleFunc("GET /api/safe-zones/{id}", h.HandleSafeZoneGet)
	mux.Handle("PUT /api/safe-zones/{id}", cop.Handler(http.HandlerFunc(h.HandleSafeZoneUpdate)))
	mux.Handle("DELETE /api/safe-zones/{id}", cop.Handler(http.HandlerFunc(h.HandleSafeZoneDelete)))

	// Global settings
	mux.HandleFunc("GET /api/settings", h.HandleSettingsGet)
	mux.Handle("PUT /api/settings", cop.Handler(http.HandlerFunc(h.HandleSettingsPut)))

	// Operational endpoints
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Apply middleware in order (outermost first, innermost last)
	var handler http.Handler = mux

	// 1. Trace server spans around the mux
	if cfg.TracingEnabled {
		handler = otelhttp.NewHandler(handler, "safetypal.http")
	}

	// 2. Apply logging middleware (outermost - wraps everything)
	handler = middleware.LoggingMiddleware(cfg.Logger)(handler)

	return handler
}
