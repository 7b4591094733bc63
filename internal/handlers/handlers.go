// Package handlers implements the JSON API surface of the moderation
// service.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"safetypal/internal/report"

	"github.com/rs/zerolog/log"
)

// Config holds handler configuration options
type Config struct {
	// DefaultAdminID is attributed to decisions whose request body names no
	// admin, e.g. automated clients.
	DefaultAdminID string

	// AuditLogLimit is the default page size for the global audit feed.
	AuditLogLimit int
}

// Handler contains all HTTP handler methods and their dependencies.
// Dependencies are injected via the constructor for better testability.
type Handler struct {
	engine   *report.Engine
	store    report.Store
	zones    report.SafeZoneStore
	settings report.SettingsStore
	agg      *report.Aggregator
	config   Config
}

// NewHandler creates a new Handler with all required dependencies.
// This constructor pattern ensures the Handler is always fully initialized.
func NewHandler(
	engine *report.Engine,
	store report.Store,
	zones report.SafeZoneStore,
	settings report.SettingsStore,
	agg *report.Aggregator,
	config Config,
) *Handler {
	if config.DefaultAdminID == "" {
		config.DefaultAdminID = "admin-system"
	}
	if config.AuditLogLimit <= 0 {
		config.AuditLogLimit = 50
	}
	return &Handler{
		engine:   engine,
		store:    store,
		zones:    zones,
		settings: settings,
		agg:      agg,
		config:   config,
	}
}

// errorResponse is the uniform error envelope for the JSON API
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps the engine's error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, report.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, report.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, report.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, report.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, report.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg("Unhandled error in request")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
