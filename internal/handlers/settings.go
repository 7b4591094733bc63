package handlers

import (
	"encoding/json"
	"net/http"

	"safetypal/internal/report"
)

// HandleSettingsGet returns the global settings, falling back to defaults
// when nothing has been saved.
func (h *Handler) HandleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// HandleSettingsPut replaces the global settings document.
func (h *Handler) HandleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var settings report.SystemSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := settings.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.settings.PutSettings(r.Context(), settings); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
