package handlers

import (
	"net/http"
)

// HandleStats returns the dashboard statistics snapshot.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.agg.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
