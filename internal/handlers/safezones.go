package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"safetypal/internal/report"

	"github.com/google/uuid"
)

// SafeZoneRequest is the JSON body for creating or updating a safe zone
type SafeZoneRequest struct {
	Name     string           `json:"name"`
	Type     string           `json:"type"`
	Contact  string           `json:"contact"`
	Location *report.GeoPoint `json:"location"`
	Active   *bool            `json:"active"`
}

func (req SafeZoneRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !report.ValidSafeZoneType(req.Type) {
		return fmt.Errorf("type must be one of %s", strings.Join(report.SafeZoneTypes, ", "))
	}
	if strings.TrimSpace(req.Contact) == "" {
		return fmt.Errorf("contact is required")
	}
	return nil
}

// HandleSafeZoneCreate registers a new safe zone.
func (h *Handler) HandleSafeZoneCreate(w http.ResponseWriter, r *http.Request) {
	var req SafeZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	zone := report.SafeZone{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Type:      req.Type,
		Contact:   req.Contact,
		Location:  req.Location,
		Active:    active,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.zones.CreateSafeZone(r.Context(), zone); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, zone)
}

// HandleSafeZoneList returns all safe zones.
func (h *Handler) HandleSafeZoneList(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zones.ListSafeZones(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if zones == nil {
		zones = []report.SafeZone{}
	}

	writeJSON(w, http.StatusOK, zones)
}

// HandleSafeZoneGet returns one safe zone by id.
func (h *Handler) HandleSafeZoneGet(w http.ResponseWriter, r *http.Request) {
	zone, err := h.zones.GetSafeZone(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, zone)
}

// HandleSafeZoneUpdate replaces a safe zone's mutable fields.
func (h *Handler) HandleSafeZoneUpdate(w http.ResponseWriter, r *http.Request) {
	existing, err := h.zones.GetSafeZone(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req SafeZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	zone := *existing
	zone.Name = req.Name
	zone.Type = req.Type
	zone.Contact = req.Contact
	zone.Location = req.Location
	if req.Active != nil {
		zone.Active = *req.Active
	}

	if err := h.zones.UpdateSafeZone(r.Context(), zone); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, zone)
}

// HandleSafeZoneDelete removes a safe zone.
func (h *Handler) HandleSafeZoneDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.zones.DeleteSafeZone(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
