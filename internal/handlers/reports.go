package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"safetypal/internal/metrics"
	"safetypal/internal/report"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SubmitReportRequest is the JSON body for report submission. Timestamp and
// location accept the legacy shapes older clients still send.
type SubmitReportRequest struct {
	IncidentType     string           `json:"incidentType"`
	Description      string           `json:"description"`
	SeverityReported int              `json:"severityReported"`
	Images           []string         `json:"images"`
	LocationName     string           `json:"locationName"`
	Location         *report.GeoPoint `json:"location"`
	SubmittedAt      report.FlexTime  `json:"submittedAt"`
}

// decisionRequest is the JSON body for approve and reject calls
type decisionRequest struct {
	AdminID  string `json:"admin_id"`
	Severity int    `json:"severity"`
	Reason   string `json:"reason"`
}

// reportView decorates a report with its derived map viewer URL
type reportView struct {
	report.IncidentReport
	MapURL string `json:"map_url,omitempty"`
}

// HandleReportSubmit accepts a new incident report and stores it as pending.
func (h *Handler) HandleReportSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.SeverityReported != 0 && (req.SeverityReported < 1 || req.SeverityReported > 5) {
		writeError(w, http.StatusBadRequest, "severityReported must be between 1 and 5")
		return
	}

	rep := report.IncidentReport{
		ID:               uuid.NewString(),
		IncidentType:     req.IncidentType,
		Description:      req.Description,
		SeverityReported: req.SeverityReported,
		Images:           req.Images,
		LocationName:     req.LocationName,
		Location:         req.Location,
		SubmittedAt:      req.SubmittedAt,
		Status:           report.StatusPending,
	}
	if rep.SubmittedAt.IsZero() {
		rep.SubmittedAt = report.NewFlexTime(time.Now().UTC())
	}

	if err := h.store.CreateReport(r.Context(), rep); err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.ReportsIngestedTotal.Inc()
	log.Info().
		Str("report_id", rep.ID).
		Str("incident_type", rep.IncidentType).
		Msg("Report submitted")

	writeJSON(w, http.StatusCreated, rep)
}

// HandleReportList returns a filtered, paginated report listing.
// Query parameters: status (default pending), type, from, to (YYYY-MM-DD,
// inclusive), page, page_size.
func (h *Handler) HandleReportList(w http.ResponseWriter, r *http.Request) {
	q := report.ListQuery{
		Status:        report.StatusPending,
		TypeSubstring: r.URL.Query().Get("type"),
	}

	if status := r.URL.Query().Get("status"); status != "" {
		q.Status = report.Status(status)
		if !q.Status.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", status))
			return
		}
	}

	var err error
	if q.DateFrom, err = parseDateParam(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.DateTo, err = parseDateParam(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if q.Page, err = parseIntParam(r, "page"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.PageSize, err = parseIntParam(r, "page_size"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := report.List(r.Context(), h.store, q)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleReportGet returns a single report with its derived map URL.
func (h *Handler) HandleReportGet(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.GetReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reportView{IncidentReport: *rep, MapURL: rep.MapURL()})
}

// HandleReportApprove validates a pending report.
func (h *Handler) HandleReportApprove(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}

	rep, err := h.engine.Approve(r.Context(), r.PathValue("id"), req.AdminID, req.Severity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// HandleReportReject rejects a pending report.
func (h *Handler) HandleReportReject(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}

	rep, err := h.engine.Reject(r.Context(), r.PathValue("id"), req.AdminID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// HandleReportAudit returns the audit trail of one report, oldest first.
func (h *Handler) HandleReportAudit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Surface a 404 for unknown reports rather than an empty trail
	if _, err := h.store.GetReport(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	entries, err := h.store.ListAuditFor(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []report.AuditEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleAuditLog returns the most recent audit entries across all reports,
// newest first. The limit query parameter caps the page.
func (h *Handler) HandleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := h.config.AuditLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.store.ListAuditLog(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []report.AuditEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) decodeDecision(w http.ResponseWriter, r *http.Request) (decisionRequest, bool) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return req, false
	}
	if req.AdminID == "" {
		req.AdminID = h.config.DefaultAdminID
	}
	return req, true
}

// parseDateParam reads an inclusive YYYY-MM-DD bound in server-local time.
func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%s must be a YYYY-MM-DD date", name)
	}
	return &t, nil
}

func parseIntParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}
