package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"safetypal/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	tc := NewTestContext(t)

	rec := httptest.NewRecorder()
	tc.Handler.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleReportSubmit(t *testing.T) {
	tc := NewTestContext(t)

	body := `{
		"incidentType": "harassment",
		"description": "Followed from the bus stop",
		"severityReported": 3,
		"locationName": "Bus Stop 12",
		"location": {"_latitude": "6.5244", "_longitude": "3.3792"},
		"submittedAt": {"seconds": 1710081000}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	tc.Handler.HandleReportSubmit(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created report.IncidentReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, report.StatusPending, created.Status)
	require.NotNil(t, created.Location)
	assert.Equal(t, 6.5244, created.Location.Latitude)
	assert.Equal(t, time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC), created.SubmittedAt.Time)

	// Submission without a timestamp defaults to now
	req = httptest.NewRequest(http.MethodPost, "/api/reports", bytes.NewBufferString(`{"incidentType":"theft"}`))
	rec = httptest.NewRecorder()
	tc.Handler.HandleReportSubmit(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.WithinDuration(t, time.Now(), created.SubmittedAt.Time, 5*time.Second)
}

func TestHandleReportSubmit_Invalid(t *testing.T) {
	tc := NewTestContext(t)

	req := httptest.NewRequest(http.MethodPost, "/api/reports", bytes.NewBufferString(`{"severityReported": 9}`))
	rec := httptest.NewRecorder()
	tc.Handler.HandleReportSubmit(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/reports", bytes.NewBufferString(`not json`))
	rec = httptest.NewRecorder()
	tc.Handler.HandleReportSubmit(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReportList(t *testing.T) {
	tc := NewTestContext(t)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tc.SeedReport(t, "r1", "Harassment", base)
	tc.SeedReport(t, "r2", "Theft", base.Add(time.Hour))
	tc.SeedReport(t, "r3", "Sexual Harassment", base.Add(2*time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/reports?type=harass", nil)
	rec := httptest.NewRecorder()
	tc.Handler.HandleReportList(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page report.ListPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 1, page.PageCount)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "r3", page.Items[0].ID)

	// Unknown status is a client error
	req = httptest.NewRequest(http.MethodGet, "/api/reports?status=bogus", nil)
	rec = httptest.NewRecorder()
	tc.Handler.HandleReportList(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed date is a client error
	req = httptest.NewRequest(http.MethodGet, "/api/reports?from=notadate", nil)
	rec = httptest.NewRecorder()
	tc.Handler.HandleReportList(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReportGet(t *testing.T) {
	tc := NewTestContext(t)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tc.SeedReport(t, "r1", "theft", base)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/r1", nil)
	req.SetPathValue("id", "r1")
	rec := httptest.NewRecorder()
	tc.Handler.HandleReportGet(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/missing", nil)
	req.SetPathValue("id", "missing")
	rec = httptest.NewRecorder()
	tc.Handler.HandleReportGet(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestHandleReportApprove(t *testing.T) {
	tc := NewTestContext(t)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tc.SeedReport(t, "r1", "theft", base)

	body := `{"admin_id": "admin-7", "severity": 4}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports/r1/approve", bytes.NewBufferString(body))
	req.SetPathValue("id", "r1")
	rec := httptest.NewRecorder()
	tc.Handler.HandleReportApprove(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep report.IncidentReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, report.StatusValidated, rep.Status)
	assert.Equal(t, "admin-7", rep.ValidatedBy)
	assert.Equal(t, 4, rep.AdminSeverity)

	// Second decision conflicts
	req = httptest.NewRequest(http.MethodPost, "/api/reports/r1/reject", bytes.NewBufferString(`{"reason": "spam"}`))
	req.SetPathValue("id", "r1")
	rec = httptest.NewRecorder()
	tc.Handler.HandleReportReject(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleReportReject_DefaultAdmin(t *testing.T) {
	tc := NewTestContext(t)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tc.SeedReport(t, "r1", "theft", base)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/r1/reject", bytes.NewBufferString(`{"reason": "duplicate"}`))
	req.SetPathValue("id", "r1")
	rec := httptest.NewRecorder()
	tc.Handler.HandleReportReject(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep report.IncidentReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "admin-system", rep.ValidatedBy)
	assert.Equal(t, "duplicate", rep.RejectionReason)
}

func TestHandleReportApprove_BadSeverity(t *testing.T) {
	tc := NewTestContext(t)
	tc.SeedReport(t, "r1", "theft", time.Now().UTC())

	req := httptest.NewRequest(http.MethodPost, "/api/reports/r1/approve", bytes.NewBufferString(`{"severity": 0}`))
	req.SetPathValue("id", "r1")
	rec := httptest.NewRecorder()
	tc.Handler.HandleReportApprove(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReportAudit(t *testing.T) {
	tc := NewTestContext(t)
	tc.SeedReport(t, "r1", "theft", time.Now().UTC())

	// Unknown report is a 404, not an empty list
	req := httptest.NewRequest(http.MethodGet, "/api/reports/missing/audit", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	tc.Handler.HandleReportAudit(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Untouched report has an empty trail
	req = httptest.NewRequest(http.MethodGet, "/api/reports/r1/audit", nil)
	req.SetPathValue("id", "r1")
	rec = httptest.NewRecorder()
	tc.Handler.HandleReportAudit(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	// After a decision the entry appears
	approve := httptest.NewRequest(http.MethodPost, "/api/reports/r1/approve", bytes.NewBufferString(`{"severity": 2}`))
	approve.SetPathValue("id", "r1")
	tc.Handler.HandleReportApprove(httptest.NewRecorder(), approve)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/reports/r1/audit", nil)
	req.SetPathValue("id", "r1")
	tc.Handler.HandleReportAudit(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []report.AuditEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, report.ActionApproveIncident, entries[0].Action)
}

func TestHandleAuditLog(t *testing.T) {
	tc := NewTestContext(t)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"r1", "r2"} {
		tc.SeedReport(t, id, "theft", base)
		req := httptest.NewRequest(http.MethodPost, "/api/reports/"+id+"/approve", bytes.NewBufferString(`{"severity": 3}`))
		req.SetPathValue("id", id)
		tc.Handler.HandleReportApprove(httptest.NewRecorder(), req)
	}

	rec := httptest.NewRecorder()
	tc.Handler.HandleAuditLog(rec, httptest.NewRequest(http.MethodGet, "/api/audit-log?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []report.AuditEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)

	rec = httptest.NewRecorder()
	tc.Handler.HandleAuditLog(rec, httptest.NewRequest(http.MethodGet, "/api/audit-log?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStats(t *testing.T) {
	tc := NewTestContext(t)
	now := time.Now()

	tc.SeedReport(t, "r1", "theft", now.Add(-time.Hour))
	tc.SeedReport(t, "r2", "theft", now.Add(-2*time.Hour))
	tc.SeedReport(t, "r3", "assault", now.Add(-10*24*time.Hour))

	approve := httptest.NewRequest(http.MethodPost, "/api/reports/r1/approve", bytes.NewBufferString(`{"severity": 5}`))
	approve.SetPathValue("id", "r1")
	tc.Handler.HandleReportApprove(httptest.NewRecorder(), approve)

	rec := httptest.NewRecorder()
	tc.Handler.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap report.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.Pending)
	assert.Equal(t, 1, snap.Validated)
	assert.Equal(t, 2, snap.WeekReports)
	assert.Equal(t, "theft", snap.TopIncidentType)
}

func TestHandleSafeZones_CRUD(t *testing.T) {
	tc := NewTestContext(t)

	body := `{"name": "St. Mary's Shelter", "type": "shelter", "contact": "+234-800-555-0101", "location": {"lat": 6.5, "lng": 3.4}}`
	rec := httptest.NewRecorder()
	tc.Handler.HandleSafeZoneCreate(rec, httptest.NewRequest(http.MethodPost, "/api/safe-zones", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var zone report.SafeZone
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &zone))
	assert.NotEmpty(t, zone.ID)
	assert.True(t, zone.Active)

	// Invalid type rejected
	rec = httptest.NewRecorder()
	tc.Handler.HandleSafeZoneCreate(rec, httptest.NewRequest(http.MethodPost, "/api/safe-zones",
		bytes.NewBufferString(`{"name": "X", "type": "castle", "contact": "y"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Update deactivates
	update := `{"name": "St. Mary's Shelter", "type": "shelter", "contact": "+234-800-555-0101", "active": false}`
	req := httptest.NewRequest(http.MethodPut, "/api/safe-zones/"+zone.ID, bytes.NewBufferString(update))
	req.SetPathValue("id", zone.ID)
	rec = httptest.NewRecorder()
	tc.Handler.HandleSafeZoneUpdate(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &zone))
	assert.False(t, zone.Active)

	// List and delete
	rec = httptest.NewRecorder()
	tc.Handler.HandleSafeZoneList(rec, httptest.NewRequest(http.MethodGet, "/api/safe-zones", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/safe-zones/"+zone.ID, nil)
	req.SetPathValue("id", zone.ID)
	rec = httptest.NewRecorder()
	tc.Handler.HandleSafeZoneDelete(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/safe-zones/"+zone.ID, nil)
	req.SetPathValue("id", zone.ID)
	rec = httptest.NewRecorder()
	tc.Handler.HandleSafeZoneGet(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSettings(t *testing.T) {
	tc := NewTestContext(t)

	rec := httptest.NewRecorder()
	tc.Handler.HandleSettingsGet(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var settings report.SystemSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, report.DefaultSettings(), settings)

	body := `{"community_radius": 8, "risk_decay_days": 21, "min_severity_alert_threshold": 2}`
	rec = httptest.NewRecorder()
	tc.Handler.HandleSettingsPut(rec, httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	tc.Handler.HandleSettingsGet(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, 8.0, settings.CommunityRadius)

	// Out-of-range threshold rejected
	bad := `{"community_radius": 8, "risk_decay_days": 21, "min_severity_alert_threshold": 9}`
	rec = httptest.NewRecorder()
	tc.Handler.HandleSettingsPut(rec, httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewBufferString(bad)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
