package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"safetypal/internal/report"
)

// ReportStore implements report.Store using SQLite. Transition runs inside a
// single transaction with a guarded UPDATE, so the pending check is a
// compare-and-set and the audit insert commits with the record update.
type ReportStore struct {
	db *sql.DB
}

// Ensure ReportStore implements the interface at compile time.
var _ report.Store = (*ReportStore)(nil)

const reportColumns = `id, incident_type, description, severity_reported, images,
	location_name, latitude, longitude, submitted_at, status,
	validated_by, validated_at, admin_severity, rejection_reason`

func (s *ReportStore) CreateReport(ctx context.Context, rep report.IncidentReport) error {
	if rep.ID == "" {
		return fmt.Errorf("%w: report id is required", report.ErrInvalidInput)
	}
	if !rep.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", report.ErrInvalidInput, rep.Status)
	}

	images, err := json.Marshal(rep.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	var lat, lng any
	if rep.Location != nil {
		lat, lng = rep.Location.Latitude, rep.Location.Longitude
	}
	var submittedAt string
	if !rep.SubmittedAt.IsZero() {
		submittedAt = rep.SubmittedAt.Format(time.RFC3339Nano)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO incident_reports
			(id, incident_type, description, severity_reported, images,
			 location_name, latitude, longitude, submitted_at, status,
			 validated_by, validated_at, admin_severity, rejection_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', NULL, 0, '')
	`, rep.ID, rep.IncidentType, rep.Description, rep.SeverityReported, string(images),
		rep.LocationName, lat, lng, submittedAt, string(rep.Status))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: report %s already exists", report.ErrInvalidInput, rep.ID)
		}
		return fmt.Errorf("create report: %w", err)
	}

	if err := bumpCounter(ctx, tx, rep.Status, 1); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *ReportStore) GetReport(ctx context.Context, id string) (*report.IncidentReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+reportColumns+` FROM incident_reports WHERE id = ?
	`, id)

	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, report.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *ReportStore) ListReports(ctx context.Context, status report.Status) ([]report.IncidentReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reportColumns+` FROM incident_reports WHERE status = ? ORDER BY submitted_at DESC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (s *ReportStore) ListAllReports(ctx context.Context) ([]report.IncidentReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reportColumns+` FROM incident_reports ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (s *ReportStore) Transition(ctx context.Context, reportID string, d report.Decision) (*report.IncidentReport, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM incident_reports WHERE id = ?`, reportID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, report.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	if report.Status(current) != report.StatusPending {
		return nil, report.ErrInvalidTransition
	}

	var next report.Status
	decidedAt := d.DecidedAt.Format(time.RFC3339Nano)
	var res sql.Result
	switch d.Action {
	case report.ActionApproveIncident:
		next = report.StatusValidated
		res, err = tx.ExecContext(ctx, `
			UPDATE incident_reports
			SET status = ?, validated_by = ?, validated_at = ?, admin_severity = ?
			WHERE id = ? AND status = 'pending'
		`, string(next), d.AdminID, decidedAt, d.Severity, reportID)
	case report.ActionRejectIncident:
		next = report.StatusRejected
		res, err = tx.ExecContext(ctx, `
			UPDATE incident_reports
			SET status = ?, validated_by = ?, validated_at = ?, rejection_reason = ?
			WHERE id = ? AND status = 'pending'
		`, string(next), d.AdminID, decidedAt, d.Reason, reportID)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", report.ErrInvalidInput, d.Action)
	}
	if err != nil {
		return nil, fmt.Errorf("apply transition: %w", err)
	}

	// The guarded UPDATE is the compare-and-set; zero rows means another
	// decision won between our read and write.
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, report.ErrInvalidTransition
	}

	if err := insertAudit(ctx, tx, d.AuditEntry(reportID)); err != nil {
		return nil, err
	}

	if err := bumpCounter(ctx, tx, report.StatusPending, -1); err != nil {
		return nil, err
	}
	if err := bumpCounter(ctx, tx, next, 1); err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+reportColumns+` FROM incident_reports WHERE id = ?
	`, reportID)
	rep, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("reread report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return rep, nil
}

func (s *ReportStore) AppendAudit(ctx context.Context, entry report.AuditEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit append: %w", err)
	}
	defer tx.Rollback()

	if err := insertAudit(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *ReportStore) ListAuditFor(ctx context.Context, targetID string) ([]report.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, admin_id, action, target_id, timestamp, details
		FROM admin_activity_logs WHERE target_id = ? ORDER BY timestamp ASC
	`, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

func (s *ReportStore) ListAuditLog(ctx context.Context, limit int) ([]report.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, admin_id, action, target_id, timestamp, details
		FROM admin_activity_logs ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

func (s *ReportStore) StatusCounts(ctx context.Context) (map[report.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, count FROM report_status_counters`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[report.Status]int, len(report.AllStatuses()))
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[report.Status(status)] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*report.IncidentReport, error) {
	var rep report.IncidentReport
	var images, submittedAt string
	var lat, lng sql.NullFloat64
	var validatedAt sql.NullString

	err := row.Scan(&rep.ID, &rep.IncidentType, &rep.Description, &rep.SeverityReported, &images,
		&rep.LocationName, &lat, &lng, &submittedAt, &rep.Status,
		&rep.ValidatedBy, &validatedAt, &rep.AdminSeverity, &rep.RejectionReason)
	if err != nil {
		return nil, err
	}

	_ = json.Unmarshal([]byte(images), &rep.Images)
	if lat.Valid && lng.Valid {
		rep.Location = &report.GeoPoint{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	if submittedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, submittedAt)
		if err == nil {
			rep.SubmittedAt = report.NewFlexTime(t)
		}
	}
	if validatedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, validatedAt.String)
		if err == nil {
			rep.ValidatedAt = &t
		}
	}

	return &rep, nil
}

func scanReports(rows *sql.Rows) ([]report.IncidentReport, error) {
	var reports []report.IncidentReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	return reports, rows.Err()
}

func scanAuditEntries(rows *sql.Rows) ([]report.AuditEntry, error) {
	var entries []report.AuditEntry
	for rows.Next() {
		var e report.AuditEntry
		var timestamp, details string
		if err := rows.Scan(&e.ID, &e.AdminID, &e.Action, &e.TargetID, &timestamp, &details); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		_ = json.Unmarshal([]byte(details), &e.Details)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func insertAudit(ctx context.Context, tx *sql.Tx, entry report.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		details = []byte("{}")
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO admin_activity_logs (id, admin_id, action, target_id, timestamp, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.AdminID, string(entry.Action), entry.TargetID,
		entry.Timestamp.Format(time.RFC3339Nano), string(details))
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func bumpCounter(ctx context.Context, tx *sql.Tx, status report.Status, delta int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO report_status_counters (status, count)
		VALUES (?, MAX(0, ?))
		ON CONFLICT(status) DO UPDATE SET count = MAX(0, count + ?)
	`, string(status), delta, delta)
	if err != nil {
		return fmt.Errorf("bump counter for %s: %w", status, err)
	}
	return nil
}

// isUniqueViolation detects a primary key conflict without depending on
// driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
