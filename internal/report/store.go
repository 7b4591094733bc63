package report

import (
	"context"
)

// Store defines the persistence interface for incident reports and their
// audit trail. Implementations must be safe for concurrent use and must make
// Transition atomic: the record update and the audit append both commit or
// neither is visible. The status check inside Transition must be a
// compare-and-set keyed on the report id, so concurrent transitions against
// the same report serialize while unrelated reports proceed concurrently.
type Store interface {
	// Report lifecycle
	CreateReport(ctx context.Context, rep IncidentReport) error
	GetReport(ctx context.Context, id string) (*IncidentReport, error)
	ListReports(ctx context.Context, status Status) ([]IncidentReport, error)
	ListAllReports(ctx context.Context) ([]IncidentReport, error)
	Transition(ctx context.Context, reportID string, d Decision) (*IncidentReport, error)

	// Audit log (append-only; no update or delete exists)
	AppendAudit(ctx context.Context, entry AuditEntry) error
	ListAuditFor(ctx context.Context, targetID string) ([]AuditEntry, error)
	ListAuditLog(ctx context.Context, limit int) ([]AuditEntry, error)

	// Incremental per-status counters, maintained transactionally alongside
	// creates and transitions. The aggregator's full scan is the authority;
	// these exist so dashboard reads avoid an unbounded scan.
	StatusCounts(ctx context.Context) (map[Status]int, error)
}

// SafeZoneStore defines plain CRUD persistence for safe zones.
type SafeZoneStore interface {
	CreateSafeZone(ctx context.Context, zone SafeZone) error
	GetSafeZone(ctx context.Context, id string) (*SafeZone, error)
	ListSafeZones(ctx context.Context) ([]SafeZone, error)
	UpdateSafeZone(ctx context.Context, zone SafeZone) error
	DeleteSafeZone(ctx context.Context, id string) error
}

// SettingsStore defines key/value persistence for the global settings document.
type SettingsStore interface {
	GetSettings(ctx context.Context) (SystemSettings, error)
	PutSettings(ctx context.Context, s SystemSettings) error
}
