package report

import (
	"context"
)

// MockStore is a mock implementation of the Store interface for testing.
// Uses function fields to allow tests to inject custom behavior.
type MockStore struct {
	CreateReportFunc   func(ctx context.Context, rep IncidentReport) error
	GetReportFunc      func(ctx context.Context, id string) (*IncidentReport, error)
	ListReportsFunc    func(ctx context.Context, status Status) ([]IncidentReport, error)
	ListAllReportsFunc func(ctx context.Context) ([]IncidentReport, error)
	TransitionFunc     func(ctx context.Context, reportID string, d Decision) (*IncidentReport, error)

	AppendAuditFunc  func(ctx context.Context, entry AuditEntry) error
	ListAuditForFunc func(ctx context.Context, targetID string) ([]AuditEntry, error)
	ListAuditLogFunc func(ctx context.Context, limit int) ([]AuditEntry, error)

	StatusCountsFunc func(ctx context.Context) (map[Status]int, error)
}

// CreateReport calls the mock function or returns nil if not set
func (m *MockStore) CreateReport(ctx context.Context, rep IncidentReport) error {
	if m.CreateReportFunc != nil {
		return m.CreateReportFunc(ctx, rep)
	}
	return nil
}

// GetReport calls the mock function or returns nil if not set
func (m *MockStore) GetReport(ctx context.Context, id string) (*IncidentReport, error) {
	if m.GetReportFunc != nil {
		return m.GetReportFunc(ctx, id)
	}
	return nil, nil
}

// ListReports calls the mock function or returns nil if not set
func (m *MockStore) ListReports(ctx context.Context, status Status) ([]IncidentReport, error) {
	if m.ListReportsFunc != nil {
		return m.ListReportsFunc(ctx, status)
	}
	return nil, nil
}

// ListAllReports calls the mock function or returns nil if not set
func (m *MockStore) ListAllReports(ctx context.Context) ([]IncidentReport, error) {
	if m.ListAllReportsFunc != nil {
		return m.ListAllReportsFunc(ctx)
	}
	return nil, nil
}

// Transition calls the mock function or returns nil if not set
func (m *MockStore) Transition(ctx context.Context, reportID string, d Decision) (*IncidentReport, error) {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, reportID, d)
	}
	return nil, nil
}

// AppendAudit calls the mock function or returns nil if not set
func (m *MockStore) AppendAudit(ctx context.Context, entry AuditEntry) error {
	if m.AppendAuditFunc != nil {
		return m.AppendAuditFunc(ctx, entry)
	}
	return nil
}

// ListAuditFor calls the mock function or returns nil if not set
func (m *MockStore) ListAuditFor(ctx context.Context, targetID string) ([]AuditEntry, error) {
	if m.ListAuditForFunc != nil {
		return m.ListAuditForFunc(ctx, targetID)
	}
	return nil, nil
}

// ListAuditLog calls the mock function or returns nil if not set
func (m *MockStore) ListAuditLog(ctx context.Context, limit int) ([]AuditEntry, error) {
	if m.ListAuditLogFunc != nil {
		return m.ListAuditLogFunc(ctx, limit)
	}
	return nil, nil
}

// StatusCounts calls the mock function or returns nil if not set
func (m *MockStore) StatusCounts(ctx context.Context) (map[Status]int, error) {
	if m.StatusCountsFunc != nil {
		return m.StatusCountsFunc(ctx)
	}
	return nil, nil
}
