package handlers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"safetypal/internal/database/boltstore"
	"safetypal/internal/report"

	"github.com/stretchr/testify/require"
)

// TestContext wires a Handler against a real bolt store in a temp directory.
type TestContext struct {
	Handler *Handler
	Store   *boltstore.Store
	Reports *boltstore.ReportStore
}

// NewTestContext builds a fully wired handler for tests.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	store, err := boltstore.Open(boltstore.Options{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})

	reports := store.ReportStore()
	engine := report.NewEngine(reports, time.Second)
	agg := report.NewAggregator(reports)

	h := NewHandler(engine, reports, store.SafeZoneStore(), store.SettingsStore(), agg, Config{
		DefaultAdminID: "admin-system",
	})

	return &TestContext{
		Handler: h,
		Store:   store,
		Reports: reports,
	}
}

// SeedReport inserts a pending report with deterministic fields.
func (tc *TestContext) SeedReport(t *testing.T, id, incidentType string, submitted time.Time) report.IncidentReport {
	t.Helper()

	rep := report.IncidentReport{
		ID:           id,
		IncidentType: incidentType,
		Description:  "Seeded incident for " + id,
		SubmittedAt:  report.NewFlexTime(submitted),
		Status:       report.StatusPending,
	}
	require.NoError(t, tc.Reports.CreateReport(context.Background(), rep))
	return rep
}
