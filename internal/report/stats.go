package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"safetypal/internal/tracing"
)

// Snapshot is the dashboard statistics view over the full report store.
type Snapshot struct {
	Pending         int    `json:"pending"`
	Validated       int    `json:"validated"`
	Rejected        int    `json:"rejected"`
	TodayReports    int    `json:"todayReports"`
	WeekReports     int    `json:"weekReports"`
	TopIncidentType string `json:"topIncidentType"`
}

// Aggregator derives dashboard statistics from the report store.
// It recomputes on demand with a full snapshot read; the store's incremental
// counters serve the same numbers cheaply and Reconcile detects drift
// between the two.
type Aggregator struct {
	store Store
	now   func() time.Time
}

// NewAggregator creates an aggregator over the given store
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{
		store: store,
		now:   time.Now,
	}
}

// Snapshot computes current statistics with a full scan.
// "Today" is bounded by the local calendar day; "week" is a rolling trailing
// 7x24h window. The top incident type counts every report regardless of
// status; reports without a type count as "Unknown"; ties break toward the
// type that appears first in submission order.
func (a *Aggregator) Snapshot(ctx context.Context) (*Snapshot, error) {
	ctx, span := tracing.StoreSpan(ctx, "stats.scan")
	defer span.End()

	reports, err := a.store.ListAllReports(ctx)
	if err != nil {
		tracing.EndWithError(span, err)
		return nil, fmt.Errorf("stats scan: %w", err)
	}
	sortBySubmission(reports)

	now := a.now()
	year, month, day := now.Date()
	startOfToday := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	startOfWeek := now.Add(-7 * 24 * time.Hour)

	snap := &Snapshot{TopIncidentType: "—"}
	typeCounts := make(map[string]int)
	var typeOrder []string

	for _, rep := range reports {
		switch rep.Status {
		case StatusPending:
			snap.Pending++
		case StatusValidated:
			snap.Validated++
		case StatusRejected:
			snap.Rejected++
		}

		if submitted := rep.SubmittedAt.Time; !submitted.IsZero() {
			if !submitted.Before(startOfToday) {
				snap.TodayReports++
			}
			if !submitted.Before(startOfWeek) {
				snap.WeekReports++
			}
		}

		incidentType := rep.IncidentType
		if incidentType == "" {
			incidentType = "Unknown"
		}
		if _, seen := typeCounts[incidentType]; !seen {
			typeOrder = append(typeOrder, incidentType)
		}
		typeCounts[incidentType]++
	}

	// First-seen order makes the tie-break deterministic
	best := 0
	for _, incidentType := range typeOrder {
		if typeCounts[incidentType] > best {
			best = typeCounts[incidentType]
			snap.TopIncidentType = incidentType
		}
	}

	return snap, nil
}

// Reconcile compares the store's incremental counters against a full scan.
// Returns nil when they agree; a descriptive error naming the drifting
// status otherwise.
func (a *Aggregator) Reconcile(ctx context.Context) error {
	snap, err := a.Snapshot(ctx)
	if err != nil {
		return err
	}
	counts, err := a.store.StatusCounts(ctx)
	if err != nil {
		return fmt.Errorf("stats counters: %w", err)
	}

	scanned := map[Status]int{
		StatusPending:   snap.Pending,
		StatusValidated: snap.Validated,
		StatusRejected:  snap.Rejected,
	}
	for _, status := range AllStatuses() {
		if counts[status] != scanned[status] {
			return fmt.Errorf("counter drift for %s: counter=%d scan=%d",
				status, counts[status], scanned[status])
		}
	}
	return nil
}

// sortBySubmission orders reports by submission time ascending, then by id.
// This is the stable input order the top-type tie-break is defined over.
func sortBySubmission(reports []IncidentReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		ti, tj := reports[i].SubmittedAt.Time, reports[j].SubmittedAt.Time
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return reports[i].ID < reports[j].ID
	})
}
