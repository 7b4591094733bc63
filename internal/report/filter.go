package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultPageSize is used when a list query does not specify one
const DefaultPageSize = 10

// ListQuery describes a filtered, paginated report listing.
// Status selection happens server-side in the store; the type substring and
// date bounds are applied to the selected set before pagination.
type ListQuery struct {
	Status        Status
	TypeSubstring string
	DateFrom      *time.Time // inclusive, start of range
	DateTo        *time.Time // inclusive, normalized to the end of its calendar day
	Page          int
	PageSize      int
}

// ListPage is one page of a filtered report listing.
type ListPage struct {
	Items       []IncidentReport `json:"items"`
	TotalCount  int              `json:"totalCount"`
	PageCount   int              `json:"pageCount"`
	CurrentPage int              `json:"currentPage"`
	PageSize    int              `json:"pageSize"`
}

// List runs a filtered, paginated query against the store.
func List(ctx context.Context, store Store, q ListQuery) (*ListPage, error) {
	if !q.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, q.Status)
	}
	reports, err := store.ListReports(ctx, q.Status)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return FilterPage(reports, q), nil
}

// FilterPage applies the type and date filters to reports and paginates the
// result. Pagination operates over the filtered set; the requested page is
// clamped to [1, pageCount] and pageCount is never below 1, so an
// out-of-range request returns the last page rather than nothing.
func FilterPage(reports []IncidentReport, q ListQuery) *ListPage {
	filtered := make([]IncidentReport, 0, len(reports))
	typeFilter := strings.ToLower(q.TypeSubstring)

	var dateTo time.Time
	if q.DateTo != nil {
		dateTo = endOfDay(*q.DateTo)
	}

	for _, rep := range reports {
		if typeFilter != "" {
			// Reports without a type never match a non-empty filter
			if rep.IncidentType == "" || !strings.Contains(strings.ToLower(rep.IncidentType), typeFilter) {
				continue
			}
		}

		if q.DateFrom != nil || q.DateTo != nil {
			submitted := rep.SubmittedAt.Time
			if submitted.IsZero() {
				continue
			}
			if q.DateFrom != nil && submitted.Before(*q.DateFrom) {
				continue
			}
			if q.DateTo != nil && submitted.After(dateTo) {
				continue
			}
		}

		filtered = append(filtered, rep)
	}

	// Newest first for display
	sort.SliceStable(filtered, func(i, j int) bool {
		ti, tj := filtered[i].SubmittedAt.Time, filtered[j].SubmittedAt.Time
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return filtered[i].ID < filtered[j].ID
	})

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(filtered)
	pageCount := (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &ListPage{
		Items:       filtered[start:end],
		TotalCount:  total,
		PageCount:   pageCount,
		CurrentPage: page,
		PageSize:    pageSize,
	}
}

// endOfDay normalizes t to 23:59:59.999 of its calendar day
func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
