package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkReport(id, incidentType string, submitted time.Time) IncidentReport {
	return IncidentReport{
		ID:           id,
		IncidentType: incidentType,
		SubmittedAt:  NewFlexTime(submitted),
		Status:       StatusPending,
	}
}

func TestFilterPage_TypeSubstring(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	reports := []IncidentReport{
		mkReport("a", "Harassment", base),
		mkReport("b", "Sexual Harassment", base.Add(time.Minute)),
		mkReport("c", "Theft", base.Add(2*time.Minute)),
		mkReport("d", "", base.Add(3*time.Minute)),
	}

	page := FilterPage(reports, ListQuery{Status: StatusPending, TypeSubstring: "harass"})
	require.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.TotalCount)
	// Newest first
	assert.Equal(t, "b", page.Items[0].ID)
	assert.Equal(t, "a", page.Items[1].ID)
}

func TestFilterPage_TypelessNeverMatches(t *testing.T) {
	reports := []IncidentReport{
		mkReport("a", "", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)),
	}

	// No filter: included
	page := FilterPage(reports, ListQuery{Status: StatusPending})
	assert.Equal(t, 1, page.TotalCount)

	// Any non-empty filter: excluded
	page = FilterPage(reports, ListQuery{Status: StatusPending, TypeSubstring: "x"})
	assert.Equal(t, 0, page.TotalCount)
}

func TestFilterPage_DateBoundsInclusive(t *testing.T) {
	reports := []IncidentReport{
		mkReport("before", "theft", time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC)),
		mkReport("start", "theft", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)),
		mkReport("late", "theft", time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)),
		mkReport("after", "theft", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)),
	}

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	page := FilterPage(reports, ListQuery{Status: StatusPending, DateFrom: &day, DateTo: &day})
	require.Len(t, page.Items, 2)
	assert.Equal(t, "late", page.Items[0].ID)
	assert.Equal(t, "start", page.Items[1].ID)
}

func TestFilterPage_ZeroSubmittedAtExcludedFromDateFilter(t *testing.T) {
	reports := []IncidentReport{
		mkReport("dated", "theft", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)),
		mkReport("undated", "theft", time.Time{}),
	}

	// No bounds: both pass
	page := FilterPage(reports, ListQuery{Status: StatusPending})
	assert.Equal(t, 2, page.TotalCount)

	// Either bound set: the undated report is filtered out
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	page = FilterPage(reports, ListQuery{Status: StatusPending, DateFrom: &from})
	require.Len(t, page.Items, 1)
	assert.Equal(t, "dated", page.Items[0].ID)
}

func TestFilterPage_Pagination(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var reports []IncidentReport
	for i := 0; i < 23; i++ {
		reports = append(reports, mkReport(fmt.Sprintf("r%02d", i), "theft", base.Add(time.Duration(i)*time.Hour)))
	}

	page := FilterPage(reports, ListQuery{Status: StatusPending, Page: 2, PageSize: 10})
	assert.Equal(t, 23, page.TotalCount)
	assert.Equal(t, 3, page.PageCount)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Len(t, page.Items, 10)

	// Out-of-range page clamps to the last page
	page = FilterPage(reports, ListQuery{Status: StatusPending, Page: 5, PageSize: 10})
	assert.Equal(t, 3, page.CurrentPage)
	assert.Len(t, page.Items, 3)

	// Page zero clamps to the first page
	page = FilterPage(reports, ListQuery{Status: StatusPending, Page: 0, PageSize: 10})
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Items, 10)
}

func TestFilterPage_EmptyResultStillHasOnePage(t *testing.T) {
	page := FilterPage(nil, ListQuery{Status: StatusPending, Page: 3, PageSize: 10})
	assert.Equal(t, 0, page.TotalCount)
	assert.Equal(t, 1, page.PageCount)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Empty(t, page.Items)
}

func TestFilterPage_DefaultPageSize(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var reports []IncidentReport
	for i := 0; i < 12; i++ {
		reports = append(reports, mkReport(fmt.Sprintf("r%02d", i), "theft", base.Add(time.Duration(i)*time.Hour)))
	}

	page := FilterPage(reports, ListQuery{Status: StatusPending})
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 2, page.PageCount)
}

func TestList_UnknownStatus(t *testing.T) {
	store := &MockStore{}
	_, err := List(context.Background(), store, ListQuery{Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestList_StatusSelectionServerSide(t *testing.T) {
	var requested Status
	store := &MockStore{
		ListReportsFunc: func(ctx context.Context, status Status) ([]IncidentReport, error) {
			requested = status
			return []IncidentReport{mkReport("a", "theft", time.Now())}, nil
		},
	}

	page, err := List(context.Background(), store, ListQuery{Status: StatusValidated})
	require.NoError(t, err)
	assert.Equal(t, StatusValidated, requested)
	assert.Equal(t, 1, page.TotalCount)
}
