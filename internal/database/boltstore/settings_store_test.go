package boltstore

import (
	"context"
	"testing"

	"safetypal/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsStore_DefaultsWhenUnset(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t).SettingsStore()

	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.DefaultSettings(), settings)
}

func TestSettingsStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t).SettingsStore()

	want := report.SystemSettings{
		CommunityRadius:           10,
		RiskDecayDays:             14,
		MinSeverityAlertThreshold: 4,
	}
	require.NoError(t, store.PutSettings(ctx, want))

	got, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Overwrite replaces the whole document
	want.CommunityRadius = 2
	require.NoError(t, store.PutSettings(ctx, want))

	got, err = store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.CommunityRadius)
}
