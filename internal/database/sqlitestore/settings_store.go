package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"safetypal/internal/report"
)

// settingsKey is the fixed key of the single global settings document.
const settingsKey = "global"

// SettingsStore implements report.SettingsStore using SQLite.
type SettingsStore struct {
	db *sql.DB
}

var _ report.SettingsStore = (*SettingsStore)(nil)

// GetSettings returns the stored settings, or the defaults when nothing has
// been saved yet.
func (s *SettingsStore) GetSettings(ctx context.Context) (report.SystemSettings, error) {
	settings := report.DefaultSettings()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM system_settings WHERE key = ?`, settingsKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("read settings: %w", err)
	}

	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return settings, fmt.Errorf("corrupt settings document: %w", err)
	}
	return settings, nil
}

// PutSettings replaces the global settings document.
func (s *SettingsStore) PutSettings(ctx context.Context, settings report.SystemSettings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO system_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, settingsKey, string(value))
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
