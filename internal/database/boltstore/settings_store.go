package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"safetypal/internal/report"

	bolt "go.etcd.io/bbolt"
)

// settingsKey is the fixed key of the single global settings document.
const settingsKey = "global"

// SettingsStore provides persistent storage for the global system settings.
type SettingsStore struct {
	db *bolt.DB
}

// GetSettings returns the stored settings, or the defaults when nothing has
// been saved yet.
func (s *SettingsStore) GetSettings(ctx context.Context) (report.SystemSettings, error) {
	settings := report.DefaultSettings()

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketSystemSettings)
		if bucket == nil {
			return nil
		}

		data := bucket.Get([]byte(settingsKey))
		if data == nil {
			return nil
		}

		return json.Unmarshal(data, &settings)
	})

	return settings, err
}

// PutSettings replaces the global settings document.
func (s *SettingsStore) PutSettings(ctx context.Context, settings report.SystemSettings) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketSystemSettings)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketSystemSettings)
		}

		data, err := json.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}

		return bucket.Put([]byte(settingsKey), data)
	})
}
