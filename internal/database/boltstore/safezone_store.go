package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"safetypal/internal/report"

	bolt "go.etcd.io/bbolt"
)

// SafeZoneStore provides persistent storage for safe zones.
type SafeZoneStore struct {
	db *bolt.DB
}

// CreateSafeZone stores a new safe zone. Fails if the id is already taken.
func (s *SafeZoneStore) CreateSafeZone(ctx context.Context, zone report.SafeZone) error {
	if zone.ID == "" {
		return fmt.Errorf("%w: safe zone id is required", report.ErrInvalidInput)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketSafeZones)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketSafeZones)
		}

		if bucket.Get([]byte(zone.ID)) != nil {
			return fmt.Errorf("%w: safe zone %s already exists", report.ErrInvalidInput, zone.ID)
		}

		data, err := json.Marshal(zone)
		if err != nil {
			return fmt.Errorf("failed to marshal safe zone: %w", err)
		}

		return bucket.Put([]byte(zone.ID), data)
	})
}

// GetSafeZone retrieves a safe zone by ID.
func (s *SafeZoneStore) GetSafeZone(ctx context.Context, id string) (*report.SafeZone, error) {
	var zone *report.SafeZone

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketSafeZones)
		if bucket == nil {
			return nil
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return nil
		}

		zone = &report.SafeZone{}
		return json.Unmarshal(data, zone)
	})
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, report.ErrNotFound
	}

	return zone, nil
}

// ListSafeZones returns all safe zones.
func (s *SafeZoneStore) ListSafeZones(ctx context.Context) ([]report.SafeZone, error) {
	var zones []report.SafeZone

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketSafeZones)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var zone report.SafeZone
			if err := json.Unmarshal(v, &zone); err != nil {
				return err
			}
			zones = append(zones, zone)
			return nil
		})
	})

	return zones, err
}

// UpdateSafeZone replaces an existing safe zone.
func (s *SafeZoneStore) UpdateSafeZone(ctx context.Context, zone report.SafeZone) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketSafeZones)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketSafeZones)
		}

		if bucket.Get([]byte(zone.ID)) == nil {
			return report.ErrNotFound
		}

		data, err := json.Marshal(zone)
		if err != nil {
			return fmt.Errorf("failed to marshal safe zone: %w", err)
		}

		return bucket.Put([]byte(zone.ID), data)
	})
}

// DeleteSafeZone removes a safe zone by ID.
func (s *SafeZoneStore) DeleteSafeZone(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketSafeZones)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketSafeZones)
		}

		if bucket.Get([]byte(id)) == nil {
			return report.ErrNotFound
		}

		return bucket.Delete([]byte(id))
	})
}
