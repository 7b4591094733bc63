// Package boltstore provides persistent storage using BoltDB (bbolt).
// It implements the report, safe zone and settings store interfaces on a
// single database file, with real transactions covering the record-update +
// audit-append pair.
package boltstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names for organizing data
var (
	// BucketIncidentReports stores incident report documents keyed by id
	BucketIncidentReports = []byte("incident_reports")

	// BucketAuditLog stores admin activity entries keyed by "unixnano:id"
	BucketAuditLog = []byte("admin_activity_logs")

	// BucketAuditByTarget indexes audit entries by target report id
	BucketAuditByTarget = []byte("admin_activity_logs_by_target")

	// BucketSafeZones stores safe zone documents keyed by id
	BucketSafeZones = []byte("safe_zones")

	// BucketSystemSettings stores the global settings document
	BucketSystemSettings = []byte("system_settings")

	// BucketStatusCounters stores per-status report counters
	BucketStatusCounters = []byte("report_status_counters")
)

// Store wraps a BoltDB database and provides access to specialized stores.
type Store struct {
	db *bolt.DB
}

// Options configures the BoltDB store.
type Options struct {
	// Path to the database file. Parent directories will be created if needed.
	Path string

	// Timeout for obtaining a file lock on the database.
	// If zero, a default of 5 seconds is used.
	Timeout time.Duration

	// FileMode for creating the database file.
	// If zero, 0600 is used.
	FileMode os.FileMode
}

// DefaultOptions returns sensible defaults for development.
func DefaultOptions() Options {
	return Options{
		Path:     "safetypal.db",
		Timeout:  5 * time.Second,
		FileMode: 0600,
	}
}

// Open creates or opens a BoltDB database at the specified path.
// It creates all necessary buckets if they don't exist.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		opts.Path = "safetypal.db"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0600
	}

	// Ensure parent directory exists
	dir := filepath.Dir(opts.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open the database
	db, err := bolt.Open(opts.Path, opts.FileMode, &bolt.Options{
		Timeout: opts.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			BucketIncidentReports,
			BucketAuditLog,
			BucketAuditByTarget,
			BucketSafeZones,
			BucketSystemSettings,
			BucketStatusCounters,
		}

		for _, bucket := range buckets {
			_, err := tx.CreateBucketIfNotExists(bucket)
			if err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying BoltDB instance for advanced operations.
func (s *Store) DB() *bolt.DB {
	return s.db
}

// ReportStore returns an incident report store backed by this database.
func (s *Store) ReportStore() *ReportStore {
	return &ReportStore{db: s.db}
}

// SafeZoneStore returns a safe zone store backed by this database.
func (s *Store) SafeZoneStore() *SafeZoneStore {
	return &SafeZoneStore{db: s.db}
}

// SettingsStore returns a system settings store backed by this database.
func (s *Store) SettingsStore() *SettingsStore {
	return &SettingsStore{db: s.db}
}

// Stats returns database statistics.
func (s *Store) Stats() bolt.Stats {
	return s.db.Stats()
}
