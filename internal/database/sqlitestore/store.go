// Package sqlitestore provides SQLite-backed store implementations.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS incident_reports (
	id                TEXT PRIMARY KEY,
	incident_type     TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	severity_reported INTEGER NOT NULL DEFAULT 0,
	images            TEXT NOT NULL DEFAULT '[]',
	location_name     TEXT NOT NULL DEFAULT '',
	latitude          REAL,
	longitude         REAL,
	submitted_at      TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL,
	validated_by      TEXT NOT NULL DEFAULT '',
	validated_at      TEXT,
	admin_severity    INTEGER NOT NULL DEFAULT 0,
	rejection_reason  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_incident_reports_status ON incident_reports(status);

CREATE TABLE IF NOT EXISTS admin_activity_logs (
	id        TEXT PRIMARY KEY,
	admin_id  TEXT NOT NULL,
	action    TEXT NOT NULL,
	target_id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	details   TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_admin_activity_logs_target ON admin_activity_logs(target_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_admin_activity_logs_time ON admin_activity_logs(timestamp);

CREATE TABLE IF NOT EXISTS safe_zones (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	contact    TEXT NOT NULL DEFAULT '',
	latitude   REAL,
	longitude  REAL,
	active     INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS system_settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS report_status_counters (
	status TEXT PRIMARY KEY,
	count  INTEGER NOT NULL DEFAULT 0
);
`

// Store wraps a SQLite database and provides access to specialized stores.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the specified path and applies
// the schema. The connection is instrumented with OpenTelemetry.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "safetypal.sqlite"
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := otelsql.Open("sqlite", dsn,
		otelsql.WithAttributes(semconv.DBSystemSqlite),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc sqlite allows one writer; serialize at the pool level
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
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

// DB returns the underlying database handle for advanced operations.
func (s *Store) DB() *sql.DB {
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
