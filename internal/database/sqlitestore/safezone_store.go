package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"safetypal/internal/report"
)

// SafeZoneStore implements report.SafeZoneStore using SQLite.
type SafeZoneStore struct {
	db *sql.DB
}

var _ report.SafeZoneStore = (*SafeZoneStore)(nil)

func (s *SafeZoneStore) CreateSafeZone(ctx context.Context, zone report.SafeZone) error {
	if zone.ID == "" {
		return fmt.Errorf("%w: safe zone id is required", report.ErrInvalidInput)
	}

	var lat, lng any
	if zone.Location != nil {
		lat, lng = zone.Location.Latitude, zone.Location.Longitude
	}
	active := 0
	if zone.Active {
		active = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO safe_zones (id, name, type, contact, latitude, longitude, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, zone.ID, zone.Name, zone.Type, zone.Contact, lat, lng, active,
		zone.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: safe zone %s already exists", report.ErrInvalidInput, zone.ID)
		}
		return fmt.Errorf("create safe zone: %w", err)
	}
	return nil
}

func (s *SafeZoneStore) GetSafeZone(ctx context.Context, id string) (*report.SafeZone, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, contact, latitude, longitude, active, created_at
		FROM safe_zones WHERE id = ?
	`, id)

	zone, err := scanSafeZone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, report.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return zone, nil
}

func (s *SafeZoneStore) ListSafeZones(ctx context.Context) ([]report.SafeZone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, contact, latitude, longitude, active, created_at
		FROM safe_zones ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []report.SafeZone
	for rows.Next() {
		zone, err := scanSafeZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *zone)
	}
	return zones, rows.Err()
}

func (s *SafeZoneStore) UpdateSafeZone(ctx context.Context, zone report.SafeZone) error {
	var lat, lng any
	if zone.Location != nil {
		lat, lng = zone.Location.Latitude, zone.Location.Longitude
	}
	active := 0
	if zone.Active {
		active = 1
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE safe_zones SET name = ?, type = ?, contact = ?, latitude = ?, longitude = ?, active = ?
		WHERE id = ?
	`, zone.Name, zone.Type, zone.Contact, lat, lng, active, zone.ID)
	if err != nil {
		return fmt.Errorf("update safe zone: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return report.ErrNotFound
	}
	return nil
}

func (s *SafeZoneStore) DeleteSafeZone(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM safe_zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete safe zone: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return report.ErrNotFound
	}
	return nil
}

func scanSafeZone(row rowScanner) (*report.SafeZone, error) {
	var zone report.SafeZone
	var lat, lng sql.NullFloat64
	var active int
	var createdAt string

	err := row.Scan(&zone.ID, &zone.Name, &zone.Type, &zone.Contact, &lat, &lng, &active, &createdAt)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		zone.Location = &report.GeoPoint{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	zone.Active = active == 1
	zone.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &zone, nil
}
