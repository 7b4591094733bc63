package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"safetypal/internal/report"

	bolt "go.etcd.io/bbolt"
)

// ReportStore provides persistent storage for incident reports and their
// audit trail. Transition runs inside a single bolt write transaction, so the
// status check is a compare-and-set and the record update commits together
// with its audit entry.
type ReportStore struct {
	db *bolt.DB
}

// CreateReport stores a new pending report. Fails if the id is already taken.
func (s *ReportStore) CreateReport(ctx context.Context, rep report.IncidentReport) error {
	if rep.ID == "" {
		return fmt.Errorf("%w: report id is required", report.ErrInvalidInput)
	}
	if !rep.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", report.ErrInvalidInput, rep.Status)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketIncidentReports)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketIncidentReports)
		}

		if bucket.Get([]byte(rep.ID)) != nil {
			return fmt.Errorf("%w: report %s already exists", report.ErrInvalidInput, rep.ID)
		}

		data, err := json.Marshal(rep)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}

		if err := bucket.Put([]byte(rep.ID), data); err != nil {
			return err
		}

		return bumpCounter(tx, rep.Status, 1)
	})
}

// GetReport retrieves a report by ID.
func (s *ReportStore) GetReport(ctx context.Context, id string) (*report.IncidentReport, error) {
	var rep *report.IncidentReport

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketIncidentReports)
		if bucket == nil {
			return nil
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return nil
		}

		rep = &report.IncidentReport{}
		return json.Unmarshal(data, rep)
	})
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, report.ErrNotFound
	}

	return rep, nil
}

// ListReports returns all reports with the given status.
func (s *ReportStore) ListReports(ctx context.Context, status report.Status) ([]report.IncidentReport, error) {
	var reports []report.IncidentReport

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketIncidentReports)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var rep report.IncidentReport
			if err := json.Unmarshal(v, &rep); err != nil {
				return err
			}
			if rep.Status == status {
				reports = append(reports, rep)
			}
			return nil
		})
	})

	return reports, err
}

// ListAllReports returns all reports regardless of status.
func (s *ReportStore) ListAllReports(ctx context.Context) ([]report.IncidentReport, error) {
	var reports []report.IncidentReport

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketIncidentReports)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var rep report.IncidentReport
			if err := json.Unmarshal(v, &rep); err != nil {
				return err
			}
			reports = append(reports, rep)
			return nil
		})
	})

	return reports, err
}

// Transition applies a terminal moderation decision to a pending report.
// The status re-check, record update, audit append and counter moves all
// happen inside one write transaction; either everything commits or nothing
// is visible. Bolt serializes write transactions, so concurrent decisions
// against the same report cannot both observe pending.
func (s *ReportStore) Transition(ctx context.Context, reportID string, d report.Decision) (*report.IncidentReport, error) {
	var updated *report.IncidentReport

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketIncidentReports)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketIncidentReports)
		}

		data := bucket.Get([]byte(reportID))
		if data == nil {
			return report.ErrNotFound
		}

		var rep report.IncidentReport
		if err := json.Unmarshal(data, &rep); err != nil {
			return fmt.Errorf("failed to unmarshal report %s: %w", reportID, err)
		}

		if rep.Status != report.StatusPending {
			return report.ErrInvalidTransition
		}
		previous := rep.Status

		rep.ValidatedBy = d.AdminID
		decidedAt := d.DecidedAt
		rep.ValidatedAt = &decidedAt
		switch d.Action {
		case report.ActionApproveIncident:
			rep.Status = report.StatusValidated
			rep.AdminSeverity = d.Severity
		case report.ActionRejectIncident:
			rep.Status = report.StatusRejected
			rep.RejectionReason = d.Reason
		default:
			return fmt.Errorf("%w: unknown action %q", report.ErrInvalidInput, d.Action)
		}

		newData, err := json.Marshal(rep)
		if err != nil {
			return fmt.Errorf("failed to marshal report %s: %w", reportID, err)
		}
		if err := bucket.Put([]byte(reportID), newData); err != nil {
			return err
		}

		if err := appendAudit(tx, d.AuditEntry(reportID)); err != nil {
			return err
		}

		if err := bumpCounter(tx, previous, -1); err != nil {
			return err
		}
		if err := bumpCounter(tx, rep.Status, 1); err != nil {
			return err
		}

		updated = &rep
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// AppendAudit stores an audit entry outside of a transition, for
// administrative actions that do not touch a report record.
func (s *ReportStore) AppendAudit(ctx context.Context, entry report.AuditEntry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return appendAudit(tx, entry)
	})
}

// ListAuditFor returns all audit entries for a target report in
// chronological order (oldest first).
func (s *ReportStore) ListAuditFor(ctx context.Context, targetID string) ([]report.AuditEntry, error) {
	var entries []report.AuditEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(BucketAuditByTarget)
		if index == nil {
			return nil
		}

		logBucket := tx.Bucket(BucketAuditLog)
		if logBucket == nil {
			return nil
		}

		cursor := index.Cursor()
		prefix := []byte(targetID + ":")

		for k, v := cursor.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = cursor.Next() {
			// v is the audit log key
			data := logBucket.Get(v)
			if data == nil {
				continue
			}

			var entry report.AuditEntry
			if err := json.Unmarshal(data, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}

		return nil
	})

	return entries, err
}

// ListAuditLog returns the most recent audit log entries.
// Entries are returned in reverse chronological order (newest first).
func (s *ReportStore) ListAuditLog(ctx context.Context, limit int) ([]report.AuditEntry, error) {
	var entries []report.AuditEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketAuditLog)
		if bucket == nil {
			return nil
		}

		// Timestamp-prefixed keys iterate oldest first; walk backwards
		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(entries) < limit; k, v = cursor.Prev() {
			var entry report.AuditEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}

		return nil
	})

	return entries, err
}

// StatusCounts returns the incrementally maintained per-status counters.
func (s *ReportStore) StatusCounts(ctx context.Context) (map[report.Status]int, error) {
	counts := make(map[report.Status]int, len(report.AllStatuses()))

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketStatusCounters)
		if bucket == nil {
			return nil
		}

		for _, status := range report.AllStatuses() {
			data := bucket.Get([]byte(status))
			if data == nil {
				continue
			}
			n, err := strconv.Atoi(string(data))
			if err != nil {
				return fmt.Errorf("corrupt counter for %s: %w", status, err)
			}
			counts[status] = n
		}

		return nil
	})

	return counts, err
}

// appendAudit writes one audit entry inside an open write transaction,
// keyed for chronological ordering and indexed by target.
func appendAudit(tx *bolt.Tx, entry report.AuditEntry) error {
	bucket := tx.Bucket(BucketAuditLog)
	if bucket == nil {
		return fmt.Errorf("bucket not found: %s", BucketAuditLog)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	// Use timestamp-based key for chronological ordering
	// Format: timestamp:id for uniqueness
	key := fmt.Sprintf("%d:%s", entry.Timestamp.UnixNano(), entry.ID)

	if err := bucket.Put([]byte(key), data); err != nil {
		return err
	}

	index := tx.Bucket(BucketAuditByTarget)
	if index != nil {
		indexKey := []byte(entry.TargetID + ":" + key)
		if err := index.Put(indexKey, []byte(key)); err != nil {
			return err
		}
	}

	return nil
}

// bumpCounter adjusts the counter for one status by delta inside an open
// write transaction.
func bumpCounter(tx *bolt.Tx, status report.Status, delta int) error {
	bucket := tx.Bucket(BucketStatusCounters)
	if bucket == nil {
		return fmt.Errorf("bucket not found: %s", BucketStatusCounters)
	}

	n := 0
	if data := bucket.Get([]byte(status)); data != nil {
		parsed, err := strconv.Atoi(string(data))
		if err != nil {
			return fmt.Errorf("corrupt counter for %s: %w", status, err)
		}
		n = parsed
	}

	n += delta
	if n < 0 {
		n = 0
	}

	return bucket.Put([]byte(status), []byte(strconv.Itoa(n)))
}

// hasPrefix checks if a byte slice has a given prefix.
func hasPrefix(s, prefix []byte) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if s[i] != b {
			return false
		}
	}
	return true
}
