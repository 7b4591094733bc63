package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"safetypal/internal/metrics"
	"safetypal/internal/tracing"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single transition request when the caller supplies
// no deadline of its own.
const DefaultTimeout = 5 * time.Second

// Decision describes one terminal moderation transition to apply to a
// pending report. The engine builds it; the store applies it atomically
// together with the matching audit entry.
type Decision struct {
	AuditID   string
	AdminID   string
	Action    ActionType
	Severity  int    // approve only
	Reason    string // reject only
	DecidedAt time.Time
}

// AuditEntry materializes the audit record for this decision against targetID.
func (d Decision) AuditEntry(targetID string) AuditEntry {
	details := make(map[string]string, 1)
	switch d.Action {
	case ActionApproveIncident:
		details["adminSeverity"] = strconv.Itoa(d.Severity)
	case ActionRejectIncident:
		details["reason"] = d.Reason
	}
	return AuditEntry{
		ID:        d.AuditID,
		AdminID:   d.AdminID,
		Action:    d.Action,
		TargetID:  targetID,
		Timestamp: d.DecidedAt,
		Details:   details,
	}
}

// Engine validates and applies moderation transitions. It owns input
// validation and the error taxonomy; atomicity of the record-update +
// audit-append pair is delegated to the store's Transition primitive.
// The engine never creates pending reports; only the submission producer does.
type Engine struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
}

// NewEngine creates a moderation engine over the given store.
// A non-positive timeout falls back to DefaultTimeout.
func NewEngine(store Store, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{
		store:   store,
		timeout: timeout,
		now:     time.Now,
	}
}

// Approve transitions a pending report to validated, recording the
// admin-confirmed severity and appending exactly one approve_incident audit
// entry. Fails with ErrNotFound for unknown ids, ErrInvalidTransition when
// the report is no longer pending, and ErrInvalidInput for an out-of-range
// severity.
func (e *Engine) Approve(ctx context.Context, reportID, adminID string, severity int) (*IncidentReport, error) {
	if reportID == "" || adminID == "" {
		return nil, fmt.Errorf("%w: report id and admin id are required", ErrInvalidInput)
	}
	if severity < 1 || severity > 5 {
		return nil, fmt.Errorf("%w: severity must be between 1 and 5", ErrInvalidInput)
	}

	d := Decision{
		AuditID:   uuid.NewString(),
		AdminID:   adminID,
		Action:    ActionApproveIncident,
		Severity:  severity,
		DecidedAt: e.now(),
	}
	return e.apply(ctx, reportID, d)
}

// Reject transitions a pending report to rejected, recording the non-empty
// rejection reason and appending exactly one reject_incident audit entry.
func (e *Engine) Reject(ctx context.Context, reportID, adminID, reason string) (*IncidentReport, error) {
	if reportID == "" || adminID == "" {
		return nil, fmt.Errorf("%w: report id and admin id are required", ErrInvalidInput)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason must not be empty", ErrInvalidInput)
	}

	d := Decision{
		AuditID:   uuid.NewString(),
		AdminID:   adminID,
		Action:    ActionRejectIncident,
		Reason:    reason,
		DecidedAt: e.now(),
	}
	return e.apply(ctx, reportID, d)
}

func (e *Engine) apply(ctx context.Context, reportID string, d Decision) (*IncidentReport, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ctx, span := tracing.TransitionSpan(ctx, string(d.Action), reportID)
	defer span.End()

	rep, err := e.store.Transition(ctx, reportID, d)
	err = classify(string(d.Action), err)
	metrics.TransitionsTotal.WithLabelValues(string(d.Action), outcomeLabel(err)).Inc()
	if err != nil {
		tracing.EndWithError(span, err)
		log.Warn().
			Err(err).
			Str("report_id", reportID).
			Str("admin_id", d.AdminID).
			Str("action", string(d.Action)).
			Msg("Transition rejected")
		return nil, err
	}

	metrics.AuditEntriesTotal.Inc()
	log.Info().
		Str("report_id", reportID).
		Str("admin_id", d.AdminID).
		Str("action", string(d.Action)).
		Str("status", string(rep.Status)).
		Str("audit_id", d.AuditID).
		Msg("Report transitioned")
	return rep, nil
}

// outcomeLabel maps an engine error to a bounded metric label
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "storage_error"
	}
}
