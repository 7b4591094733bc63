package report

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy for the moderation engine. Handlers map these to HTTP status
// codes; callers decide retryability from them. NotFound, InvalidTransition
// and InvalidInput are permanent for a given request; StorageUnavailable and
// Timeout are transient and the caller must re-check report state before
// retrying.
var (
	ErrNotFound           = errors.New("report not found")
	ErrInvalidTransition  = errors.New("report is not pending")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTimeout            = errors.New("operation timed out")
)

// classify maps a raw store error into the engine's error taxonomy.
// Domain errors pass through untouched; context expiry becomes Timeout;
// anything else is a transient storage failure.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvalidInput):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
	}
}
