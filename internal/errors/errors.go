// Package errors defines application-specific error types and sentinel errors.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jittakal/boundedbuffer/pkg/buffer"
)

// Sentinel errors for common conditions.
var (
	ErrInterrupted     = errors.New("interrupted while waiting")
	ErrInvalidCapacity = errors.New("buffer capacity must be at least 1")
	ErrUnknownStrategy = buffer.ErrUnknownStrategy
	ErrUnknownMode     = errors.New("unknown worker mode")
	ErrMissingTimeout  = errors.New("timed mode requires a timeout of at least 1ms")
)

// Interrupted wraps the context error that ended a suspended wait so that
// callers can match both ErrInterrupted and the context cause.
func Interrupted(cause error) error {
	return fmt.Errorf("%w: %w", ErrInterrupted, cause)
}

// IsInterrupted reports whether err is, or wraps, ErrInterrupted.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}

// WorkerError represents the failure of a single producer or consumer.
type WorkerError struct {
	Role     string
	WorkerID int
	Err      error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker error: role=%s id=%d: %v", e.Role, e.WorkerID, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}

// ValidationError represents a work item that failed validation after extraction.
type ValidationError struct {
	EventID string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: event_id=%s field=%s: %s",
		e.EventID, e.Field, e.Reason)
}

// AuditError reports items that were lost, delivered twice or delivered out of
// FIFO order during a run.
type AuditError struct {
	Missing    []string
	Duplicated []string
	OutOfOrder []string
}

func (e *AuditError) Error() string {
	var parts []string
	if n := len(e.Missing); n > 0 {
		parts = append(parts, fmt.Sprintf("missing=%d (first %s)", n, e.Missing[0]))
	}
	if n := len(e.Duplicated); n > 0 {
		parts = append(parts, fmt.Sprintf("duplicated=%d (first %s)", n, e.Duplicated[0]))
	}
	if n := len(e.OutOfOrder); n > 0 {
		parts = append(parts, fmt.Sprintf("out_of_order=%d (first %s)", n, e.OutOfOrder[0]))
	}
	return "audit error: " + strings.Join(parts, " ")
}

// Empty reports whether the audit found nothing wrong.
func (e *AuditError) Empty() bool {
	return len(e.Missing) == 0 && len(e.Duplicated) == 0 && len(e.OutOfOrder) == 0
}
