package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/Ahad-dev/fypify-api/internal/models"
)

// Sentinel errors shared across the core services.
var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrDocumentTypeNotFound = errors.New("document type not found")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrBatchNotFound        = errors.New("deadline batch not found")
	ErrResultNotFound       = errors.New("final result not found")

	// ErrNotReady marks a computation attempted before its inputs exist. It
	// is a status, not a failure; callers usually want the NotReady outcome
	// instead.
	ErrNotReady = errors.New("result inputs not ready")
)

// ValidationError reports a rejected field with the reason it was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnauthorizedError reports a caller whose role does not grant the attempted
// operation.
type UnauthorizedError struct {
	Role       models.Role
	Capability models.Capability
	Reason     string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("role %q does not grant capability %q", e.Role, e.Capability)
}

// InvalidStateError reports a lifecycle operation attempted against a
// submission in the wrong state.
type InvalidStateError struct {
	SubmissionID  uint
	CurrentStatus string
	RequiredState string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("submission %d is %s, operation requires %s", e.SubmissionID, e.CurrentStatus, e.RequiredState)
}

// SchedulingConflictError reports a deadline schedule that violates ordering
// or minimum spacing.
type SchedulingConflictError struct {
	FirstTypeID  uint
	SecondTypeID uint
	Gap          time.Duration
	MinimumGap   time.Duration
	Reason       string
}

func (e *SchedulingConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("deadline conflict between document types %d and %d: %s", e.FirstTypeID, e.SecondTypeID, e.Reason)
	}
	return fmt.Sprintf("deadline conflict between document types %d and %d: gap %s is below the minimum %s",
		e.FirstTypeID, e.SecondTypeID, e.Gap, e.MinimumGap)
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrDocumentTypeNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrBatchNotFound) ||
		errors.Is(err, ErrResultNotFound)
}
