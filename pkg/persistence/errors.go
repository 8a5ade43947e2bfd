// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
	"strings"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrRunNotFound indicates no run exists for the given request id.
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidRequestID indicates a request id that cannot be used as a storage key.
	ErrInvalidRequestID = errors.New("invalid request id")

	// ErrNilRun indicates a nil run status was passed to SaveRun.
	ErrNilRun = errors.New("run status is nil")
)

// RunError wraps run storage errors with additional context.
type RunError struct {
	Op        string // Operation being performed (e.g., "GetRun", "SaveRun")
	RequestID string
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s operation failed for run %s: %v", e.Op, e.RequestID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func (e *RunError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRunError creates a new run error with context.
func NewRunError(op, requestID string, err error) *RunError {
	return &RunError{
		Op:        op,
		RequestID: requestID,
		Err:       err,
	}
}

// ValidateRequestID rejects ids that are empty or could escape a storage
// namespace such as a directory or key prefix.
func ValidateRequestID(requestID string) error {
	if requestID == "" {
		return fmt.Errorf("%w: empty", ErrInvalidRequestID)
	}

	if strings.Contains(requestID, "..") || strings.ContainsAny(requestID, "/\\") {
		return fmt.Errorf("%w: contains invalid characters", ErrInvalidRequestID)
	}

	return nil
}

// IsRunNotFound checks if an error indicates a run was not found.
func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}

// IsInvalidRequestID checks if an error indicates a malformed request id.
func IsInvalidRequestID(err error) bool {
	return errors.Is(err, ErrInvalidRequestID)
}
