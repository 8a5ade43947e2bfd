package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a step or workflow stopped.
type ErrorKind string

const (
	ErrorKindValidation    ErrorKind = "validation"
	ErrorKindModeration    ErrorKind = "moderation"
	ErrorKindService       ErrorKind = "service"
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindCancelled     ErrorKind = "cancelled"
)

var (
	// ErrValidation marks a guardrail reject.
	ErrValidation = errors.New("validation failed")

	// ErrModeration marks a policy violation found by moderation.
	ErrModeration = errors.New("moderation policy violation")

	// ErrStepFailed marks a step whose external call failed after retries.
	ErrStepFailed = errors.New("step failed")

	// ErrConfiguration marks a missing or invalid agent binding.
	ErrConfiguration = errors.New("configuration error")

	// ErrCancelled marks a run stopped by its caller.
	ErrCancelled = errors.New("workflow cancelled")
)

var kindSentinels = map[ErrorKind]error{
	ErrorKindValidation:    ErrValidation,
	ErrorKindModeration:    ErrModeration,
	ErrorKindService:       ErrStepFailed,
	ErrorKindConfiguration: ErrConfiguration,
	ErrorKindCancelled:     ErrCancelled,
}

// StepError explains why a step did not complete.
type StepError struct {
	Step   StepName
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %s %s: %s: %v", e.Step, e.Kind, e.Reason, e.Err)
	}

	return fmt.Sprintf("step %s %s: %s", e.Step, e.Kind, e.Reason)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel as well as the wrapped error.
func (e *StepError) Is(target error) bool {
	if sentinel, ok := kindSentinels[e.Kind]; ok && sentinel == target {
		return true
	}

	return errors.Is(e.Err, target)
}

func NewValidationError(step StepName, reason string) *StepError {
	return &StepError{Step: step, Kind: ErrorKindValidation, Reason: reason}
}

func NewModerationError(step StepName) *StepError {
	return &StepError{Step: step, Kind: ErrorKindModeration, Reason: ReasonPolicyViolation}
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsModerationError(err error) bool {
	return errors.Is(err, ErrModeration)
}

func IsStepFailed(err error) bool {
	return errors.Is(err, ErrStepFailed)
}
