package task

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for task operations. The messages are stable: adapters
// use them to restore the sentinel after a request-reply hop.
var (
	// ErrValidation is returned for malformed or out-of-enum input.
	ErrValidation = errors.New("validation failed")
	// ErrTaskNotFound is returned when no task has the requested id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrNoEligibleAssignee is returned by smart assignment when the user directory is empty.
	ErrNoEligibleAssignee = errors.New("no users available to assign")
	// ErrStorageFailure is returned when the underlying persistence is unavailable.
	ErrStorageFailure = errors.New("storage failure")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (field %s)", ErrValidation.Error(), e.Message, e.Field)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a persistence error so that it matches ErrStorageFailure
// while keeping the cause reachable.
func StorageError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStorageFailure, op, err)
}

// PartiallyAppliedError reports a mutation whose store write succeeded but
// whose ledger entry could not be written. Callers must verify state.
type PartiallyAppliedError struct {
	Op   string
	Task *Task
	Err  error
}

func (e *PartiallyAppliedError) Error() string {
	return fmt.Sprintf("%s applied but activity entry not recorded: %v", e.Op, e.Err)
}

func (e *PartiallyAppliedError) Unwrap() []error {
	return []error{ErrStorageFailure, e.Err}
}

// partiallyAppliedMarker is the text PartiallyAppliedError always carries.
const partiallyAppliedMarker = "applied but activity entry not recorded"

// IsPartiallyApplied reports whether err describes a half-applied mutation.
func IsPartiallyApplied(err error) bool {
	var pe *PartiallyAppliedError
	if errors.As(err, &pe) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), partiallyAppliedMarker)
}

// DecodeError restores the task sentinels on an error whose identity was lost
// crossing a service boundary. Errors that already match are returned as is.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrValidation, ErrTaskNotFound, ErrNoEligibleAssignee, ErrStorageFailure} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, partiallyAppliedMarker):
		return &PartiallyAppliedError{Op: "mutation", Err: errors.New(msg)}
	case strings.Contains(msg, ErrValidation.Error()):
		return parseValidationError(msg)
	case strings.Contains(msg, ErrTaskNotFound.Error()):
		return fmt.Errorf("%w: %s", ErrTaskNotFound, msg)
	case strings.Contains(msg, ErrNoEligibleAssignee.Error()):
		return fmt.Errorf("%w: %s", ErrNoEligibleAssignee, msg)
	}
	return fmt.Errorf("%w: %s", ErrStorageFailure, msg)
}

// parseValidationError reverses ValidationError.Error.
func parseValidationError(msg string) *ValidationError {
	ve := &ValidationError{Message: msg}

	rest := msg[strings.Index(msg, ErrValidation.Error())+len(ErrValidation.Error()):]
	rest = strings.TrimPrefix(rest, ": ")
	if i := strings.LastIndex(rest, " (field "); i >= 0 {
		ve.Message = rest[:i]
		ve.Field = strings.TrimSuffix(rest[i+len(" (field "):], ")")
	} else if rest != "" {
		ve.Message = rest
	}
	return ve
}
