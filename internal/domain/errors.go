package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// InvalidStateError reports an operation attempted against a record whose
// current state does not permit it (e.g. reviewing a non-pending payment).
type InvalidStateError struct {
	Resource string
	Current  string
	Msg      string
}

func (e InvalidStateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Resource != "" && e.Current != "" {
		return fmt.Sprintf("%s is %s", e.Resource, e.Current)
	}
	return "invalid state"
}

type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "forbidden"
}

// DependencyError wraps failures of external collaborators (database, blob
// storage). Callers may retry; the service layer does not.
type DependencyError struct {
	Op  string
	Err error
}

func (e DependencyError) Error() string {
	if e.Op == "" {
		return "dependency failure"
	}
	return fmt.Sprintf("%s failed", e.Op)
}

func (e DependencyError) Unwrap() error { return e.Err }

// PartialFailureError reports that paired writes were left inconsistent
// (one committed, the other did not). Requires operator reconciliation and
// must never be reported as success.
type PartialFailureError struct {
	Msg string
	Err error
}

func (e PartialFailureError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "partial failure"
}

func (e PartialFailureError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target InvalidStateError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsDependency(err error) bool {
	var target DependencyError
	return errors.As(err, &target)
}

func IsPartialFailure(err error) bool {
	var target PartialFailureError
	return errors.As(err, &target)
}
