package engine

import (
	"errors"
	"fmt"
)

// ErrDuplicateRequest is returned when a report for the same user and
// category is already being generated.
var ErrDuplicateRequest = errors.New("report generation already in progress")

// ValidationError rejects malformed input before any computation runs.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError reports that a computed report could not be stored.
// It is returned together with the report.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist report (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
