// Package errors carries the sentinel error kinds shared across the
// dispatcher, scheduler and HTTP surface.
package errors

import "errors"

var (
	// ErrNotFound is returned for missing or cross-tenant lookups.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is returned for validation failures.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownJobType is returned by enqueue/dispatch for a type not
	// present in the handler registry (spec ERR_UNKNOWN_JOB_TYPE).
	ErrUnknownJobType = errors.New("unknown job type")
)
