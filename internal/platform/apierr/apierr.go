// Package apierr maps internal errors to HTTP status codes at the
// outermost boundary of the HTTP surface.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainerrors "github.com/shopfloor-ops/shopcore/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromErr classifies a plain error (typically a sentinel from
// internal/pkg/errors) into an HTTP status/code pair. Unrecognized
// errors map to 500.
func FromErr(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, domainerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, domainerrors.ErrUnknownJobType):
		return New(http.StatusBadRequest, "unknown_job_type", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
