// Package apperr carries the recoverable failure taxonomy of the inventory
// API: every expected failure is an *Error with an HTTP status and a stable
// machine-readable code. Anything else is treated as an internal error.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeDuplicateUsername      = "duplicate_username"
	CodeInvalidCredentials     = "invalid_credentials"
	CodeUnauthenticated        = "unauthenticated"
	CodeForbidden              = "forbidden"
	CodeNotFound               = "not_found"
	CodeCapacityBelowOccupancy = "capacity_below_occupancy"
	CodeOverfull               = "overfull"
	CodeValidation             = "validation_error"
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
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func DuplicateUsername(username string) *Error {
	return New(http.StatusConflict, CodeDuplicateUsername, fmt.Errorf("username %q is already taken", username))
}

func InvalidCredentials() *Error {
	// One message for unknown user and wrong password.
	return New(http.StatusUnauthorized, CodeInvalidCredentials, errors.New("invalid username or password"))
}

func Unauthenticated(reason string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthenticated, errors.New(reason))
}

func Forbidden() *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New("access denied"))
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found", what))
}

func CapacityBelowOccupancy(newCapacity, occupancy int) *Error {
	return New(http.StatusConflict, CodeCapacityBelowOccupancy,
		fmt.Errorf("new capacity (%d) is below current occupancy (%d); relocate objects first", newCapacity, occupancy))
}

func Overfull(chamber string) *Error {
	return New(http.StatusConflict, CodeOverfull, fmt.Errorf("chamber %s is at full capacity", chamber))
}

func Validation(msg string) *Error {
	return New(http.StatusBadRequest, CodeValidation, errors.New(msg))
}

// From extracts the taxonomy error from an error chain, or nil when the
// failure is unexpected and must be handled as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code string) bool {
	appErr := From(err)
	return appErr != nil && appErr.Code == code
}
