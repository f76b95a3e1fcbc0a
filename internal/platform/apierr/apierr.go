package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeUnauthorized   = "unauthorized"
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "not_found"
	CodeInternal       = "internal_error"
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

var (
	// ErrUnauthenticated covers every credential failure. Callers must not
	// learn which check rejected the credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized covers an explicit capability denial and an
	// unavailable capability authority alike.
	ErrUnauthorized = errors.New("unauthorized")
)

func Unauthenticated() *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, ErrUnauthenticated)
}

func Unauthorized() *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, ErrUnauthorized)
}

func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, fmt.Errorf(format, args...))
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found", what))
}

// Storage wraps a persistence failure. The cause is kept for logging and
// is never rendered to clients.
func Storage(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// As extracts an *Error from err, treating anything unrecognized as a
// storage-class internal failure.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Storage(err)
}

func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}
