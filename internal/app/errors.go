package app

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP status codes at the server edge.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError rejects a request before any write happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a subdomain owned by someone else, with valid
// alternatives the caller can offer.
type ConflictError struct {
	Subdomain   string
	Suggestions []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("subdomain %q is already taken", e.Subdomain)
}

// UpstreamError wraps a hosting-provider failure. The raw provider message
// is preserved for the deployment record.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return "deployment provider error: " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// IOError wraps a local storage failure that aborted a publish.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return "site storage error: " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }
