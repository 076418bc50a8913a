package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated indicates there is no valid actor for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates an authorization check failed.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAuditUnavailable indicates the audit trail could not be written.
	ErrAuditUnavailable = errors.New("audit log unavailable")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// Forbiddenf wraps ErrForbidden with a human-readable denial reason. The
// reason is safe to show to callers; it never carries internal detail.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
