// Package errs defines the error taxonomy shared by the session,
// auth, and shelf services. Transport-level failures live in the
// transport package; everything user-actionable is here.
package errs

import (
	"fmt"

	"github.com/nmhoang/libshelf/internal/entities"
)

// ValidationError reports bad local input. It is resolved entirely
// client-side and never reaches the wire.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NewValidation builds a ValidationError from a format string.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// UnauthorizedError reports a missing session: the operation requires
// an authenticated user and none is present. No request was issued.
type UnauthorizedError struct{}

func (e *UnauthorizedError) Error() string {
	return "not authenticated"
}

// RoleMismatchError reports a login that succeeded at the provider but
// returned a role other than the one the caller required. The session
// store is left untouched when this is returned.
type RoleMismatchError struct {
	Expected entities.Role
	Actual   entities.Role
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("role mismatch: expected %s, provider returned %s", e.Expected, e.Actual)
}

// AuthenticationError carries the provider's rejection message for
// failed logins and registrations.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "authentication rejected"
	}
	return "authentication rejected: " + e.Message
}

// DuplicateEntryError reports a recoverable conflict: the book is
// already on the requested shelf. Callers may treat it as a no-op.
type DuplicateEntryError struct {
	BookID string
	Status entities.Status
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("book %s is already on shelf %s", e.BookID, e.Status)
}

// PartialStateError reports a multi-step operation that completed its
// first step and failed a later one. The caller must re-query rather
// than assume either terminal state.
type PartialStateError struct {
	BookID  string
	Removed entities.Status
	Failed  entities.Status
	Err     error
}

func (e *PartialStateError) Error() string {
	return fmt.Sprintf("status change for book %s incomplete: removed from %s but add to %s failed: %v",
		e.BookID, e.Removed, e.Failed, e.Err)
}

func (e *PartialStateError) Unwrap() error {
	return e.Err
}

// ShelfUpdateError is the generic backend rejection for shelf and
// rating operations that is neither a conflict nor an auth failure.
type ShelfUpdateError struct {
	Op      string
	Message string
	Err     error
}

func (e *ShelfUpdateError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ShelfUpdateError) Unwrap() error {
	return e.Err
}
