package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the backend responds 401. The
	// unauthorized hook has already fired by the time callers see it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when the backend responds 429.
	ErrRateLimited = errors.New("rate limited")
)

// Error wraps a network-level failure (DNS, timeout, refused
// connection) with the operation that was attempted.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("request %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response that is not a 401 or 429,
// carrying the backend's message when one could be extracted.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Message)
}
