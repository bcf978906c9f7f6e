package commerce

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("commerce resource not found")

	// ErrConcurrentModification is returned when an update carries a stale version.
	ErrConcurrentModification = errors.New("commerce resource was modified concurrently")
)

// TransportError wraps a network failure or a 5xx answer from the platform.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("commerce %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
