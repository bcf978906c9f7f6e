package repository

import "errors"

var (
	// ErrStoreUnavailable is returned when the backing store cannot be reached
	// or fails to execute a command.
	ErrStoreUnavailable = errors.New("store unavailable")
)
