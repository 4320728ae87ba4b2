package storage

import "errors"

// Shared errors for the execution, day-range and report stores. All three
// are append-only: an upload or a generated report is never updated in
// place, only inserted and read back.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned on insert of an already-present key.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
