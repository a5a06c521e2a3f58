package storage

import "errors"

var (
	// ErrNotFound is returned when a row does not exist or is soft-deleted
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("duplicate key violation")
	// ErrNotInitialized is returned when the store has not been loaded
	ErrNotInitialized = errors.New("storage not initialized, run 'habitlog init' first")
)
