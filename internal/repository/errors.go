package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStatusConflict is returned when a status-guarded update matched zero
	// rows: the entity exists but another writer already moved it. Callers
	// treat this as "already handled", never as a crash.
	ErrStatusConflict = errors.New("status changed concurrently")
)
