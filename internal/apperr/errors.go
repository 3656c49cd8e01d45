// Package apperr defines the error kinds shared across snapback packages.
// Callers match them with errors.Is; packages wrap them with context.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a preset lookup by id or name fails.
	ErrNotFound = errors.New("not found")

	// ErrProgramMissing marks a snapshot whose executable does not exist
	// on the restoring machine.
	ErrProgramMissing = errors.New("program missing")

	// ErrWindowTimeout marks a launched process that never produced a
	// matching window within the polling budget.
	ErrWindowTimeout = errors.New("window timeout")

	// ErrAccessDenied marks a window the window system refused to
	// reposition (e.g. an elevated or override-redirect target).
	ErrAccessDenied = errors.New("access denied")

	// ErrStoreCorrupted signals that the persisted preset collection was
	// unreadable and has been backed up and replaced with a fresh one.
	ErrStoreCorrupted = errors.New("preset store corrupted")

	// ErrInvalidPreset marks persisted data that failed structural
	// validation against the preset schema.
	ErrInvalidPreset = errors.New("invalid preset")
)
