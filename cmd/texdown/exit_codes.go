package main

import (
	"errors"
	"os"

	"github.com/db47h/texdown"
	"github.com/db47h/texdown/notes"
)

// Exit codes for the texdown CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error, including document syntax errors
	ExitUsage   = 2 // Invalid flags, config or rule file
	ExitIO      = 3 // File not found, permission denied
	ExitNotes   = 4 // Note store errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Note store errors (exit 4)
	if errors.Is(err, ErrNoteStore) ||
		errors.Is(err, notes.ErrInvalidName) ||
		errors.Is(err, notes.ErrKeyTooLong) ||
		errors.Is(err, notes.ErrNoteTooLarge) ||
		errors.Is(err, notes.ErrKeyMismatch) ||
		errors.Is(err, notes.ErrNotFound) {
		return ExitNotes
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, texdown.ErrTooLarge) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/rule errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrConfig) ||
		errors.Is(err, ErrRules) {
		return ExitUsage
	}

	return ExitGeneral
}
