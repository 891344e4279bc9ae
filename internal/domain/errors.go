package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is the parent of every "absent" condition.
var ErrNotFound = errors.New("not found")

var (
	ErrNoActiveSession    = fmt.Errorf("no active session for this patient: %w", ErrNotFound)
	ErrSessionNotFound    = fmt.Errorf("no session found for this patient: %w", ErrNotFound)
	ErrTranscriptNotFound = fmt.Errorf("interview transcript not found: %w", ErrNotFound)
	ErrPatientNotFound    = fmt.Errorf("patient not found: %w", ErrNotFound)
	ErrFileNotFound       = fmt.Errorf("file not found: %w", ErrNotFound)
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrPersistence    = errors.New("failed to persist transcript")
	ErrDuplicateMRN   = errors.New("patient with this MRN already exists")
	ErrDeprecatedFlow = errors.New("deprecated flow: interview-id based agent runs are no longer supported; use interview sessions and run-advisor on the saved transcript")
)

// InvalidInputf returns an error wrapping ErrInvalidInput with a formatted detail.
func InvalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
