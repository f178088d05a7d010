package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a citizen lookup misses. It is a normal
	// branch of the booking flow, not a failure.
	ErrNotFound = errors.New("directory: record not found")

	// ErrConflict is returned when a citizen create races with an existing
	// registration for the same DNI.
	ErrConflict = errors.New("directory: record already exists")

	// ErrTransient covers timeouts, connection failures, malformed responses
	// and server errors. Callers re-prompt; the client never retries.
	ErrTransient = errors.New("directory: transient failure")
)

// RejectedError carries the directory's human-readable reason for refusing a
// booking (slot taken, procedure suspended, ...). The reason is surfaced to
// the user verbatim.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("directory: booking rejected: %s", e.Reason)
}

// IsTransient reports whether err should be handled as a retry-later failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
