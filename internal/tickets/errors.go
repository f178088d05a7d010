package tickets

import "errors"

var (
	// ErrMissingDNI is returned when the citizen DNI is absent
	ErrMissingDNI = errors.New("citizen_dni is required")

	// ErrMissingSubject is returned when the subject is absent
	ErrMissingSubject = errors.New("subject is required")

	// ErrUnknownCitizen is returned when the DNI matches no registered citizen
	ErrUnknownCitizen = errors.New("citizen not found")

	// ErrTicketNotFound is returned when no ticket matches the id
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrInvalidStatus is returned when the target status is not a known state
	ErrInvalidStatus = errors.New("invalid ticket status")
)
