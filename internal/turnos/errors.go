package turnos

import "errors"

var (
	// ErrMissingProcedure is returned when the procedure id is absent
	ErrMissingProcedure = errors.New("procedure_id is required")

	// ErrMissingDNI is returned when the citizen DNI is absent
	ErrMissingDNI = errors.New("citizen_dni is required")

	// ErrMissingSchedule is returned when scheduled_at is absent
	ErrMissingSchedule = errors.New("scheduled_at is required")

	// ErrUnknownCitizen is returned when the DNI matches no registered citizen
	ErrUnknownCitizen = errors.New("citizen not found")

	// ErrUnknownProcedure is returned when the procedure id is not in the catalog
	ErrUnknownProcedure = errors.New("procedure not found")

	// ErrSlotTaken is returned when the procedure already has a confirmed turno
	// at the requested time
	ErrSlotTaken = errors.New("slot already taken")

	// ErrTurnoNotFound is returned when no turno matches the id
	ErrTurnoNotFound = errors.New("turno not found")
)
