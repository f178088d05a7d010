package turnos

import (
	"strings"
	"time"
)

// Turno statuses. A confirmed turno holds its slot; cancelling releases it.
const (
	StatusConfirmed = "confirmado"
	StatusCancelled = "cancelado"
)

// Turno is a booked appointment slot for an administrative procedure.
type Turno struct {
	ID          string    `json:"id"`
	CitizenID   string    `json:"citizen_id"`
	CitizenDNI  string    `json:"citizen_dni"`
	ProcedureID string    `json:"procedure_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateTurnoRequest is the request body for booking a turno. The citizen is
// identified by DNI, not by internal id.
type CreateTurnoRequest struct {
	ProcedureID string    `json:"procedure_id"`
	CitizenDNI  string    `json:"citizen_dni"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Validate validates the create turno request.
func (r *CreateTurnoRequest) Validate() error {
	if strings.TrimSpace(r.ProcedureID) == "" {
		return ErrMissingProcedure
	}
	if strings.TrimSpace(r.CitizenDNI) == "" {
		return ErrMissingDNI
	}
	if r.ScheduledAt.IsZero() {
		return ErrMissingSchedule
	}
	return nil
}
