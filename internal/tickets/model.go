package tickets

import (
	"strings"
	"time"
)

// Ticket statuses. New tickets open as "abierto"; officials move them through
// the remaining states from the admin surface.
const (
	StatusOpen       = "abierto"
	StatusInProgress = "en_proceso"
	StatusResolved   = "resuelto"
	StatusClosed     = "cerrado"
)

// Ticket is a citizen complaint or inquiry tracked by a department.
type Ticket struct {
	ID          string    `json:"id"`
	CitizenID   string    `json:"citizen_id"`
	CitizenDNI  string    `json:"citizen_dni"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTicketRequest is the request body for opening a ticket. The citizen is
// identified by DNI, not by internal id.
type CreateTicketRequest struct {
	CitizenDNI  string `json:"citizen_dni"`
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
}

// Validate validates the create ticket request.
func (r *CreateTicketRequest) Validate() error {
	if strings.TrimSpace(r.CitizenDNI) == "" {
		return ErrMissingDNI
	}
	if strings.TrimSpace(r.Subject) == "" {
		return ErrMissingSubject
	}
	return nil
}

// UpdateStatusRequest is the request body for PUT /tickets/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ValidStatus reports whether s is one of the known ticket states.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}
