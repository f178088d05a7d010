package citizens

import (
	"regexp"
	"strings"
	"time"
)

// Citizen is a registered person in the directory, keyed by DNI.
type Citizen struct {
	ID        string    `json:"id"`
	DNI       string    `json:"dni"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCitizenRequest is the request body for registering a citizen.
type CreateCitizenRequest struct {
	DNI       string `json:"dni"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

var dniShape = regexp.MustCompile(`^[0-9]{7,8}$`)

// Validate validates the create citizen request.
func (r *CreateCitizenRequest) Validate() error {
	if !dniShape.MatchString(strings.TrimSpace(r.DNI)) {
		return ErrInvalidDNI
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return ErrInvalidName
	}
	return nil
}

// UpdateCitizenRequest carries the mutable fields; empty fields are left as-is.
type UpdateCitizenRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}
