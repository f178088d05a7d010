package directory

// Citizen is the directory record for a registered person.
type Citizen struct {
	DNI       string `json:"dni"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Department is a government office that owns procedures.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Procedure is a bookable tramite scoped to a department.
type Procedure struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id,omitempty"`
}

// Booking is a confirmed appointment (turno).
type Booking struct {
	ID          string `json:"id"`
	ProcedureID string `json:"procedure_id"`
	CitizenDNI  string `json:"citizen_dni"`
	ScheduledAt string `json:"scheduled_at"`
	Status      string `json:"status"`
}

// CreateCitizenRequest registers a new citizen record.
type CreateCitizenRequest struct {
	DNI       string `json:"dni"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// CreateBookingRequest submits a turno.
type CreateBookingRequest struct {
	ProcedureID string `json:"procedure_id"`
	CitizenDNI  string `json:"citizen_dni"`
	ScheduledAt string `json:"scheduled_at"`
}
