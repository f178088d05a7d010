package conversation

import (
	"time"
)

// Status is the lifecycle state of a booking session.
type Status string

const (
	StatusCollecting Status = "collecting"
	StatusReady      Status = "ready"
	StatusBooked     Status = "booked"
	StatusAbandoned  Status = "abandoned"
)

// IdentityStatus records the outcome of the DNI lookup.
type IdentityStatus string

const (
	// IdentityUnknown means the DNI has not been verified against the directory yet.
	IdentityUnknown IdentityStatus = "unknown"
	// IdentityExisting means the directory already holds a citizen record.
	IdentityExisting IdentityStatus = "existing"
	// IdentityNew means the lookup missed and a registration sub-flow is needed.
	IdentityNew IdentityStatus = "new"
)

// Slot names one piece of information the booking form collects. The names
// double as the Dialogue Engine's slot keys.
type Slot string

const (
	SlotDNI        Slot = "dni"
	SlotFullName   Slot = "nombre_completo"
	SlotEmail      Slot = "email"
	SlotDepartment Slot = "department_id"
	SlotProcedure  Slot = "procedure_id"
	SlotSchedule   Slot = "scheduled_at"
)

// slotDependencies declares which slots must be resolved before another can
// be asked for. Pending order is derived from this table, not hand-ordered
// conditionals: identity first (whether name/email are even required depends
// on its lookup), department before its procedures, schedule last.
var slotDependencies = map[Slot][]Slot{
	SlotDNI:        nil,
	SlotFullName:   {SlotDNI},
	SlotEmail:      {SlotDNI, SlotFullName},
	SlotDepartment: {SlotDNI},
	SlotProcedure:  {SlotDepartment},
	SlotSchedule:   {SlotProcedure},
}

// slotDeclarationOrder breaks ties between slots with no dependency relation.
var slotDeclarationOrder = []Slot{
	SlotDNI,
	SlotFullName,
	SlotEmail,
	SlotDepartment,
	SlotProcedure,
	SlotSchedule,
}

// Session is the collected state of one in-progress booking attempt. The
// Dialogue Engine owns conversation flow; this struct owns every fact the
// booking needs, so validators and the orchestrator are testable without a
// live engine.
type Session struct {
	ID           string         `json:"id"`
	Status       Status         `json:"status"`
	Identity     IdentityStatus `json:"identity"`
	DNI          string         `json:"dni,omitempty"`
	FullName     string         `json:"nombre_completo,omitempty"`
	Email        string         `json:"email,omitempty"`
	DepartmentID string         `json:"department_id,omitempty"`
	ProcedureID  string         `json:"procedure_id,omitempty"`
	ScheduledAt  string         `json:"scheduled_at,omitempty"`
	BookingID    string         `json:"booking_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewSession opens a collecting session for one conversation.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Status:    StatusCollecting,
		Identity:  IdentityUnknown,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// requiredSlots returns the set of slots this session must collect. The base
// set always applies; name and email join it once the lookup shows the DNI is
// unregistered.
func (s *Session) requiredSlots() map[Slot]bool {
	required := map[Slot]bool{
		SlotDNI:        true,
		SlotDepartment: true,
		SlotProcedure:  true,
		SlotSchedule:   true,
	}
	if s.Identity == IdentityNew {
		required[SlotFullName] = true
		required[SlotEmail] = true
	}
	return required
}

// SlotValue returns the collected value for a slot, empty if unfilled.
func (s *Session) SlotValue(slot Slot) string {
	switch slot {
	case SlotDNI:
		return s.DNI
	case SlotFullName:
		return s.FullName
	case SlotEmail:
		return s.Email
	case SlotDepartment:
		return s.DepartmentID
	case SlotProcedure:
		return s.ProcedureID
	case SlotSchedule:
		return s.ScheduledAt
	}
	return ""
}

// PendingSlots derives the ordered list of slots still needed, resolving the
// dependency table topologically. A filled slot never appears; ties follow
// declaration order, so the result is stable across turns.
func (s *Session) PendingSlots() []Slot {
	if s.Status == StatusBooked || s.Status == StatusAbandoned {
		return nil
	}

	required := s.requiredSlots()
	remaining := make(map[Slot]bool, len(required))
	for slot := range required {
		if s.SlotValue(slot) == "" {
			remaining[slot] = true
		}
	}

	// Kahn's algorithm over the declared dependency edges, scanning in
	// declaration order for determinism. Dependencies on slots that are
	// filled or not required count as satisfied.
	resolved := make(map[Slot]bool)
	var order []Slot
	for len(order) < len(remaining) {
		progressed := false
		for _, slot := range slotDeclarationOrder {
			if !remaining[slot] || resolved[slot] {
				continue
			}
			blocked := false
			for _, dep := range slotDependencies[slot] {
				if remaining[dep] && !resolved[dep] {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			resolved[slot] = true
			order = append(order, slot)
			progressed = true
		}
		if !progressed {
			// A dependency cycle would be a programming error in the
			// table; bail out with what resolved so far.
			break
		}
	}
	return order
}

// NextSlot returns the slot the engine should ask for next.
func (s *Session) NextSlot() (Slot, bool) {
	pending := s.PendingSlots()
	if len(pending) == 0 {
		return "", false
	}
	return pending[0], true
}

// Complete reports whether every required slot is filled and the identity is
// verified.
func (s *Session) Complete() bool {
	return s.Identity != IdentityUnknown && len(s.PendingSlots()) == 0
}

// refresh recomputes the lifecycle status after a mutation. Booked and
// abandoned are terminal.
func (s *Session) refresh() {
	s.UpdatedAt = time.Now().UTC()
	if s.Status == StatusBooked || s.Status == StatusAbandoned {
		return
	}
	if s.Complete() {
		s.Status = StatusReady
		return
	}
	s.Status = StatusCollecting
}

// Terminal reports whether the session accepts no further mutation.
func (s *Session) Terminal() bool {
	return s.Status == StatusBooked || s.Status == StatusAbandoned
}
