package conversation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/atencion-digital/tramites-bot/internal/directory"
	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

// DirectoryAPI is the subset of the Directory Service client the form needs.
type DirectoryAPI interface {
	LookupCitizen(ctx context.Context, dni string) (*directory.Citizen, error)
	CreateCitizen(ctx context.Context, req directory.CreateCitizenRequest) (*directory.Citizen, error)
	ListDepartments(ctx context.Context) ([]directory.Department, error)
	ListProcedures(ctx context.Context, departmentID string) ([]directory.Procedure, error)
	CreateBooking(ctx context.Context, req directory.CreateBookingRequest) (*directory.Booking, error)
}

// MenuOption is a selectable choice rendered by the Dialogue Engine.
type MenuOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Outcome is the result of validating one slot value. Accepted outcomes have
// already mutated the session; rejected ones leave it untouched so the same
// slot is re-requested next turn.
type Outcome struct {
	Accepted bool
	Prompt   string
	Menu     []MenuOption
}

func accepted(prompt string) Outcome { return Outcome{Accepted: true, Prompt: prompt} }
func rejected(prompt string) Outcome { return Outcome{Accepted: false, Prompt: prompt} }

const (
	promptRetryLater    = "No pude consultar el sistema en este momento. Por favor intentá de nuevo en unos minutos."
	promptSessionDone   = "Tu turno ya fue confirmado. Si necesitás otro turno, escribí \"turno\" para empezar de nuevo."
	scheduleInputLayout = "2006-01-02 15:04"
	scheduleWireLayout  = "2006-01-02T15:04:05.000Z"
)

var (
	nonDigits  = regexp.MustCompile(`\D`)
	emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// FormValidator applies per-slot acceptance rules, issuing Directory Service
// calls where a slot's semantics demand them.
type FormValidator struct {
	directory DirectoryAPI
	logger    *logging.Logger
}

// NewFormValidator creates a validator backed by the given directory client.
func NewFormValidator(dir DirectoryAPI, logger *logging.Logger) *FormValidator {
	if dir == nil {
		panic("conversation: directory client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FormValidator{directory: dir, logger: logger}
}

// ValidateDNI normalizes and verifies an identity number. On a syntactically
// valid DNI it performs the directory lookup that decides whether the
// registration sub-flow is needed. A transient lookup failure leaves the
// session untouched; no assumption is made about whether the citizen exists.
func (v *FormValidator) ValidateDNI(ctx context.Context, s *Session, raw string) Outcome {
	if s.Terminal() {
		return rejected(promptSessionDone)
	}

	dni := nonDigits.ReplaceAllString(raw, "")
	if len(dni) < 7 || len(dni) > 8 {
		return rejected("El DNI debe tener 7 u 8 dígitos. Escribilo de nuevo, solo números.")
	}

	citizen, err := v.directory.LookupCitizen(ctx, dni)
	switch {
	case err == nil:
		s.DNI = dni
		s.Identity = IdentityExisting
		s.FullName = strings.TrimSpace(citizen.FirstName + " " + citizen.LastName)
		s.Email = citizen.Email
		s.refresh()
		return accepted(fmt.Sprintf("¡Hola de nuevo, %s! Ya tenemos tus datos.", citizen.FirstName))
	case errors.Is(err, directory.ErrNotFound):
		s.DNI = dni
		s.Identity = IdentityNew
		s.refresh()
		return accepted("No encontré tu DNI en el registro, así que vamos a registrarte. ¿Cuál es tu nombre completo?")
	default:
		v.logger.Warn("dni lookup failed", "session_id", s.ID, "error", err)
		return rejected(promptRetryLater)
	}
}

// ValidateFullName requires at least a first and a last name.
func (v *FormValidator) ValidateFullName(ctx context.Context, s *Session, raw string) Outcome {
	if s.Terminal() {
		return rejected(promptSessionDone)
	}

	name := strings.Join(strings.Fields(raw), " ")
	if len(strings.Fields(name)) < 2 {
		return rejected("Necesito tu nombre y apellido completos, por ejemplo: Juan Pérez.")
	}
	s.FullName = name
	s.refresh()
	return accepted(fmt.Sprintf("Gracias, %s.", name))
}

// ValidateEmail accepts a well-shaped address. When the session is in the
// registration sub-flow and the name is already collected, acceptance also
// creates the citizen record: a conflict means someone registered the DNI
// concurrently, which is the desired end state, so it is folded into success.
func (v *FormValidator) ValidateEmail(ctx context.Context, s *Session, raw string) Outcome {
	if s.Terminal() {
		return rejected(promptSessionDone)
	}

	email := strings.TrimSpace(raw)
	if !emailShape.MatchString(email) {
		return rejected("Ese email no parece válido. Escribilo como nombre@dominio.com.")
	}

	if s.Identity == IdentityNew && s.FullName != "" {
		first, last := splitFullName(s.FullName)
		_, err := v.directory.CreateCitizen(ctx, directory.CreateCitizenRequest{
			DNI:       s.DNI,
			FirstName: first,
			LastName:  last,
			Email:     email,
		})
		switch {
		case err == nil:
			// registered in this session; identity stays "new"
		case errors.Is(err, directory.ErrConflict):
			s.Identity = IdentityExisting
		default:
			v.logger.Warn("citizen creation failed", "session_id", s.ID, "error", err)
			return rejected(promptRetryLater)
		}
	}

	s.Email = email
	s.refresh()
	return accepted("¡Listo! Quedaste registrado.")
}

// ValidateDepartment checks the selection against the live department
// listing. An empty input is not an error: it re-displays the menu.
func (v *FormValidator) ValidateDepartment(ctx context.Context, s *Session, raw string) Outcome {
	if s.Terminal() {
		return rejected(promptSessionDone)
	}

	departments, err := v.directory.ListDepartments(ctx)
	if err != nil {
		v.logger.Warn("department listing failed", "session_id", s.ID, "error", err)
		return rejected(promptRetryLater)
	}

	choice := strings.TrimSpace(raw)
	if choice == "" {
		return Outcome{
			Accepted: false,
			Prompt:   "¿Para qué oficina necesitás el turno?",
			Menu:     departmentMenu(departments),
		}
	}

	for _, d := range departments {
		if d.ID == choice || strings.EqualFold(d.Name, choice) {
			s.DepartmentID = d.ID
			s.refresh()
			return accepted(fmt.Sprintf("Perfecto, turno para %s.", d.Name))
		}
	}
	return Outcome{
		Accepted: false,
		Prompt:   "No encontré esa oficina. Elegí una de la lista:",
		Menu:     departmentMenu(departments),
	}
}

// ValidateProcedure checks the selection against the department's procedure
// listing. It always rejects while no department is chosen, whatever the
// input.
func (v *FormValidator) ValidateProcedure(ctx context.Context, s *Session, raw string) Outcome {
	if s.Terminal() {
		return rejected(promptSessionDone)
	}
	if s.DepartmentID == "" {
		return rejected("Primero tenés que elegir una oficina.")
	}

	procedures, err := v.directory.ListProcedures(ctx, s.DepartmentID)
	if err != nil {
		v.logger.Warn("procedure listing failed", "session_id", s.ID, "error", err)
		return rejected(promptRetryLater)
	}

	choice := strings.TrimSpace(raw)
	if choice == "" {
		return Outcome{
			Accepted: false,
			Prompt:   "¿Qué trámite querés hacer?",
			Menu:     procedureMenu(procedures),
		}
	}

	for _, p := range procedures {
		if p.ID == choice || strings.EqualFold(p.Name, choice) {
			s.ProcedureID = p.ID
			s.refresh()
			return accepted(fmt.Sprintf("Anotado: %s.", p.Name))
		}
	}
	return Outcome{
		Accepted: false,
		Prompt:   "No encontré ese trámite. Elegí uno de la lista:",
		Menu:     procedureMenu(procedures),
	}
}

// ValidateSchedule parses "YYYY-MM-DD HH:MM" and normalizes it to a UTC
// timestamp with explicit seconds and millis.
func (v *FormValidator) ValidateSchedule(ctx context.Context, s *Session, raw string) Outcome {
	if s.Terminal() {
		return rejected(promptSessionDone)
	}

	t, err := time.ParseInLocation(scheduleInputLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return rejected("No entendí la fecha. Escribila como AAAA-MM-DD HH:MM, por ejemplo: 2025-11-01 10:30.")
	}
	s.ScheduledAt = t.UTC().Format(scheduleWireLayout)
	s.refresh()
	return accepted(fmt.Sprintf("Turno pedido para el %s.", t.Format("02/01/2006 15:04")))
}

func splitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func departmentMenu(departments []directory.Department) []MenuOption {
	menu := make([]MenuOption, 0, len(departments))
	for _, d := range departments {
		menu = append(menu, MenuOption{ID: d.ID, Label: d.Name})
	}
	return menu
}

func procedureMenu(procedures []directory.Procedure) []MenuOption {
	menu := make([]MenuOption, 0, len(procedures))
	for _, p := range procedures {
		menu = append(menu, MenuOption{ID: p.ID, Label: p.Name})
	}
	return menu
}
