package actions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/atencion-digital/tramites-bot/internal/conversation"
	"github.com/atencion-digital/tramites-bot/internal/faq"
	"github.com/atencion-digital/tramites-bot/internal/observability/metrics"
	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

// Action names exposed to the dialogue engine, one per form field plus the
// flow entry points.
const (
	ActionTriggerBooking   = "trigger_booking"
	ActionValidateDNI      = "validate_dni"
	ActionValidateFullName = "validate_nombre_completo"
	ActionValidateEmail    = "validate_email"
	ActionValidateDept     = "validate_department_id"
	ActionValidateProc     = "validate_procedure_id"
	ActionValidateSchedule = "validate_scheduled_at"
	ActionBookAppointment  = "book_appointment"
	ActionRequiredSlots    = "required_slots"
	ActionAnswerFAQ        = "answer_faq"
)

// Handler is the dialogue engine's entry point into the booking core. Each
// webhook call is one turn: load the session, apply exactly one validator or
// the orchestrator, save, and report slot events plus prompts.
type Handler struct {
	store        *conversation.SessionStore
	validator    *conversation.FormValidator
	orchestrator *conversation.Orchestrator
	faq          *faq.Table
	metrics      *metrics.ActionMetrics
	logger       *logging.Logger
}

// NewHandler creates the action webhook handler.
func NewHandler(
	store *conversation.SessionStore,
	validator *conversation.FormValidator,
	orchestrator *conversation.Orchestrator,
	table *faq.Table,
	m *metrics.ActionMetrics,
	logger *logging.Logger,
) *Handler {
	if store == nil || validator == nil || orchestrator == nil {
		panic("actions: store, validator and orchestrator are required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:        store,
		validator:    validator,
		orchestrator: orchestrator,
		faq:          table,
		metrics:      m,
		logger:       logger,
	}
}

// Webhook handles POST /webhook.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode webhook request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SenderID == "" {
		req.SenderID = req.Tracker.SenderID
	}
	if req.SenderID == "" || req.NextAction == "" {
		http.Error(w, "sender_id and next_action are required", http.StatusBadRequest)
		return
	}

	// FAQ answers are stateless; no session is loaded or created for them.
	if req.NextAction == ActionAnswerFAQ {
		h.metrics.ObserveAction(req.NextAction, "answered")
		h.writeJSON(w, http.StatusOK, h.answerFAQ(req))
		h.metrics.ObserveTurnLatency(req.NextAction, time.Since(start).Seconds())
		return
	}

	session, err := h.store.Load(r.Context(), req.SenderID)
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound):
		session = conversation.NewSession(req.SenderID)
	case err != nil:
		h.logger.Error("failed to load session", "sender_id", req.SenderID, "error", err)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
		return
	}

	resp, known := h.dispatch(r, req, session)
	if !known {
		http.Error(w, "unknown action: "+req.NextAction, http.StatusNotFound)
		return
	}

	if err := h.store.Save(r.Context(), session); err != nil {
		h.logger.Error("failed to save session", "sender_id", req.SenderID, "error", err)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
	h.metrics.ObserveTurnLatency(req.NextAction, time.Since(start).Seconds())
}

func (h *Handler) dispatch(r *http.Request, req WebhookRequest, session *conversation.Session) (*WebhookResponse, bool) {
	ctx := r.Context()

	switch req.NextAction {
	case ActionTriggerBooking:
		// Explicit menu action, or a free-text match on the booking keywords.
		if text := req.Tracker.LatestMessage.Text; text != "" && !conversation.IsBookingIntent(text) {
			h.metrics.ObserveAction(req.NextAction, "ignored")
			return &WebhookResponse{Events: []Event{}, Responses: []BotMessage{}}, true
		}
		*session = *conversation.NewSession(req.SenderID)
		h.metrics.ObserveAction(req.NextAction, "opened")
		return &WebhookResponse{
			Events: []Event{slotEvent("required_slots", slotNames(session.PendingSlots()))},
			Responses: []BotMessage{
				{Text: "¡Perfecto, saquemos un turno! Primero decime tu número de DNI."},
			},
		}, true

	case ActionValidateDNI:
		return h.applyValidator(ctx, req, session, conversation.SlotDNI, h.validator.ValidateDNI), true
	case ActionValidateFullName:
		return h.applyValidator(ctx, req, session, conversation.SlotFullName, h.validator.ValidateFullName), true
	case ActionValidateEmail:
		return h.applyValidator(ctx, req, session, conversation.SlotEmail, h.validator.ValidateEmail), true
	case ActionValidateDept:
		return h.applyValidator(ctx, req, session, conversation.SlotDepartment, h.validator.ValidateDepartment), true
	case ActionValidateProc:
		return h.applyValidator(ctx, req, session, conversation.SlotProcedure, h.validator.ValidateProcedure), true
	case ActionValidateSchedule:
		return h.applyValidator(ctx, req, session, conversation.SlotSchedule, h.validator.ValidateSchedule), true

	case ActionBookAppointment:
		outcome := h.orchestrator.Book(ctx, session)
		resp := &WebhookResponse{
			Events:    []Event{},
			Responses: []BotMessage{{Text: outcome.Prompt}},
		}
		if outcome.Accepted {
			resp.Events = append(resp.Events, slotEvent("booking_id", session.BookingID))
			h.metrics.ObserveAction(req.NextAction, "booked")
		} else {
			h.metrics.ObserveAction(req.NextAction, "failed")
		}
		return resp, true

	case ActionRequiredSlots:
		h.metrics.ObserveAction(req.NextAction, "listed")
		return &WebhookResponse{
			Events:    []Event{slotEvent("required_slots", slotNames(session.PendingSlots()))},
			Responses: []BotMessage{},
		}, true
	}

	return nil, false
}

type validatorFunc func(ctx context.Context, s *conversation.Session, raw string) conversation.Outcome

// applyValidator runs one slot validator and translates its outcome into
// engine events.
func (h *Handler) applyValidator(
	ctx context.Context,
	req WebhookRequest,
	session *conversation.Session,
	slot conversation.Slot,
	validate validatorFunc,
) *WebhookResponse {
	raw := req.Tracker.Slots[string(slot)]
	if raw == "" {
		raw = req.Tracker.LatestMessage.Text
	}

	outcome := validate(ctx, session, raw)

	resp := &WebhookResponse{Events: []Event{}, Responses: []BotMessage{}}
	if outcome.Prompt != "" || len(outcome.Menu) > 0 {
		msg := BotMessage{Text: outcome.Prompt}
		for _, opt := range outcome.Menu {
			msg.Buttons = append(msg.Buttons, Button{Title: opt.Label, Payload: opt.ID})
		}
		resp.Responses = append(resp.Responses, msg)
	}

	if outcome.Accepted {
		resp.Events = append(resp.Events, slotEvent(string(slot), session.SlotValue(slot)))
		h.metrics.ObserveAction(req.NextAction, "accepted")
	} else {
		// The rejected slot is cleared so the engine re-requests it.
		resp.Events = append(resp.Events, slotEvent(string(slot), nil))
		h.metrics.ObserveAction(req.NextAction, "rejected")
	}
	resp.Events = append(resp.Events, slotEvent("required_slots", slotNames(session.PendingSlots())))
	return resp
}

func (h *Handler) answerFAQ(req WebhookRequest) *WebhookResponse {
	text := req.Tracker.LatestMessage.Text
	if answer, ok := h.faq.Match(text); ok {
		return &WebhookResponse{Events: []Event{}, Responses: []BotMessage{{Text: answer}}}
	}
	return &WebhookResponse{
		Events: []Event{},
		Responses: []BotMessage{
			{Text: "No tengo una respuesta para eso. Podés sacar un turno escribiendo \"turno\" o consultar el portal de trámites."},
		},
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

func slotNames(slots []conversation.Slot) []string {
	names := make([]string, 0, len(slots))
	for _, s := range slots {
		names = append(names, string(s))
	}
	return names
}
