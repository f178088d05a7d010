package tickets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

// Handler handles HTTP requests for tickets
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new tickets handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// Create handles POST /tickets requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.repo.Create(r.Context(), &req)
	switch {
	case errors.Is(err, ErrUnknownCitizen):
		writeDetail(w, http.StatusNotFound, "Citizen not found")
		return
	case errors.Is(err, ErrMissingDNI), errors.Is(err, ErrMissingSubject):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("failed to create ticket", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Error creating ticket")
		return
	}

	h.logger.Info("ticket opened", "id", ticket.ID, "dni", ticket.CitizenDNI)
	writeJSON(w, http.StatusCreated, ticket)
}

// List handles GET /tickets requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r, 100)

	list, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		h.logger.Error("failed to list tickets", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Error listing tickets")
		return
	}
	if list == nil {
		list = []*Ticket{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetByID handles GET /tickets/{id} requests
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ticket, err := h.repo.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, ErrTicketNotFound):
		writeDetail(w, http.StatusNotFound, "Ticket not found")
		return
	case err != nil:
		h.logger.Error("failed to fetch ticket", "error", err, "id", id)
		writeDetail(w, http.StatusInternalServerError, "Error fetching ticket")
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// UpdateStatus handles PUT /tickets/{id}/status requests (admin only)
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.repo.UpdateStatus(r.Context(), id, req.Status)
	switch {
	case errors.Is(err, ErrInvalidStatus):
		writeDetail(w, http.StatusBadRequest, "invalid ticket status")
		return
	case errors.Is(err, ErrTicketNotFound):
		writeDetail(w, http.StatusNotFound, "Ticket not found")
		return
	case err != nil:
		h.logger.Error("failed to update ticket status", "error", err, "id", id)
		writeDetail(w, http.StatusInternalServerError, "Error updating ticket")
		return
	}

	h.logger.Info("ticket status updated", "id", id, "status", req.Status)
	writeJSON(w, http.StatusOK, ticket)
}

func pageParams(r *http.Request, maxLimit int) (offset, limit int) {
	offset, limit = 0, maxLimit
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= maxLimit {
			limit = v
		}
	}
	return offset, limit
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
