package turnos

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

// Handler handles HTTP requests for turnos
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new turnos handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// Create handles POST /turnos requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTurnoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	turno, err := h.repo.Create(r.Context(), &req)
	switch {
	case errors.Is(err, ErrUnknownCitizen):
		writeDetail(w, http.StatusNotFound, "Citizen not found")
		return
	case errors.Is(err, ErrUnknownProcedure):
		writeDetail(w, http.StatusNotFound, "Procedure not found")
		return
	case errors.Is(err, ErrSlotTaken):
		writeDetail(w, http.StatusConflict, "El horario elegido ya está ocupado, por favor elegí otro")
		return
	case errors.Is(err, ErrMissingProcedure), errors.Is(err, ErrMissingDNI), errors.Is(err, ErrMissingSchedule):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("failed to create turno", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Error creating turno")
		return
	}

	h.logger.Info("turno booked",
		"id", turno.ID,
		"dni", turno.CitizenDNI,
		"procedure_id", turno.ProcedureID,
		"scheduled_at", turno.ScheduledAt,
	)
	writeJSON(w, http.StatusCreated, turno)
}

// List handles GET /turnos requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r, 100)

	list, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		h.logger.Error("failed to list turnos", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Error listing turnos")
		return
	}
	if list == nil {
		list = []*Turno{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetByID handles GET /turnos/{id} requests
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	turno, err := h.repo.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, ErrTurnoNotFound):
		writeDetail(w, http.StatusNotFound, "Turno not found")
		return
	case err != nil:
		h.logger.Error("failed to fetch turno", "error", err, "id", id)
		writeDetail(w, http.StatusInternalServerError, "Error fetching turno")
		return
	}
	writeJSON(w, http.StatusOK, turno)
}

// Cancel handles PUT /turnos/{id}/cancelar requests
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	turno, err := h.repo.Cancel(r.Context(), id)
	switch {
	case errors.Is(err, ErrTurnoNotFound):
		writeDetail(w, http.StatusNotFound, "Turno not found")
		return
	case err != nil:
		h.logger.Error("failed to cancel turno", "error", err, "id", id)
		writeDetail(w, http.StatusInternalServerError, "Error cancelling turno")
		return
	}

	h.logger.Info("turno cancelled", "id", id)
	writeJSON(w, http.StatusOK, turno)
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
