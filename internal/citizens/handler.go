package citizens

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

// Handler handles HTTP requests for citizens
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new citizens handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// Create handles POST /citizens requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCitizenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	citizen, err := h.repo.Create(r.Context(), &req)
	switch {
	case errors.Is(err, ErrDuplicateDNI):
		writeDetail(w, http.StatusConflict, "DNI already registered")
		return
	case errors.Is(err, ErrInvalidDNI), errors.Is(err, ErrInvalidName):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("failed to create citizen", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Error creating citizen")
		return
	}

	h.logger.Info("citizen registered", "dni", citizen.DNI)
	writeJSON(w, http.StatusCreated, citizen)
}

// List handles GET /citizens requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r, 100)

	list, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		h.logger.Error("failed to list citizens", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Error listing citizens")
		return
	}
	if list == nil {
		list = []*Citizen{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetByDNI handles GET /citizens/{dni} requests
func (h *Handler) GetByDNI(w http.ResponseWriter, r *http.Request) {
	dni := chi.URLParam(r, "dni")

	citizen, err := h.repo.GetByDNI(r.Context(), dni)
	switch {
	case errors.Is(err, ErrCitizenNotFound):
		writeDetail(w, http.StatusNotFound, "Citizen not found")
		return
	case err != nil:
		h.logger.Error("failed to fetch citizen", "error", err, "dni", dni)
		writeDetail(w, http.StatusInternalServerError, "Error fetching citizen")
		return
	}
	writeJSON(w, http.StatusOK, citizen)
}

// Update handles PUT /citizens/{dni} requests
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	dni := chi.URLParam(r, "dni")

	var req UpdateCitizenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	citizen, err := h.repo.Update(r.Context(), dni, &req)
	switch {
	case errors.Is(err, ErrCitizenNotFound):
		writeDetail(w, http.StatusNotFound, "Citizen not found")
		return
	case err != nil:
		h.logger.Error("failed to update citizen", "error", err, "dni", dni)
		writeDetail(w, http.StatusInternalServerError, "Error updating citizen")
		return
	}
	writeJSON(w, http.StatusOK, citizen)
}

// Delete handles DELETE /citizens/{dni} requests (admin only)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	dni := chi.URLParam(r, "dni")

	err := h.repo.Delete(r.Context(), dni)
	switch {
	case errors.Is(err, ErrCitizenNotFound):
		writeDetail(w, http.StatusNotFound, "Citizen not found")
		return
	case err != nil:
		h.logger.Error("failed to delete citizen", "error", err, "dni", dni)
		writeDetail(w, http.StatusInternalServerError, "Error deleting citizen")
		return
	}

	h.logger.Info("citizen deleted", "dni", dni)
	w.WriteHeader(http.StatusNoContent)
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
