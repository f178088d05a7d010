package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

// Handler handles HTTP requests for the reference catalog
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListDepartments handles GET /departments requests
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.repo.ListDepartments(r.Context())
	if err != nil {
		h.logger.Error("failed to list departments", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Error listing departments")
		return
	}
	if departments == nil {
		departments = []Department{}
	}
	writeJSON(w, http.StatusOK, departments)
}

// ListProcedures handles GET /departments/{id}/procedures requests
func (h *Handler) ListProcedures(w http.ResponseWriter, r *http.Request) {
	departmentID := chi.URLParam(r, "id")

	procedures, err := h.repo.ListProcedures(r.Context(), departmentID)
	switch {
	case errors.Is(err, ErrDepartmentNotFound):
		writeDetail(w, http.StatusNotFound, "Department not found")
		return
	case err != nil:
		h.logger.Error("failed to list procedures", "error", err, "department_id", departmentID)
		writeDetail(w, http.StatusInternalServerError, "Error listing procedures")
		return
	}
	if procedures == nil {
		procedures = []Procedure{}
	}
	writeJSON(w, http.StatusOK, procedures)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
