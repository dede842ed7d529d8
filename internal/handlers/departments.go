package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/types"
)

// DepartmentHandler provides HTTP handlers for departments.
type DepartmentHandler struct {
	departmentService *services.DepartmentService
}

func NewDepartmentHandler(departmentService *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

// DepartmentRouter registers department routes on the given router.
func DepartmentRouter(r chi.Router, departmentService *services.DepartmentService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewDepartmentHandler(departmentService)

	r.Use(authMiddleware)
	r.With(RequireTier(types.TierEmployee)).Get("/", handler.ListDepartments)
	r.With(RequireTier(types.TierEmployee)).Get("/statistics", handler.Statistics)
	r.With(RequireTier(types.TierHR)).Post("/", handler.CreateDepartment)
	r.Route("/{departmentID}", func(r chi.Router) {
		r.With(RequireTier(types.TierEmployee)).Get("/", handler.GetDepartment)
		r.With(RequireTier(types.TierHR)).Put("/", handler.UpdateDepartment)
		r.With(RequireTier(types.TierAdmin)).Delete("/", handler.DeleteDepartment)
	})
}

func (h *DepartmentHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.departmentService.List(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, departments)
}

func (h *DepartmentHandler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "departmentID", "department")
	if err != nil {
		writeAppError(w, err)
		return
	}

	detail, err := h.departmentService.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *DepartmentHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req services.DepartmentInput
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	created, err := h.departmentService.Create(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *DepartmentHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "departmentID", "department")
	if err != nil {
		writeAppError(w, err)
		return
	}

	var req services.DepartmentPatch
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	updated, err := h.departmentService.Update(r.Context(), id, req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *DepartmentHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "departmentID", "department")
	if err != nil {
		writeAppError(w, err)
		return
	}

	if err := h.departmentService.Delete(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DepartmentHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.departmentService.Statistics(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
