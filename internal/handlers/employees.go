package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/types"
)

const csvContentType = "text/csv; charset=utf-8"

// EmployeeHandler provides HTTP handlers for employees and their reports.
type EmployeeHandler struct {
	employeeService *services.EmployeeService
	exportService   *services.ExportService
}

func NewEmployeeHandler(employeeService *services.EmployeeService, exportService *services.ExportService) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		exportService:   exportService,
	}
}

// EmployeeRouter registers employee routes on the given router.
func EmployeeRouter(
	r chi.Router,
	employeeService *services.EmployeeService,
	exportService *services.ExportService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewEmployeeHandler(employeeService, exportService)

	r.Use(authMiddleware)
	r.Group(func(r chi.Router) {
		r.Use(RequireTier(types.TierEmployee))
		r.Get("/", handler.ListEmployees)
		r.Get("/profile", handler.MyProfile)
		r.Get("/statistics", handler.Statistics)
		r.Get("/statistics/count", handler.ActiveCount)
		r.Get("/export", handler.Export)
		r.Get("/department/{departmentID}/total-salary", handler.TotalSalary)
		r.Get("/{employeeID}", handler.GetEmployee)
	})
	r.Group(func(r chi.Router) {
		r.Use(RequireTier(types.TierHR))
		r.Get("/exports/{exportID}", handler.ArchivedExport)
		r.Post("/", handler.CreateEmployee)
		r.Put("/{employeeID}", handler.UpdateEmployee)
		r.Delete("/{employeeID}", handler.DeleteEmployee)
	})
}

func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEmployeeFilter(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	pageNumber, pageSize, err := parsePagination(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	page, err := h.employeeService.List(r.Context(), filter, pageNumber, pageSize)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "employeeID", "employee")
	if err != nil {
		writeAppError(w, err)
		return
	}

	employee, err := h.employeeService.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

func (h *EmployeeHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	employee, err := h.employeeService.GetByUserID(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req services.EmployeeInput
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	created, err := h.employeeService.Create(r.Context(), req, userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseID(r, "employeeID", "employee")
	if err != nil {
		writeAppError(w, err)
		return
	}

	var req services.EmployeePatch
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	updated, err := h.employeeService.Update(r.Context(), id, req, userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseID(r, "employeeID", "employee")
	if err != nil {
		writeAppError(w, err)
		return
	}

	if err := h.employeeService.Delete(r.Context(), id, userID); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandler) TotalSalary(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "departmentID", "department")
	if err != nil {
		writeAppError(w, err)
		return
	}

	total, err := h.employeeService.TotalSalaryByDepartment(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TotalSalaryResponse{DepartmentID: id, TotalSalary: total})
}

func (h *EmployeeHandler) ActiveCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.employeeService.ActiveCount(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActiveCountResponse{ActiveEmployeeCount: count})
}

func (h *EmployeeHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.employeeService.Statistics(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Export renders the filtered employee list as CSV. When the export was
// archived its id is returned in the X-Export-Key header.
func (h *EmployeeHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEmployeeFilter(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	export, err := h.exportService.Employees(r.Context(), filter)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if export.ID != "" {
		w.Header().Set("X-Export-Key", export.ID)
	}
	w.Header().Set("Content-Type", csvContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

func (h *EmployeeHandler) ArchivedExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "exportID")

	rc, err := h.exportService.Archived(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", csvContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "employees-"+id+".csv"))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("failed to stream export %s: %v", id, err)
	}
}

type TotalSalaryResponse struct {
	DepartmentID int             `json:"department_id"`
	TotalSalary  decimal.Decimal `json:"total_salary"`
}

type ActiveCountResponse struct {
	ActiveEmployeeCount int `json:"active_employee_count"`
}

func parseEmployeeFilter(r *http.Request) (types.EmployeeFilter, error) {
	filter := types.EmployeeFilter{
		Search: queryValue(r, "search"),
		SortBy: types.EmployeeSort(strings.ToLower(queryValue(r, "sortBy"))),
	}

	var err error
	if filter.DepartmentID, err = optionalIntPtr(r, "departmentId"); err != nil {
		return filter, err
	}
	if raw := queryValue(r, "status"); raw != "" {
		status := types.EmploymentStatus(raw)
		if !status.Valid() {
			return filter, apperror.Validation("invalid status")
		}
		filter.Status = &status
	}
	if filter.HireDateFrom, err = optionalDate(r, "hireDateFrom"); err != nil {
		return filter, err
	}
	if filter.HireDateTo, err = optionalDate(r, "hireDateTo"); err != nil {
		return filter, err
	}
	if filter.MinSalary, err = optionalDecimal(r, "minSalary"); err != nil {
		return filter, err
	}
	if filter.MaxSalary, err = optionalDecimal(r, "maxSalary"); err != nil {
		return filter, err
	}
	if filter.SortDescending, err = boolOrDefault(r, "sortDescending", true); err != nil {
		return filter, err
	}
	return filter, nil
}
