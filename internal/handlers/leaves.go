package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/types"
)

// LeaveHandler provides HTTP handlers for the leave workflow.
type LeaveHandler struct {
	leaveService *services.LeaveService
}

func NewLeaveHandler(leaveService *services.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveService: leaveService}
}

// LeaveRouter registers leave routes on the given router.
func LeaveRouter(r chi.Router, leaveService *services.LeaveService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewLeaveHandler(leaveService)

	r.Use(authMiddleware)
	r.With(RequireTier(types.TierHR)).Get("/", handler.ListLeaves)
	r.With(RequireTier(types.TierEmployee)).Post("/", handler.CreateLeave)
	r.With(RequireTier(types.TierEmployee)).Get("/my-leaves", handler.MyLeaves)
	r.With(RequireTier(types.TierEmployee)).Get("/balance", handler.Balance)
	r.Route("/{leaveID}", func(r chi.Router) {
		r.With(RequireTier(types.TierEmployee)).Get("/", handler.GetLeave)
		r.With(RequireTier(types.TierHR)).Put("/approve", handler.Decide)
		r.With(RequireTier(types.TierEmployee)).Put("/cancel", handler.Cancel)
	})
}

func (h *LeaveHandler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLeaveFilter(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	pageNumber, pageSize, err := parsePagination(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	page, err := h.leaveService.List(r.Context(), filter, pageNumber, pageSize)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *LeaveHandler) MyLeaves(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	leaves, err := h.leaveService.MyLeaves(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leaves)
}

func (h *LeaveHandler) GetLeave(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "leaveID", "leave request")
	if err != nil {
		writeAppError(w, err)
		return
	}

	leave, err := h.leaveService.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leave)
}

func (h *LeaveHandler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req services.LeaveInput
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	leave, err := h.leaveService.CreateForUser(r.Context(), userID, req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, leave)
}

func (h *LeaveHandler) Decide(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseID(r, "leaveID", "leave request")
	if err != nil {
		writeAppError(w, err)
		return
	}

	var req DecideLeaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.Approve == nil {
		writeAppError(w, apperror.Validation("approve is required"))
		return
	}

	leave, err := h.leaveService.Decide(r.Context(), id, *req.Approve, req.Comments, userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leave)
}

func (h *LeaveHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseID(r, "leaveID", "leave request")
	if err != nil {
		writeAppError(w, err)
		return
	}

	if _, err := h.leaveService.Cancel(r.Context(), id, services.Actor{UserID: userID, Role: claims.Role}); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Leave request cancelled successfully"})
}

func (h *LeaveHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	balance, err := h.leaveService.BalanceForUser(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

type DecideLeaveRequest struct {
	Approve  *bool   `json:"approve"`
	Comments *string `json:"comments"`
}

func parseLeaveFilter(r *http.Request) (types.LeaveFilter, error) {
	var filter types.LeaveFilter
	var err error

	if filter.EmployeeID, err = optionalIntPtr(r, "employeeId"); err != nil {
		return filter, err
	}
	if raw := queryValue(r, "type"); raw != "" {
		leaveType := types.LeaveType(raw)
		if !leaveType.Valid() {
			return filter, apperror.Validation("invalid leave type")
		}
		filter.Type = &leaveType
	}
	if raw := queryValue(r, "status"); raw != "" {
		status := types.LeaveStatus(raw)
		if !status.Valid() {
			return filter, apperror.Validation("invalid leave status")
		}
		filter.Status = &status
	}
	if filter.StartDate, err = optionalDate(r, "startDate"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = optionalDate(r, "endDate"); err != nil {
		return filter, err
	}
	return filter, nil
}
