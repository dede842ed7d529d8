package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffdesk/apiserver/internal/apperror"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/types"
)

// UserHandler provides account administration endpoints.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user administration routes. Every route requires
// the Admin tier.
func UserRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	r.Use(authMiddleware, RequireTier(types.TierAdmin))
	r.Get("/", handler.ListUsers)
	r.Put("/{userID}/role", handler.SetRole)
	r.Put("/{userID}/active", handler.SetActive)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize, err := parsePagination(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	number, size, offset := services.Paging(pageNumber, pageSize)

	users, total, err := h.userService.List(r.Context(), offset, size)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, types.NewPage(users, number, size, total))
}

func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID", "user")
	if err != nil {
		writeAppError(w, err)
		return
	}

	var req SetRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	user, err := h.userService.SetRole(r.Context(), id, req.Role)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID", "user")
	if err != nil {
		writeAppError(w, err)
		return
	}

	var req SetActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.IsActive == nil {
		writeAppError(w, apperror.Validation("is_active is required"))
		return
	}

	user, err := h.userService.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type SetRoleRequest struct {
	Role string `json:"role"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}
