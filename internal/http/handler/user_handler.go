package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"user-management-service/internal/domain"
	"user-management-service/internal/http/middleware"
	"user-management-service/internal/http/response"
	"user-management-service/internal/observability"
	"user-management-service/internal/service"
)

type UserHandler struct {
	userSvc service.UserServiceInterface
}

func NewUserHandler(userSvc service.UserServiceInterface) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := subjectID(w, r)
	if !ok {
		return
	}
	u, err := h.userSvc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, u)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := subjectID(w, r)
	if !ok {
		return
	}
	var patch service.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		observability.RecordProfileEvent(r.Context(), "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	u, err := h.userSvc.UpdateProfile(r.Context(), id, patch)
	if err != nil {
		observability.RecordProfileEvent(r.Context(), "failure")
		writeServiceError(w, r, err)
		return
	}
	observability.RecordProfileEvent(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, u)
}

// subjectID extracts the authenticated user's id from the token claims.
// A missing or malformed subject writes the error response itself.
func subjectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return uuid.Nil, false
	}
	id, err := claims.UserID()
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return uuid.Nil, false
	}
	return id, true
}

// principalFromContext builds the service-layer principal for
// authorization checks in admin operations.
func principalFromContext(r *http.Request) (service.Principal, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return service.Principal{}, false
	}
	id, err := claims.UserID()
	if err != nil {
		return service.Principal{}, false
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return service.Principal{}, false
	}
	return service.Principal{ID: id, Nickname: claims.Nickname, Role: role}, true
}
