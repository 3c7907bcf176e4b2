package handler

import (
	"errors"
	"net/http"

	"user-management-service/internal/domain"
	"user-management-service/internal/http/response"
	"user-management-service/internal/repository"
	"user-management-service/internal/service"
)

// writeServiceError maps sentinel errors from the service layer onto the
// API's status codes and stable error codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNicknameTaken):
		response.Error(w, r, http.StatusConflict, "CONFLICT", "nickname already taken", nil)
	case errors.Is(err, service.ErrEmailTaken):
		response.Error(w, r, http.StatusConflict, "CONFLICT", "email already registered", nil)
	case errors.Is(err, repository.ErrDuplicateUser):
		response.Error(w, r, http.StatusConflict, "CONFLICT", "account already exists", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
	case errors.Is(err, service.ErrInvalidVerificationToken):
		response.Error(w, r, http.StatusBadRequest, "INVALID_TOKEN", "invalid verification token", nil)
	case errors.Is(err, service.ErrForbidden):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
	case errors.Is(err, domain.ErrInvalidRole):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, service.ErrWeakPassword):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidInput):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, repository.ErrUserNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
