package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"user-management-service/internal/http/response"
	"user-management-service/internal/observability"
	"user-management-service/internal/repository"
	"user-management-service/internal/service"
)

type AdminHandler struct {
	userSvc service.UserServiceInterface
}

func NewAdminHandler(userSvc service.UserServiceInterface) *AdminHandler {
	return &AdminHandler{userSvc: userSvc}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAdminListRequestDuration(r.Context(), "users", status, time.Since(start))
	}()

	pageReq, err := parsePageRequest(r)
	if err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	observability.RecordAdminListPageSize(r.Context(), "users", pageReq.PageSize)

	page, err := h.userSvc.ListUsers(r.Context(), pageReq)
	if err != nil {
		status = "failure"
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list users", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, paginatedData(page.Items, page.Page, page.PageSize, page.Total, page.TotalPages))
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
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

func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := principalFromContext(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	u, err := h.userSvc.ChangeRole(r.Context(), actor, id, body.Role)
	if err != nil {
		observability.Audit(r, "admin.role_change.failed", "target_id", id, "performed_by", actor.ID)
		observability.RecordRoleChange(r.Context(), body.Role, "failure")
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "admin.role_change.success",
		"target_id", u.ID, "new_role", u.Role.String(), "performed_by", actor.ID)
	observability.RecordRoleChange(r.Context(), u.Role.String(), "success")
	response.JSON(w, r, http.StatusOK, u)
}

func (h *AdminHandler) SetProfessionalStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := principalFromContext(r)
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var body struct {
		IsProfessional *bool `json:"is_professional"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsProfessional == nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "is_professional is required", nil)
		return
	}

	u, err := h.userSvc.SetProfessionalStatus(r.Context(), actor, id, *body.IsProfessional)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "admin.professional_status.updated",
		"target_id", u.ID, "is_professional", u.IsProfessional, "performed_by", actor.ID)
	response.JSON(w, r, http.StatusOK, u)
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAdminListRequestDuration(r.Context(), "audit_logs", status, time.Since(start))
	}()

	id, ok := pathUserID(w, r)
	if !ok {
		status = "failure"
		return
	}
	pageReq, err := parsePageRequest(r)
	if err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	page, err := h.userSvc.AuditTrail(r.Context(), id, pageReq)
	if err != nil {
		status = "failure"
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, paginatedData(page.Items, page.Page, page.PageSize, page.Total, page.TotalPages))
}

func pathUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	page := repository.DefaultPage
	pageSize := repository.DefaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page must be a positive integer")
		}
		page = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page_size must be a positive integer")
		}
		if v > repository.MaxPageSize {
			return repository.PageRequest{}, fmt.Errorf("page_size must be <= %d", repository.MaxPageSize)
		}
		pageSize = v
	}
	return repository.PageRequest{Page: page, PageSize: pageSize}, nil
}

func paginatedData[T any](items []T, page, pageSize int, total int64, totalPages int) map[string]any {
	return map[string]any{
		"items": items,
		"pagination": map[string]any{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages,
		},
	}
}
