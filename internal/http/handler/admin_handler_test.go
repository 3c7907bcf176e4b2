package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"user-management-service/internal/domain"
	"user-management-service/internal/repository"
	"user-management-service/internal/service"
)

func TestAdminHandlerChangeRoleMatrix(t *testing.T) {
	adminID := uuid.New()
	targetID := uuid.New()

	t.Run("success", func(t *testing.T) {
		h := NewAdminHandler(&stubUserSvc{changeRoleFn: func(_ context.Context, actor service.Principal, id uuid.UUID, newRole string) (*domain.User, error) {
			if actor.ID != adminID || actor.Role != domain.RoleAdmin {
				t.Fatalf("unexpected actor %+v", actor)
			}
			if id != targetID || newRole != "PROFESSIONAL" {
				t.Fatalf("unexpected args %s/%q", id, newRole)
			}
			return &domain.User{ID: id, Role: domain.RoleProfessional}, nil
		}})

		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/users/"+targetID.String()+"/role",
			strings.NewReader(`{"role":"PROFESSIONAL"}`))
		req = reqWithClaims(req, adminID, domain.RoleAdmin)
		req = withURLParam(req, "id", targetID.String())
		rr := httptest.NewRecorder()
		h.ChangeRole(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("forbidden maps to 403", func(t *testing.T) {
		h := NewAdminHandler(&stubUserSvc{changeRoleFn: func(context.Context, service.Principal, uuid.UUID, string) (*domain.User, error) {
			return nil, service.ErrForbidden
		}})
		req := httptest.NewRequest(http.MethodPut, "/x", strings.NewReader(`{"role":"ADMIN"}`))
		req = reqWithClaims(req, uuid.New(), domain.RoleAuthenticated)
		req = withURLParam(req, "id", targetID.String())
		rr := httptest.NewRecorder()
		h.ChangeRole(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("invalid role maps to 400", func(t *testing.T) {
		h := NewAdminHandler(&stubUserSvc{changeRoleFn: func(context.Context, service.Principal, uuid.UUID, string) (*domain.User, error) {
			return nil, domain.ErrInvalidRole
		}})
		req := httptest.NewRequest(http.MethodPut, "/x", strings.NewReader(`{"role":"SUPERUSER"}`))
		req = reqWithClaims(req, adminID, domain.RoleAdmin)
		req = withURLParam(req, "id", targetID.String())
		rr := httptest.NewRecorder()
		h.ChangeRole(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("unknown target maps to 404", func(t *testing.T) {
		h := NewAdminHandler(&stubUserSvc{changeRoleFn: func(context.Context, service.Principal, uuid.UUID, string) (*domain.User, error) {
			return nil, repository.ErrUserNotFound
		}})
		req := httptest.NewRequest(http.MethodPut, "/x", strings.NewReader(`{"role":"ADMIN"}`))
		req = reqWithClaims(req, adminID, domain.RoleAdmin)
		req = withURLParam(req, "id", uuid.NewString())
		rr := httptest.NewRecorder()
		h.ChangeRole(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("missing claims", func(t *testing.T) {
		h := NewAdminHandler(&stubUserSvc{})
		req := httptest.NewRequest(http.MethodPut, "/x", strings.NewReader(`{"role":"ADMIN"}`))
		req = withURLParam(req, "id", targetID.String())
		rr := httptest.NewRecorder()
		h.ChangeRole(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("malformed user id", func(t *testing.T) {
		h := NewAdminHandler(&stubUserSvc{})
		req := httptest.NewRequest(http.MethodPut, "/x", strings.NewReader(`{"role":"ADMIN"}`))
		req = reqWithClaims(req, adminID, domain.RoleAdmin)
		req = withURLParam(req, "id", "not-a-uuid")
		rr := httptest.NewRecorder()
		h.ChangeRole(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

func TestAdminHandlerListUsersPagination(t *testing.T) {
	h := NewAdminHandler(&stubUserSvc{listUsersFn: func(_ context.Context, req repository.PageRequest) (repository.PageResult[domain.User], error) {
		if req.Page != 2 || req.PageSize != 5 {
			t.Fatalf("unexpected page request %+v", req)
		}
		return repository.PageResult[domain.User]{
			Items:      []domain.User{{ID: uuid.New(), Nickname: "alice"}},
			Page:       2,
			PageSize:   5,
			Total:      6,
			TotalPages: 2,
		}, nil
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users?page=2&page_size=5", nil)
	rr := httptest.NewRecorder()
	h.ListUsers(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"total_pages":2`) {
		t.Fatalf("expected pagination block, got %s", rr.Body.String())
	}

	t.Run("rejects bad page param", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListUsers(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/users?page=zero", nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("rejects oversized page_size", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ListUsers(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/users?page_size=1000", nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

func TestAdminHandlerAuditLogs(t *testing.T) {
	targetID := uuid.New()
	h := NewAdminHandler(&stubUserSvc{auditTrailFn: func(_ context.Context, userID uuid.UUID, _ repository.PageRequest) (repository.PageResult[domain.AuditLog], error) {
		if userID != targetID {
			t.Fatalf("unexpected user id %s", userID)
		}
		return repository.PageResult[domain.AuditLog]{
			Items: []domain.AuditLog{{ID: uuid.New(), UserID: targetID, Action: "Changed role to ADMIN"}},
			Total: 1,
		}, nil
	}})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/x", nil), "id", targetID.String())
	rr := httptest.NewRecorder()
	h.AuditLogs(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Changed role to ADMIN") {
		t.Fatalf("expected audit action in body, got %s", rr.Body.String())
	}

	t.Run("unknown user maps to 404", func(t *testing.T) {
		h := NewAdminHandler(&stubUserSvc{auditTrailFn: func(context.Context, uuid.UUID, repository.PageRequest) (repository.PageResult[domain.AuditLog], error) {
			return repository.PageResult[domain.AuditLog]{}, repository.ErrUserNotFound
		}})
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/x", nil), "id", uuid.NewString())
		rr := httptest.NewRecorder()
		h.AuditLogs(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestAdminHandlerSetProfessionalStatus(t *testing.T) {
	adminID := uuid.New()
	targetID := uuid.New()

	t.Run("success", func(t *testing.T) {
		h := NewAdminHandler(&stubUserSvc{setProfessionalFn: func(_ context.Context, actor service.Principal, id uuid.UUID, isProfessional bool) (*domain.User, error) {
			if !isProfessional {
				t.Fatal("expected is_professional=true")
			}
			return &domain.User{ID: id, IsProfessional: true}, nil
		}})
		req := httptest.NewRequest(http.MethodPut, "/x", strings.NewReader(`{"is_professional":true}`))
		req = reqWithClaims(req, adminID, domain.RoleAdmin)
		req = withURLParam(req, "id", targetID.String())
		rr := httptest.NewRecorder()
		h.SetProfessionalStatus(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("missing flag", func(t *testing.T) {
		h := NewAdminHandler(&stubUserSvc{})
		req := httptest.NewRequest(http.MethodPut, "/x", strings.NewReader(`{}`))
		req = reqWithClaims(req, adminID, domain.RoleAdmin)
		req = withURLParam(req, "id", targetID.String())
		rr := httptest.NewRecorder()
		h.SetProfessionalStatus(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}
