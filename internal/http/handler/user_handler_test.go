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

func TestUserHandlerMe(t *testing.T) {
	userID := uuid.New()

	t.Run("returns own profile", func(t *testing.T) {
		h := NewUserHandler(&stubUserSvc{getByIDFn: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
			if id != userID {
				t.Fatalf("unexpected id %s", id)
			}
			return &domain.User{ID: id, Nickname: "alice"}, nil
		}})
		req := reqWithClaims(httptest.NewRequest(http.MethodGet, "/api/v1/me", nil), userID, domain.RoleAuthenticated)
		rr := httptest.NewRecorder()
		h.Me(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "alice") {
			t.Fatalf("expected profile in body, got %s", rr.Body.String())
		}
	})

	t.Run("missing claims", func(t *testing.T) {
		h := NewUserHandler(&stubUserSvc{})
		rr := httptest.NewRecorder()
		h.Me(rr, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("deleted account maps to 404", func(t *testing.T) {
		h := NewUserHandler(&stubUserSvc{getByIDFn: func(context.Context, uuid.UUID) (*domain.User, error) {
			return nil, repository.ErrUserNotFound
		}})
		req := reqWithClaims(httptest.NewRequest(http.MethodGet, "/api/v1/me", nil), userID, domain.RoleAuthenticated)
		rr := httptest.NewRecorder()
		h.Me(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestUserHandlerUpdateMe(t *testing.T) {
	userID := uuid.New()

	t.Run("applies patch", func(t *testing.T) {
		h := NewUserHandler(&stubUserSvc{updateProfileFn: func(_ context.Context, id uuid.UUID, patch service.ProfileUpdate) (*domain.User, error) {
			if patch.Bio == nil || *patch.Bio != "Gopher" {
				t.Fatalf("expected bio patch, got %+v", patch)
			}
			if patch.FirstName != nil {
				t.Fatal("untouched fields must stay nil")
			}
			return &domain.User{ID: id, Bio: "Gopher"}, nil
		}})
		req := reqWithClaims(httptest.NewRequest(http.MethodPut, "/api/v1/me",
			strings.NewReader(`{"bio":"Gopher"}`)), userID, domain.RoleAuthenticated)
		rr := httptest.NewRecorder()
		h.UpdateMe(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		h := NewUserHandler(&stubUserSvc{})
		req := reqWithClaims(httptest.NewRequest(http.MethodPut, "/api/v1/me",
			strings.NewReader("{")), userID, domain.RoleAuthenticated)
		rr := httptest.NewRecorder()
		h.UpdateMe(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}
