package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"user-management-service/internal/domain"
	"user-management-service/internal/http/middleware"
	"user-management-service/internal/repository"
	"user-management-service/internal/security"
	"user-management-service/internal/service"
)

type stubUserSvc struct {
	registerFn        func(ctx context.Context, input service.RegisterInput) (*domain.User, error)
	authenticateFn    func(ctx context.Context, nickname, password string) (*domain.User, error)
	getByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	updateProfileFn   func(ctx context.Context, id uuid.UUID, patch service.ProfileUpdate) (*domain.User, error)
	changeRoleFn      func(ctx context.Context, actor service.Principal, targetID uuid.UUID, newRole string) (*domain.User, error)
	setProfessionalFn func(ctx context.Context, actor service.Principal, targetID uuid.UUID, isProfessional bool) (*domain.User, error)
	verifyEmailFn     func(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)
	listUsersFn       func(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.User], error)
	auditTrailFn      func(ctx context.Context, userID uuid.UUID, req repository.PageRequest) (repository.PageResult[domain.AuditLog], error)
}

func (s *stubUserSvc) Register(ctx context.Context, input service.RegisterInput) (*domain.User, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, input)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUserSvc) Authenticate(ctx context.Context, nickname, password string) (*domain.User, error) {
	if s.authenticateFn != nil {
		return s.authenticateFn(ctx, nickname, password)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUserSvc) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUserSvc) UpdateProfile(ctx context.Context, id uuid.UUID, patch service.ProfileUpdate) (*domain.User, error) {
	if s.updateProfileFn != nil {
		return s.updateProfileFn(ctx, id, patch)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUserSvc) ChangeRole(ctx context.Context, actor service.Principal, targetID uuid.UUID, newRole string) (*domain.User, error) {
	if s.changeRoleFn != nil {
		return s.changeRoleFn(ctx, actor, targetID, newRole)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUserSvc) SetProfessionalStatus(ctx context.Context, actor service.Principal, targetID uuid.UUID, isProfessional bool) (*domain.User, error) {
	if s.setProfessionalFn != nil {
		return s.setProfessionalFn(ctx, actor, targetID, isProfessional)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUserSvc) VerifyEmail(ctx context.Context, id uuid.UUID, token string) (*domain.User, error) {
	if s.verifyEmailFn != nil {
		return s.verifyEmailFn(ctx, id, token)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUserSvc) ListUsers(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.User], error) {
	if s.listUsersFn != nil {
		return s.listUsersFn(ctx, req)
	}
	return repository.PageResult[domain.User]{}, errors.New("not implemented")
}

func (s *stubUserSvc) AuditTrail(ctx context.Context, userID uuid.UUID, req repository.PageRequest) (repository.PageResult[domain.AuditLog], error) {
	if s.auditTrailFn != nil {
		return s.auditTrailFn(ctx, userID, req)
	}
	return repository.PageResult[domain.AuditLog]{}, errors.New("not implemented")
}

type stubTokenIssuer struct {
	issueFn func(user *domain.User) (*service.IssuedToken, error)
}

func (s *stubTokenIssuer) Issue(user *domain.User) (*service.IssuedToken, error) {
	if s.issueFn != nil {
		return s.issueFn(user)
	}
	return &service.IssuedToken{AccessToken: "token", TokenType: "bearer"}, nil
}

func reqWithClaims(r *http.Request, userID uuid.UUID, role domain.Role) *http.Request {
	claims := &security.Claims{Role: role.String(), Nickname: "tester"}
	claims.RegisteredClaims = jwt.RegisteredClaims{Subject: userID.String()}
	ctx := context.WithValue(r.Context(), middleware.ClaimsContextKey, claims)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func decodeErrCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	errObj, _ := env["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}
