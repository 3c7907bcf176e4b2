package service

import (
	"context"

	"github.com/google/uuid"

	"user-management-service/internal/domain"
	"user-management-service/internal/repository"
)

type UserServiceInterface interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, nickname, password string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfileUpdate) (*domain.User, error)
	ChangeRole(ctx context.Context, actor Principal, targetID uuid.UUID, newRole string) (*domain.User, error)
	SetProfessionalStatus(ctx context.Context, actor Principal, targetID uuid.UUID, isProfessional bool) (*domain.User, error)
	VerifyEmail(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)
	ListUsers(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.User], error)
	AuditTrail(ctx context.Context, userID uuid.UUID, req repository.PageRequest) (repository.PageResult[domain.AuditLog], error)
}

type TokenIssuer interface {
	Issue(user *domain.User) (*IssuedToken, error)
}
