package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"user-management-service/internal/domain"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("nickname or email already in use")
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByNickname(ctx context.Context, nickname string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.User], error)
	// UpdateRoleWithAudit persists the already-mutated user row and the audit
	// record as one transaction; neither write is visible without the other.
	UpdateRoleWithAudit(ctx context.Context, user *domain.User, log *domain.AuditLog) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, translateUserError(err)
	}
	return &u, nil
}

func (r *GormUserRepository) FindByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("nickname = ?", nickname).First(&u).Error
	if err != nil {
		return nil, translateUserError(err)
	}
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, translateUserError(err)
	}
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	return translateUserError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	return translateUserError(r.db.WithContext(ctx).Save(user).Error)
}

func (r *GormUserRepository) ListPaged(ctx context.Context, req PageRequest) (PageResult[domain.User], error) {
	req = req.clamp()
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return PageResult[domain.User]{}, err
	}
	var users []domain.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(req.offset()).
		Limit(req.PageSize).
		Find(&users).Error
	if err != nil {
		return PageResult[domain.User]{}, err
	}
	return PageResult[domain.User]{
		Items:      users,
		Page:       req.Page,
		PageSize:   req.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, req.PageSize),
	}, nil
}

func (r *GormUserRepository) UpdateRoleWithAudit(ctx context.Context, user *domain.User, log *domain.AuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return translateUserError(err)
		}
		return tx.Create(log).Error
	})
}

func translateUserError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateUser
	default:
		return err
	}
}
