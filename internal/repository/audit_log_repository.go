package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"user-management-service/internal/domain"
)

// AuditLogRepository is append-only: records can be created and read, never
// updated or deleted.
type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	ListByUserID(ctx context.Context, userID uuid.UUID, req PageRequest) (PageResult[domain.AuditLog], error)
}

type GormAuditLogRepository struct{ db *gorm.DB }

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

func (r *GormAuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *GormAuditLogRepository) ListByUserID(ctx context.Context, userID uuid.UUID, req PageRequest) (PageResult[domain.AuditLog], error) {
	req = req.clamp()
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.AuditLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return PageResult[domain.AuditLog]{}, err
	}
	var logs []domain.AuditLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(req.offset()).
		Limit(req.PageSize).
		Find(&logs).Error
	if err != nil {
		return PageResult[domain.AuditLog]{}, err
	}
	return PageResult[domain.AuditLog]{
		Items:      logs,
		Page:       req.Page,
		PageSize:   req.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, req.PageSize),
	}, nil
}
