package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of a privileged action. It references
// the subject and the acting principal by id only; once written it is never
// updated or deleted.
type AuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Action      string    `gorm:"size:100;not null" json:"action"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	PerformedBy uuid.UUID `gorm:"type:uuid;not null" json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRoleChangeAudit records a role change on subject performed by actor.
func NewRoleChangeAudit(subject uuid.UUID, actor uuid.UUID, newRole Role, now time.Time) *AuditLog {
	return &AuditLog{
		ID:          uuid.New(),
		Action:      fmt.Sprintf("Changed role to %s", newRole),
		UserID:      subject,
		PerformedBy: actor,
		CreatedAt:   now,
	}
}
