package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"user-management-service/internal/config"
	"user-management-service/internal/domain"
	"user-management-service/internal/security"

	"gorm.io/gorm"
)

// SeedReport records what the bootstrap pass actually did so callers can
// log it or render it for a dry run.
type SeedReport struct {
	AdminCreated  bool   `json:"admin_created"`
	AdminNickname string `json:"admin_nickname,omitempty"`
	Noop          bool   `json:"noop"`
}

// Seed provisions the bootstrap admin account when the config names one.
// It is idempotent: an existing account with the configured nickname or
// email is left untouched.
func Seed(db *gorm.DB, cfg *config.Config) (*SeedReport, error) {
	report := &SeedReport{Noop: true}

	if cfg.BootstrapAdminNickname == "" {
		return report, nil
	}

	nickname := strings.TrimSpace(cfg.BootstrapAdminNickname)
	email := strings.ToLower(strings.TrimSpace(cfg.BootstrapAdminEmail))

	var existing domain.User
	err := db.Where("nickname = ? OR email = ?", nickname, email).First(&existing).Error
	if err == nil {
		report.AdminNickname = existing.Nickname
		return report, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("seed: look up bootstrap admin: %w", err)
	}

	hash, err := security.HashPassword(cfg.BootstrapAdminPassword)
	if err != nil {
		return nil, fmt.Errorf("seed: hash bootstrap admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := domain.NewUser(nickname, email, hash, "", now)
	admin.Role = domain.RoleAdmin
	admin.EmailVerified = true

	if err := db.Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent seeder; the account exists.
			report.AdminNickname = nickname
			return report, nil
		}
		return nil, fmt.Errorf("seed: create bootstrap admin: %w", err)
	}

	report.AdminCreated = true
	report.AdminNickname = nickname
	report.Noop = false
	return report, nil
}
