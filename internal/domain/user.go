package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the account aggregate: identity, credential, role and the
// security counters that drive lockout. All state transitions take the
// current time from the caller so entity behavior stays deterministic in
// tests; callers pass UTC.
type User struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Nickname            string     `gorm:"uniqueIndex;size:50;not null" json:"nickname"`
	Email               string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPassword      string     `gorm:"size:255;not null" json:"-"`
	FirstName           string     `gorm:"size:50" json:"first_name,omitempty"`
	LastName            string     `gorm:"size:50" json:"last_name,omitempty"`
	Bio                 string     `gorm:"size:255" json:"bio,omitempty"`
	ProfilePictureURL   string     `gorm:"size:255" json:"profile_picture_url,omitempty"`
	GithubProfileURL    string     `gorm:"size:255" json:"github_profile_url,omitempty"`
	LinkedinProfileURL  string     `gorm:"size:255" json:"linkedin_profile_url,omitempty"`
	Role                Role       `gorm:"size:32;not null;default:PENDING" json:"role"`
	EmailVerified       bool       `gorm:"not null;default:false" json:"email_verified"`
	IsProfessional      bool       `gorm:"not null;default:false" json:"is_professional"`
	IsLocked            bool       `gorm:"not null;default:false" json:"is_locked"`
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	VerificationToken   string     `gorm:"size:255" json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewUser builds a fresh account in its signup state: PENDING role,
// unverified email, a verification token pending consumption.
func NewUser(nickname, email, hashedPassword, verificationToken string, now time.Time) *User {
	return &User{
		ID:                uuid.New(),
		Nickname:          nickname,
		Email:             email,
		HashedPassword:    hashedPassword,
		Role:              RolePending,
		VerificationToken: verificationToken,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (u *User) touch(now time.Time) { u.UpdatedAt = now }

// SetProfessionalStatus flips the professional flag.
func (u *User) SetProfessionalStatus(isProfessional bool, now time.Time) {
	u.IsProfessional = isProfessional
	u.touch(now)
}

// Lock marks the account locked. Locking an already-locked account is a
// no-op apart from updated_at; the flag is never cleared by any operation.
func (u *User) Lock(now time.Time) {
	u.IsLocked = true
	u.touch(now)
}

// RecordFailedLogin advances the failed-attempt counter.
func (u *User) RecordFailedLogin(now time.Time) {
	u.FailedLoginAttempts++
	u.touch(now)
}

// ResetFailedLogins clears the failed-attempt counter after a successful
// authentication.
func (u *User) ResetFailedLogins(now time.Time) {
	u.FailedLoginAttempts = 0
	u.touch(now)
}

// RecordLogin stamps last_login_at.
func (u *User) RecordLogin(now time.Time) {
	t := now
	u.LastLoginAt = &t
	u.touch(now)
}

// AssignRole sets the account role. Callers are responsible for validating
// the role token and for writing the matching audit record.
func (u *User) AssignRole(role Role, now time.Time) {
	u.Role = role
	u.touch(now)
}

// VerifyEmail consumes the verification token. Verification promotes the
// account to AUTHENTICATED regardless of its current role; re-applying to an
// already-verified account is a logical no-op.
func (u *User) VerifyEmail(now time.Time) {
	if u.EmailVerified {
		return
	}
	u.EmailVerified = true
	u.Role = RoleAuthenticated
	u.VerificationToken = ""
	u.touch(now)
}
