package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"user-management-service/internal/domain"
	"user-management-service/internal/observability"
	"user-management-service/internal/repository"
	"user-management-service/internal/security"
)

var (
	ErrNicknameTaken            = errors.New("nickname already in use")
	ErrEmailTaken               = errors.New("email already registered")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrInvalidVerificationToken = errors.New("invalid or already-consumed verification token")
	ErrWeakPassword             = errors.New("password does not meet policy requirements")
	ErrInvalidInput             = errors.New("invalid input")
)

const DefaultMaxFailedLogins = 5

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
)

const verificationTokenBytes = 32

// UserService orchestrates the account lifecycle: signup, authentication,
// profile updates, email verification and the audited role change.
type UserService struct {
	users           repository.UserRepository
	audits          repository.AuditLogRepository
	notifier        RegistrationNotifier
	logger          *slog.Logger
	maxFailedLogins int

	// now is swapped out in tests to keep timestamps deterministic.
	now func() time.Time
}

func NewUserService(
	users repository.UserRepository,
	audits repository.AuditLogRepository,
	notifier RegistrationNotifier,
	logger *slog.Logger,
	maxFailedLogins int,
) *UserService {
	if maxFailedLogins <= 0 {
		maxFailedLogins = DefaultMaxFailedLogins
	}
	return &UserService{
		users:           users,
		audits:          audits,
		notifier:        notifier,
		logger:          logger,
		maxFailedLogins: maxFailedLogins,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

// Register creates a PENDING account with a fresh verification token and
// fires the registration email. Email delivery is best-effort: a send
// failure is logged and the signup still succeeds.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	nickname := strings.TrimSpace(input.Nickname)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname is required", ErrInvalidInput)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByNickname(ctx, nickname); err == nil {
		return nil, ErrNicknameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	token, err := security.NewRandomString(verificationTokenBytes)
	if err != nil {
		return nil, err
	}

	u := domain.NewUser(nickname, email, hash, token, s.now())
	u.FirstName = strings.TrimSpace(input.FirstName)
	u.LastName = strings.TrimSpace(input.LastName)
	u.Bio = strings.TrimSpace(input.Bio)
	if err := s.users.Create(ctx, u); err != nil {
		// Lost the race against a concurrent signup. The unique index is the
		// source of truth, but it does not say which key collided, so the
		// duplicate error is returned as-is rather than guessed at.
		return nil, err
	}

	if err := s.notifier.SendRegistrationEmail(ctx, RegistrationNotification{
		UserID:            u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		Nickname:          u.Nickname,
		VerificationToken: token,
	}); err != nil {
		s.logger.WarnContext(ctx, "registration email failed",
			"user_id", u.ID, "error", err.Error())
	}
	return u, nil
}

// Authenticate verifies nickname + password. Unknown nickname, wrong
// password and locked account all collapse into ErrInvalidCredentials so the
// caller cannot probe account existence or state. Locked accounts
// short-circuit before the hash comparison and their counter stays put.
func (s *UserService) Authenticate(ctx context.Context, nickname, password string) (*domain.User, error) {
	u, err := s.users.FindByNickname(ctx, strings.TrimSpace(nickname))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.IsLocked {
		return nil, ErrInvalidCredentials
	}

	ok, err := security.VerifyPassword(u.HashedPassword, password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !ok {
		u.RecordFailedLogin(now)
		if u.FailedLoginAttempts >= s.maxFailedLogins {
			u.Lock(now)
			observability.RecordAccountLock(ctx)
			s.logger.WarnContext(ctx, "account locked after repeated login failures",
				"user_id", u.ID, "failed_attempts", u.FailedLoginAttempts)
		}
		if err := s.users.Update(ctx, u); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	u.ResetFailedLogins(now)
	u.RecordLogin(now)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// ProfileUpdate is a pointer-field patch: nil means "leave unchanged".
type ProfileUpdate struct {
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	Bio                *string `json:"bio"`
	ProfilePictureURL  *string `json:"profile_picture_url"`
	GithubProfileURL   *string `json:"github_profile_url"`
	LinkedinProfileURL *string `json:"linkedin_profile_url"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfileUpdate) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.ProfilePictureURL != nil {
		u.ProfilePictureURL = *patch.ProfilePictureURL
	}
	if patch.GithubProfileURL != nil {
		u.GithubProfileURL = *patch.GithubProfileURL
	}
	if patch.LinkedinProfileURL != nil {
		u.LinkedinProfileURL = *patch.LinkedinProfileURL
	}
	u.UpdatedAt = s.now()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangeRole is the privileged operation. The role token is validated before
// anything else, the actor's role before any load or mutation, and the user
// row update commits in one transaction with the audit record.
func (s *UserService) ChangeRole(ctx context.Context, actor Principal, targetID uuid.UUID, newRole string) (*domain.User, error) {
	role, err := domain.ParseRole(newRole)
	if err != nil {
		return nil, err
	}
	if _, err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u.AssignRole(role, now)
	log := domain.NewRoleChangeAudit(u.ID, actor.ID, role, now)
	if err := s.users.UpdateRoleWithAudit(ctx, u, log); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "role changed",
		"user_id", u.ID, "new_role", role.String(), "performed_by", actor.ID)
	return u, nil
}

// SetProfessionalStatus toggles the professional flag; admin-only.
func (s *UserService) SetProfessionalStatus(ctx context.Context, actor Principal, targetID uuid.UUID, isProfessional bool) (*domain.User, error) {
	if _, err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	u.SetProfessionalStatus(isProfessional, s.now())
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyEmail consumes the verification token. Verifying an already-verified
// account is a no-op success so duplicate clicks on the emailed link don't
// surface errors.
func (s *UserService) VerifyEmail(ctx context.Context, id uuid.UUID, token string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.EmailVerified {
		return u, nil
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(u.VerificationToken), []byte(token)) != 1 {
		return nil, ErrInvalidVerificationToken
	}
	u.VerifyEmail(s.now())
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.User], error) {
	return s.users.ListPaged(ctx, req)
}

// AuditTrail returns the subject's audit records, newest first.
func (s *UserService) AuditTrail(ctx context.Context, userID uuid.UUID, req repository.PageRequest) (repository.PageResult[domain.AuditLog], error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return repository.PageResult[domain.AuditLog]{}, err
	}
	return s.audits.ListByUserID(ctx, userID, req)
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 ||
		!uppercaseRe.MatchString(password) ||
		!lowercaseRe.MatchString(password) ||
		!digitRe.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
