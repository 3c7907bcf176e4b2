package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type RegistrationNotification struct {
	UserID            uuid.UUID
	Email             string
	FirstName         string
	Nickname          string
	VerificationToken string
}

// RegistrationNotifier delivers the post-signup email. The lifecycle service
// treats delivery as best-effort: a send failure never fails the signup.
type RegistrationNotifier interface {
	SendRegistrationEmail(ctx context.Context, notification RegistrationNotification) error
}

// DevRegistrationNotifier logs the verification token instead of sending
// mail; used in development and tests.
type DevRegistrationNotifier struct {
	logger *slog.Logger
}

func NewDevRegistrationNotifier(logger *slog.Logger) *DevRegistrationNotifier {
	return &DevRegistrationNotifier{logger: logger}
}

func (n *DevRegistrationNotifier) SendRegistrationEmail(ctx context.Context, notification RegistrationNotification) error {
	n.logger.InfoContext(ctx, "registration email issued",
		"user_id", notification.UserID,
		"email", notification.Email,
		"nickname", notification.Nickname,
		"verification_token", notification.VerificationToken,
	)
	return nil
}
