package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"user-management-service/internal/domain"
	"user-management-service/internal/security"
)

func TestTokenServiceIssue(t *testing.T) {
	mgr := security.NewJWTManager("user-management-service", "user-management-api", "test-secret")
	svc := NewTokenService(mgr, 15*time.Minute)

	user := &domain.User{ID: uuid.New(), Nickname: "alice", Role: domain.RoleAuthenticated}
	issued, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.TokenType != "bearer" {
		t.Fatalf("expected bearer token type, got %q", issued.TokenType)
	}
	if remaining := time.Until(issued.ExpiresAt); remaining < 14*time.Minute || remaining > 15*time.Minute {
		t.Fatalf("unexpected expiry window: %v", remaining)
	}

	claims, err := mgr.ParseAccessToken(issued.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Nickname != "alice" || claims.Role != string(domain.RoleAuthenticated) {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if id != user.ID {
		t.Fatalf("subject mismatch: got %s want %s", id, user.ID)
	}
}
