package service

import (
	"time"

	"user-management-service/internal/domain"
	"user-management-service/internal/security"
)

// TokenService issues access tokens for authenticated accounts.
type TokenService struct {
	jwtMgr    *security.JWTManager
	accessTTL time.Duration
}

func NewTokenService(jwtMgr *security.JWTManager, accessTTL time.Duration) *TokenService {
	return &TokenService{jwtMgr: jwtMgr, accessTTL: accessTTL}
}

type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *TokenService) Issue(user *domain.User) (*IssuedToken, error) {
	access, err := s.jwtMgr.SignAccessToken(user.ID, user.Nickname, user.Role, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresAt:   time.Now().UTC().Add(s.accessTTL),
	}, nil
}
