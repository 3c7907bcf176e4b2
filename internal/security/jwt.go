package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"user-management-service/internal/domain"
)

var ErrInvalidToken = errors.New("invalid access token")

// Claims carries the principal's identity and role inside an access token.
type Claims struct {
	Role     string `json:"role"`
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the token subject back into the account identity.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

type JWTManager struct {
	issuer   string
	audience string
	secret   []byte
}

func NewJWTManager(issuer, audience, secret string) *JWTManager {
	return &JWTManager{issuer: issuer, audience: audience, secret: []byte(secret)}
}

func (m *JWTManager) SignAccessToken(userID uuid.UUID, nickname string, role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Role:     role.String(),
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *JWTManager) ParseAccessToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
