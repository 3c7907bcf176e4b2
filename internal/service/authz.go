package service

import (
	"errors"

	"github.com/google/uuid"

	"user-management-service/internal/domain"
)

var ErrForbidden = errors.New("insufficient role")

// Principal is the acting identity resolved from request credentials.
type Principal struct {
	ID       uuid.UUID
	Nickname string
	Role     domain.Role
}

// RequireRole returns the principal unchanged when its role is in the allow
// list, ErrForbidden otherwise. Stateless by design: authorization decisions
// depend only on the resolved role and the allow list.
func RequireRole(p Principal, allowed ...domain.Role) (Principal, error) {
	for _, r := range allowed {
		if p.Role == r {
			return p, nil
		}
	}
	return Principal{}, ErrForbidden
}
