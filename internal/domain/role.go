package domain

import "fmt"

// Role is the closed set of account roles. The zero value is not a valid
// role; new accounts start as RolePending.
type Role string

const (
	RolePending       Role = "PENDING"
	RoleAuthenticated Role = "AUTHENTICATED"
	RoleProfessional  Role = "PROFESSIONAL"
	RoleAdmin         Role = "ADMIN"
)

var allRoles = []Role{RolePending, RoleAuthenticated, RoleProfessional, RoleAdmin}

// ParseRole validates a role token against the closed enumeration.
func ParseRole(s string) (Role, error) {
	for _, r := range allRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// Roles returns the full enumeration, in declaration order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}
