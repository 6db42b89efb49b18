package role

import (
	"errors"
	"strings"
	"time"
)

// Role constants
const (
	RoleAdmin = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin}

// Domain errors
var (
	ErrEmptyUserID  = errors.New("user id is required")
	ErrInvalidRole  = errors.New("role must be one of: admin")
	ErrAccessDenied = errors.New("access denied")
)

// Grant records that a user holds a role.
type Grant struct {
	UserID    string
	Role      string
	GrantedAt time.Time
}

// Validate checks if the Grant has valid data.
// PRE: Grant struct is populated
// POST: Returns nil if valid, error otherwise
func (g *Grant) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return ErrEmptyUserID
	}
	if !IsValidRole(g.Role) {
		return ErrInvalidRole
	}
	return nil
}

// IsValidRole reports whether r is a known role.
func IsValidRole(r string) bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}
