package role

import (
	"context"

	domain "playbook/internal/domain/role"
)

// Store defines the interface for role grant persistence.
type Store interface {
	// HasRole reports whether userID holds role.
	HasRole(ctx context.Context, userID, role string) (bool, error)
	// Grant upserts a grant.
	Grant(ctx context.Context, g domain.Grant) error
	// Revoke removes a grant. Revoking a missing grant is a no-op.
	Revoke(ctx context.Context, userID, role string) error
	// ListByRole returns every grant of role, oldest first.
	ListByRole(ctx context.Context, role string) ([]domain.Grant, error)
}
