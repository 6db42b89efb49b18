package projections

import (
	"context"

	"playbook/internal/domain/account"
	"playbook/internal/domain/profile"
)

// ProfileReader loads a participant's profile.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
}

// AccountReader loads identity accounts.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// RoleChecker answers role lookups.
type RoleChecker interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}
