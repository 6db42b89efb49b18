package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"playbook/internal/domain/role"
)

// SystemActor identifies the operator CLI, which runs with database access
// and skips role checks.
const SystemActor = "system"

// RequireRole returns role.ErrAccessDenied unless userID holds r.
// PRE: roles is non-nil
// POST: nil only when the grant exists in the store
func RequireRole(ctx context.Context, roles RoleStore, userID, r string) error {
	if userID == SystemActor {
		return nil
	}
	if strings.TrimSpace(userID) == "" {
		return role.ErrAccessDenied
	}
	ok, err := roles.HasRole(ctx, userID, r)
	if err != nil {
		return fmt.Errorf("check role: %w", err)
	}
	if !ok {
		slog.Warn("admin_event", "event", "access_denied", "user_id", userID, "role", r)
		return role.ErrAccessDenied
	}
	return nil
}

// RoleChangeInput identifies whose role changes.
type RoleChangeInput struct {
	Email string
	Role  string
}

// RoleChangeDeps holds dependencies for granting and revoking roles.
type RoleChangeDeps struct {
	Accounts AccountReader
	Roles    RoleStore
	Now      func() time.Time
}

// ExecuteGrantRole grants a role to the account registered under Email.
// PRE: the account exists
// POST: the grant exists; granting twice is a no-op
func ExecuteGrantRole(ctx context.Context, input RoleChangeInput, deps RoleChangeDeps) (role.Grant, error) {
	acct, err := deps.Accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		return role.Grant{}, fmt.Errorf("look up %s: %w", input.Email, err)
	}
	g := role.Grant{UserID: acct.ID, Role: input.Role, GrantedAt: deps.Now()}
	if err := g.Validate(); err != nil {
		return role.Grant{}, err
	}
	if err := deps.Roles.Grant(ctx, g); err != nil {
		return role.Grant{}, fmt.Errorf("grant role: %w", err)
	}
	slog.Info("admin_event", "event", "role_granted", "user_id", acct.ID, "role", input.Role)
	return g, nil
}

// ExecuteRevokeRole removes a role from the account registered under Email.
func ExecuteRevokeRole(ctx context.Context, input RoleChangeInput, deps RoleChangeDeps) error {
	acct, err := deps.Accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		return fmt.Errorf("look up %s: %w", input.Email, err)
	}
	if !role.IsValidRole(input.Role) {
		return role.ErrInvalidRole
	}
	if err := deps.Roles.Revoke(ctx, acct.ID, input.Role); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	slog.Info("admin_event", "event", "role_revoked", "user_id", acct.ID, "role", input.Role)
	return nil
}
