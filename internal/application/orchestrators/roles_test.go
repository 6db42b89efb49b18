package orchestrators

import (
	"context"
	"errors"
	"testing"

	"playbook/internal/domain/account"
	"playbook/internal/domain/role"
)

// TestExecuteGrantRole_GrantAndRevoke tests role changes by email.
func TestExecuteGrantRole_GrantAndRevoke(t *testing.T) {
	roles := newMockRoles()
	deps := RoleChangeDeps{
		Accounts: newMockAccounts(account.Account{ID: "u1", Email: "philip@lightmilemedia.com"}),
		Roles:    roles,
		Now:      testNow,
	}
	g, err := ExecuteGrantRole(context.Background(), RoleChangeInput{Email: "Philip@LightmileMedia.com", Role: role.RoleAdmin}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.UserID != "u1" || !g.GrantedAt.Equal(testTime) {
		t.Errorf("grant = %+v", g)
	}
	if err := RequireRole(context.Background(), roles, "u1", role.RoleAdmin); err != nil {
		t.Errorf("RequireRole after grant: %v", err)
	}

	if err := ExecuteRevokeRole(context.Background(), RoleChangeInput{Email: "philip@lightmilemedia.com", Role: role.RoleAdmin}, deps); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := RequireRole(context.Background(), roles, "u1", role.RoleAdmin); !errors.Is(err, role.ErrAccessDenied) {
		t.Errorf("RequireRole after revoke: %v", err)
	}
}

// TestExecuteGrantRole_Errors tests unknown accounts and roles.
func TestExecuteGrantRole_Errors(t *testing.T) {
	deps := RoleChangeDeps{
		Accounts: newMockAccounts(account.Account{ID: "u1", Email: "a@b.com"}),
		Roles:    newMockRoles(),
		Now:      testNow,
	}
	if _, err := ExecuteGrantRole(context.Background(), RoleChangeInput{Email: "nobody@b.com", Role: role.RoleAdmin}, deps); !errors.Is(err, account.ErrNotFound) {
		t.Errorf("unknown account: %v", err)
	}
	if _, err := ExecuteGrantRole(context.Background(), RoleChangeInput{Email: "a@b.com", Role: "owner"}, deps); !errors.Is(err, role.ErrInvalidRole) {
		t.Errorf("unknown role: %v", err)
	}
}

// TestRequireRole_BlankUserSkipsLookup tests that anonymous callers never reach the store.
func TestRequireRole_BlankUserSkipsLookup(t *testing.T) {
	roles := newMockRoles()
	if err := RequireRole(context.Background(), roles, "", role.RoleAdmin); !errors.Is(err, role.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if roles.checks != 0 {
		t.Error("store consulted for anonymous caller")
	}
}
