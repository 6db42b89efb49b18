package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"playbook/internal/adapters/identity"
	"playbook/internal/domain/access"
)

// EnterGateInput is the landing form.
type EnterGateInput struct {
	FirstName string
	LastName  string
	Email     string
}

// EnterGateDeps holds dependencies for the access gate.
type EnterGateDeps struct {
	AllowList access.AllowList
	Identity  GrantIssuer
}

// ExecuteEnterGate checks the gate form and asks the identity service for a
// passwordless grant.
// PRE: none
// POST: access.ErrNameRequired for a blank name; access.ErrAccessRestricted
// for an address off the allow-list; identity errors are returned unchanged
func ExecuteEnterGate(ctx context.Context, input EnterGateInput, deps EnterGateDeps) (identity.Grant, error) {
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" || last == "" {
		return identity.Grant{}, access.ErrNameRequired
	}
	addr := access.Normalize(input.Email)
	if !deps.AllowList.Allows(addr) {
		slog.Warn("auth_event", "event", "gate_rejected")
		return identity.Grant{}, access.ErrAccessRestricted
	}
	grant, err := deps.Identity.IssuePasswordless(ctx, addr, first, last)
	if err != nil {
		return identity.Grant{}, err
	}
	slog.Info("auth_event", "event", "gate_entered", "account_id", grant.AccountID)
	return grant, nil
}
