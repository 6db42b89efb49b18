package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"playbook/internal/domain/profile"
)

// EnsureProfileDeps holds dependencies for profile population.
type EnsureProfileDeps struct {
	Profiles ProfileStore
	Accounts AccountReader
	Seats    SeatStore
	Now      func() time.Time
}

// ExecuteEnsureProfile makes sure a signed-in account has a profile and that
// the profile carries the account's name metadata.
// PRE: accountID refers to an existing account
// POST: The profile exists. A newly created profile claims a seat when one
// is free. Blank profile names are filled from the account.
func ExecuteEnsureProfile(ctx context.Context, accountID string, deps EnsureProfileDeps) (profile.Profile, error) {
	acct, err := deps.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load account: %w", err)
	}

	p := profile.New(acct.ID, deps.Now())
	p.FirstName = strings.TrimSpace(acct.FirstName)
	p.LastName = strings.TrimSpace(acct.LastName)
	created, err := deps.Profiles.Create(ctx, p)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	if created {
		slog.Info("profile_event", "event", "profile_created", "user_id", acct.ID)
		ok, err := deps.Seats.ClaimSeat(ctx)
		switch {
		case err != nil:
			slog.Error("profile_event", "event", "seat_claim_failed", "user_id", acct.ID, "error", err)
		case !ok:
			slog.Warn("profile_event", "event", "seats_exhausted", "user_id", acct.ID)
		}
		return deps.Profiles.Get(ctx, acct.ID)
	}

	existing, err := deps.Profiles.Get(ctx, acct.ID)
	if err != nil {
		return profile.Profile{}, err
	}
	if existing.NeedsName() && acct.HasNames() {
		if err := deps.Profiles.FillNames(ctx, acct.ID, acct.FirstName, acct.LastName); err != nil {
			return profile.Profile{}, fmt.Errorf("fill names: %w", err)
		}
		slog.Info("profile_event", "event", "names_populated", "user_id", acct.ID)
		return deps.Profiles.Get(ctx, acct.ID)
	}
	return existing, nil
}

// LoadProfile returns the user's profile, creating it on first access.
func LoadProfile(ctx context.Context, userID string, deps EnsureProfileDeps) (profile.Profile, error) {
	p, err := deps.Profiles.Get(ctx, userID)
	if errors.Is(err, profile.ErrNotFound) {
		return ExecuteEnsureProfile(ctx, userID, deps)
	}
	return p, err
}
