package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"playbook/internal/domain/account"
	"playbook/internal/domain/profile"
	"playbook/internal/domain/seat"
)

// RegisterWithCodeInput is the sign-up form.
type RegisterWithCodeInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Code      string
}

// RegisterWithCodeDeps holds dependencies for code registration.
type RegisterWithCodeDeps struct {
	Identity PasswordAuthenticator
	Seats    SeatStore
	Now      func() time.Time
}

// ExecuteRegisterWithCode creates a password account admitted by an access
// code and claims the code and a seat for it.
// PRE: none
// POST: seat.ErrCodeInvalid before any write when the code is unknown or
// used. On success the account and profile exist, the code is claimed by the
// new account, and a seat is taken. On any error none of these are written.
func ExecuteRegisterWithCode(ctx context.Context, input RegisterWithCodeInput, deps RegisterWithCodeDeps) (account.Account, error) {
	code := seat.NormalizeCode(input.Code)
	if code == "" {
		return account.Account{}, seat.ErrEmptyCode
	}
	existing, err := deps.Seats.GetCode(ctx, code)
	if err != nil || existing.Claimed {
		return account.Account{}, seat.ErrCodeInvalid
	}

	acct, err := deps.Identity.NewPasswordAccount(input.Email, input.Password,
		strings.TrimSpace(input.FirstName), strings.TrimSpace(input.LastName))
	if err != nil {
		return account.Account{}, err
	}

	now := deps.Now()
	p := profile.New(acct.ID, now)
	p.FirstName = acct.FirstName
	p.LastName = acct.LastName

	if err := deps.Seats.Register(ctx, acct, p, code, now); err != nil {
		switch {
		case errors.Is(err, seat.ErrCodeInvalid), errors.Is(err, seat.ErrNoSeats):
			slog.Warn("auth_event", "event", "code_claim_failed", "email", acct.Email, "error", err)
			return account.Account{}, err
		case errors.Is(err, account.ErrEmailTaken):
			return account.Account{}, err
		}
		return account.Account{}, fmt.Errorf("register: %w", err)
	}
	slog.Info("auth_event", "event", "registered_with_code", "account_id", acct.ID)
	return acct, nil
}

// SignInInput is the password sign-in form.
type SignInInput struct {
	Email    string
	Password string
}

// SignInDeps holds dependencies for password sign-in.
type SignInDeps struct {
	Identity PasswordAuthenticator
}

// ExecuteSignIn authenticates a password account.
// POST: account.ErrLocked after repeated failures; account.ErrWrongPassword otherwise
func ExecuteSignIn(ctx context.Context, input SignInInput, deps SignInDeps) (account.Account, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return account.Account{}, account.ErrWrongPassword
	}
	return deps.Identity.SignIn(ctx, input.Email, input.Password)
}
