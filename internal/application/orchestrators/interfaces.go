package orchestrators

import (
	"context"
	"time"

	"playbook/internal/adapters/identity"
	"playbook/internal/domain/account"
	"playbook/internal/domain/email"
	"playbook/internal/domain/exercise"
	"playbook/internal/domain/outbox"
	"playbook/internal/domain/profile"
	"playbook/internal/domain/role"
	"playbook/internal/domain/seat"
	"playbook/internal/domain/survey"
)

// ProfileStore is the profile persistence the workflows need.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
	Create(ctx context.Context, p profile.Profile) (bool, error)
	FillNames(ctx context.Context, userID, first, last string) error
}

// SubmissionStore appends exercise submissions. Save records the exercise as
// completed in the same transaction.
type SubmissionStore interface {
	Save(ctx context.Context, sub exercise.Submission) error
}

// SurveyStore records a response and its status transition together.
type SurveyStore interface {
	Submit(ctx context.Context, r survey.Response) error
}

// SeatStore claims seats and access codes.
type SeatStore interface {
	ClaimSeat(ctx context.Context) (bool, error)
	SetTotal(ctx context.Context, total int) error
	InsertCodes(ctx context.Context, codes []seat.AccessCode) error
	GetCode(ctx context.Context, code string) (seat.AccessCode, error)
	Register(ctx context.Context, acct account.Account, p profile.Profile, code string, now time.Time) error
}

// RoleStore reads and writes role grants.
type RoleStore interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
	Grant(ctx context.Context, g role.Grant) error
	Revoke(ctx context.Context, userID, role string) error
}

// AccountReader looks up identity accounts.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// GrantIssuer issues passwordless grants.
type GrantIssuer interface {
	IssuePasswordless(ctx context.Context, email, first, last string) (identity.Grant, error)
}

// PasswordAuthenticator handles password accounts.
type PasswordAuthenticator interface {
	NewPasswordAccount(email, password, first, last string) (account.Account, error)
	SignIn(ctx context.Context, email, password string) (account.Account, error)
}

// Mailer delivers a composed message and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) (string, error)
}

// OutboxStore persists deferred side effects.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (outbox.Entry, error)
	Save(ctx context.Context, e outbox.Entry) error
	ListPending(ctx context.Context, limit int) ([]outbox.Entry, error)
}
