package seat

import (
	"context"
	"time"

	"playbook/internal/domain/account"
	"playbook/internal/domain/profile"
	domain "playbook/internal/domain/seat"
)

// Store persists the seat counter and access codes.
type Store interface {
	Inventory(ctx context.Context) (domain.Inventory, error)
	SetTotal(ctx context.Context, total int) error
	ClaimSeat(ctx context.Context) (bool, error)
	InsertCodes(ctx context.Context, codes []domain.AccessCode) error
	GetCode(ctx context.Context, code string) (domain.AccessCode, error)
	ListCodes(ctx context.Context, limit int) ([]domain.AccessCode, error)
	Register(ctx context.Context, acct account.Account, p profile.Profile, code string, now time.Time) error
}
