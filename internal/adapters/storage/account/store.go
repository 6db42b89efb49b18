package account

import (
	"context"

	domain "playbook/internal/domain/account"
)

// Store persists identity accounts.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Create(ctx context.Context, value domain.Account) error
	Save(ctx context.Context, value domain.Account) error
	Count(ctx context.Context) (int, error)
}
