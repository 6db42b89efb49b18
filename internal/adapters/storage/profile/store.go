package profile

import (
	"context"
	"time"

	domain "playbook/internal/domain/profile"
)

// Store persists participant progress.
type Store interface {
	Get(ctx context.Context, userID string) (domain.Profile, error)
	Create(ctx context.Context, p domain.Profile) (bool, error)
	FillNames(ctx context.Context, userID, first, last string) error
	AddCompleted(ctx context.Context, userID, exercise string, now time.Time) (bool, error)
	Transition(ctx context.Context, userID, from, to string) error
	SetAccessCode(ctx context.Context, userID, code string) error
	CountByStatus(ctx context.Context, status string) (int, error)
}
