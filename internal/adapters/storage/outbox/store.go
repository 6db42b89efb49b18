package outbox

import (
	"context"

	domain "playbook/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// POST: Returns domain.ErrNotFound for an unknown id
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save inserts or updates an entry.
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns pending and retrying entries, oldest first.
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that exhausted their attempts, most recent first.
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)

	// Delete removes an entry.
	Delete(ctx context.Context, id string) error
}
