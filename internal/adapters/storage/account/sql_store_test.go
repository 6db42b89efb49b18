package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"playbook/internal/adapters/storage/account"
	"playbook/internal/adapters/storage/storagetest"
	domain "playbook/internal/domain/account"
)

func TestSQLStore_CreateAndGet(t *testing.T) {
	store := account.NewSQLStore(storagetest.Open(t))
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	a := domain.Account{ID: "a1", Email: "Ada@EvolutionOfSmooth.com", FirstName: "Ada", LastName: "Lovelace", CreatedAt: now}
	require.NoError(t, store.Create(ctx, a))

	got, err := store.GetByEmail(ctx, "ada@evolutionofsmooth.com")
	require.NoError(t, err)
	require.Equal(t, "a1", got.ID)
	require.Equal(t, "ada@evolutionofsmooth.com", got.Email)
	require.True(t, got.CreatedAt.Equal(now))
	require.True(t, got.LockedUntil.IsZero())

	byID, err := store.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, "Lovelace", byID.LastName)
}

func TestSQLStore_CreateDuplicateEmail(t *testing.T) {
	store := account.NewSQLStore(storagetest.Open(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Create(ctx, domain.Account{ID: "a1", Email: "a@x.com", CreatedAt: now}))
	err := store.Create(ctx, domain.Account{ID: "a2", Email: "A@x.com", CreatedAt: now})
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestSQLStore_SaveLockout(t *testing.T) {
	store := account.NewSQLStore(storagetest.Open(t))
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	a := domain.Account{ID: "a1", Email: "a@x.com", CreatedAt: now}
	require.NoError(t, store.Create(ctx, a))

	for i := 0; i < domain.MaxFailedLogins; i++ {
		a.RecordFailedLogin(now)
	}
	require.NoError(t, store.Save(ctx, a))

	got, err := store.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.True(t, got.IsLocked(now))
	require.Equal(t, domain.MaxFailedLogins, got.FailedLogins)
}

func TestSQLStore_NotFound(t *testing.T) {
	store := account.NewSQLStore(storagetest.Open(t))
	_, err := store.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, store.Save(context.Background(), domain.Account{ID: "missing"}), domain.ErrNotFound)
}
