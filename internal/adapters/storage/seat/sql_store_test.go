package seat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	accountStore "playbook/internal/adapters/storage/account"
	profileStore "playbook/internal/adapters/storage/profile"
	"playbook/internal/adapters/storage/seat"
	"playbook/internal/adapters/storage/storagetest"
	"playbook/internal/domain/account"
	"playbook/internal/domain/profile"
	domain "playbook/internal/domain/seat"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	seats    *seat.SQLStore
	profiles *profileStore.SQLStore
	accounts *accountStore.SQLStore
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := storagetest.Open(t)
	f := fixture{
		seats:    seat.NewSQLStore(db),
		profiles: profileStore.NewSQLStore(db),
		accounts: accountStore.NewSQLStore(db),
	}
	require.NoError(t, f.seats.InsertCodes(context.Background(), []domain.AccessCode{
		{Code: "ABCD2345", CreatedAt: now},
		{Code: "wxyz6789", CreatedAt: now},
	}))
	return f
}

func participant(id, addr string) (account.Account, profile.Profile) {
	a := account.Account{ID: id, Email: addr, FirstName: "Ada", LastName: "Lovelace", CreatedAt: now}
	p := profile.New(id, now)
	p.FirstName, p.LastName = a.FirstName, a.LastName
	return a, p
}

func TestSQLStore_Register(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, p := participant("u1", "ada@example.com")
	require.NoError(t, f.seats.Register(ctx, a, p, "abcd2345", now))

	c, err := f.seats.GetCode(ctx, "ABCD2345")
	require.NoError(t, err)
	require.True(t, c.Claimed)
	require.Equal(t, "u1", c.ClaimedBy)

	inv, err := f.seats.Inventory(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, inv.ClaimedSeats)

	got, err := f.profiles.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "ABCD2345", got.AccessCodeUsed)
	_, err = f.accounts.GetByID(ctx, "u1")
	require.NoError(t, err)

	b, q := participant("u2", "grace@example.com")
	require.ErrorIs(t, f.seats.Register(ctx, b, q, "ABCD2345", now), domain.ErrCodeInvalid)
	require.ErrorIs(t, f.seats.Register(ctx, b, q, "NOPE0000", now), domain.ErrCodeInvalid)
	_, err = f.accounts.GetByID(ctx, "u2")
	require.ErrorIs(t, err, account.ErrNotFound, "rejected registration leaves no account")

	dup, r := participant("u3", "ADA@example.com")
	require.ErrorIs(t, f.seats.Register(ctx, dup, r, "WXYZ6789", now), account.ErrEmailTaken)
	c, err = f.seats.GetCode(ctx, "WXYZ6789")
	require.NoError(t, err)
	require.False(t, c.Claimed)
}

func TestSQLStore_RegisterWithoutSeatsRollsBack(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.seats.SetTotal(ctx, 0))

	a, p := participant("u1", "ada@example.com")
	err := f.seats.Register(ctx, a, p, "WXYZ6789", now)
	require.ErrorIs(t, err, domain.ErrNoSeats)

	c, err := f.seats.GetCode(ctx, "WXYZ6789")
	require.NoError(t, err)
	require.False(t, c.Claimed, "code claim must roll back with the seat claim")
	n, err := f.accounts.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	_, err = f.profiles.Get(ctx, "u1")
	require.Error(t, err)

	require.NoError(t, f.seats.SetTotal(ctx, 1))
	require.NoError(t, f.seats.Register(ctx, a, p, "WXYZ6789", now), "retry succeeds once a seat exists")
}

func TestSQLStore_SetTotalBelowClaimed(t *testing.T) {
	f := setup(t)
	s := f.seats
	ctx := context.Background()
	require.NoError(t, s.SetTotal(ctx, 1))

	ok, err := s.ClaimSeat(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.ClaimSeat(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, s.SetTotal(ctx, 0), domain.ErrInvalidTotal)
	require.ErrorIs(t, s.SetTotal(ctx, -1), domain.ErrInvalidTotal)
}

func TestSQLStore_ListAndGetCodes(t *testing.T) {
	f := setup(t)
	s := f.seats
	ctx := context.Background()

	codes, err := s.ListCodes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, codes, 2)

	_, err = s.GetCode(ctx, "MISSING1")
	require.ErrorIs(t, err, seat.ErrCodeNotFound)

	err = s.InsertCodes(ctx, []domain.AccessCode{{Code: "ABCD2345", CreatedAt: now}})
	require.Error(t, err, "duplicate codes are rejected")
}
