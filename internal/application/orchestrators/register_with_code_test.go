package orchestrators

import (
	"context"
	"errors"
	"testing"

	"playbook/internal/adapters/identity"
	accountStore "playbook/internal/adapters/storage/account"
	profileStore "playbook/internal/adapters/storage/profile"
	seatStore "playbook/internal/adapters/storage/seat"
	"playbook/internal/adapters/storage/storagetest"
	"playbook/internal/domain/account"
	"playbook/internal/domain/profile"
	"playbook/internal/domain/seat"
)

func registerDeps(seats *mockSeats) (RegisterWithCodeDeps, *mockProfiles, *mockAccounts) {
	accts := newMockAccounts()
	profiles := newMockProfiles()
	seats.accounts, seats.profiles = accts, profiles
	return RegisterWithCodeDeps{
		Identity: &mockIdentity{accounts: accts},
		Seats:    seats,
		Now:      testNow,
	}, profiles, accts
}

func registerInput(code string) RegisterWithCodeInput {
	return RegisterWithCodeInput{
		Email: "grace@example.com", Password: "correct horse battery",
		FirstName: "Grace", LastName: "Hopper", Code: code,
	}
}

// TestExecuteRegisterWithCode_ClaimsCodeAndSeat tests the happy path.
func TestExecuteRegisterWithCode_ClaimsCodeAndSeat(t *testing.T) {
	seats := newMockSeats(5, "ABCD2345")
	deps, profiles, _ := registerDeps(seats)

	acct, err := ExecuteRegisterWithCode(context.Background(), registerInput(" abcd2345 "), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := seats.codes["ABCD2345"]
	if !c.Claimed || c.ClaimedBy != acct.ID {
		t.Errorf("code = %+v", c)
	}
	if seats.inv.ClaimedSeats != 1 {
		t.Errorf("claimed seats = %d", seats.inv.ClaimedSeats)
	}
	if p := profiles.profiles[acct.ID]; p.FirstName != "Grace" {
		t.Errorf("profile = %+v", p)
	}
}

// TestExecuteRegisterWithCode_InvalidCodeCreatesNothing tests rejection before any write.
func TestExecuteRegisterWithCode_InvalidCodeCreatesNothing(t *testing.T) {
	seats := newMockSeats(5, "ABCD2345")
	seats.codes["USED2345"] = seat.AccessCode{Code: "USED2345", Claimed: true}
	for _, code := range []string{"NOPE2345", "USED2345"} {
		deps, _, accts := registerDeps(seats)
		_, err := ExecuteRegisterWithCode(context.Background(), registerInput(code), deps)
		if !errors.Is(err, seat.ErrCodeInvalid) {
			t.Fatalf("%s: expected ErrCodeInvalid, got %v", code, err)
		}
		if len(accts.byID) != 0 {
			t.Errorf("%s: account created for invalid code", code)
		}
	}

	deps, _, _ := registerDeps(seats)
	if _, err := ExecuteRegisterWithCode(context.Background(), registerInput("  "), deps); !errors.Is(err, seat.ErrEmptyCode) {
		t.Errorf("blank code: got %v", err)
	}
}

// TestExecuteRegisterWithCode_NoSeats tests seat exhaustion.
func TestExecuteRegisterWithCode_NoSeats(t *testing.T) {
	seats := newMockSeats(0, "ABCD2345")
	deps, _, _ := registerDeps(seats)
	_, err := ExecuteRegisterWithCode(context.Background(), registerInput("ABCD2345"), deps)
	if !errors.Is(err, seat.ErrNoSeats) {
		t.Fatalf("expected ErrNoSeats, got %v", err)
	}
	if seats.codes["ABCD2345"].Claimed {
		t.Error("code claimed without a seat")
	}
	if len(seats.accounts.byID) != 0 || len(seats.profiles.profiles) != 0 {
		t.Error("account or profile left behind without a seat")
	}
}

// TestExecuteRegisterWithCode_NoSeatsLeavesNoAccount runs registration on
// SQLite stores: a rejected sign-up cannot sign in, and a retry succeeds once
// seats are added.
func TestExecuteRegisterWithCode_NoSeatsLeavesNoAccount(t *testing.T) {
	ctx := context.Background()
	db := storagetest.Open(t)
	accounts := accountStore.NewSQLStore(db)
	profiles := profileStore.NewSQLStore(db)
	seats := seatStore.NewSQLStore(db)
	idSvc, err := identity.New(accounts, []byte("register-test-secret"), identity.DefaultGrantTTL)
	if err != nil {
		t.Fatal(err)
	}
	if err := seats.SetTotal(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if err := seats.InsertCodes(ctx, []seat.AccessCode{{Code: "ABCD2345", CreatedAt: testTime}}); err != nil {
		t.Fatal(err)
	}
	deps := RegisterWithCodeDeps{Identity: idSvc, Seats: seats, Now: testNow}

	if _, err := ExecuteRegisterWithCode(ctx, registerInput("ABCD2345"), deps); !errors.Is(err, seat.ErrNoSeats) {
		t.Fatalf("expected ErrNoSeats, got %v", err)
	}
	if _, err := idSvc.SignIn(ctx, "grace@example.com", "correct horse battery"); !errors.Is(err, account.ErrWrongPassword) {
		t.Errorf("sign in after rejected registration: got %v", err)
	}
	if n, _ := accounts.Count(ctx); n != 0 {
		t.Errorf("accounts = %d, want 0", n)
	}
	if n, _ := profiles.CountByStatus(ctx, profile.StatusStarted); n != 0 {
		t.Errorf("profiles = %d, want 0", n)
	}

	if err := seats.SetTotal(ctx, 5); err != nil {
		t.Fatal(err)
	}
	acct, err := ExecuteRegisterWithCode(ctx, registerInput("ABCD2345"), deps)
	if err != nil {
		t.Fatalf("retry once seats exist: %v", err)
	}
	p, err := profiles.Get(ctx, acct.ID)
	if err != nil || p.AccessCodeUsed != "ABCD2345" {
		t.Errorf("profile = %+v, err = %v", p, err)
	}
}

// TestExecuteSignIn tests password sign-in delegation.
func TestExecuteSignIn(t *testing.T) {
	accts := newMockAccounts(account.Account{ID: "u1", Email: "grace@example.com"})
	deps := SignInDeps{Identity: &mockIdentity{accounts: accts}}

	acct, err := ExecuteSignIn(context.Background(), SignInInput{Email: "Grace@Example.com", Password: "correct horse battery"}, deps)
	if err != nil || acct.ID != "u1" {
		t.Fatalf("sign in: %v %+v", err, acct)
	}
	if _, err := ExecuteSignIn(context.Background(), SignInInput{Email: "grace@example.com"}, deps); !errors.Is(err, account.ErrWrongPassword) {
		t.Errorf("empty password: got %v", err)
	}
}
