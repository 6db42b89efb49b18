// Package identity issues and redeems passwordless sign-in grants and
// authenticates password accounts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	accountStore "playbook/internal/adapters/storage/account"
	"playbook/internal/domain/account"
)

// DefaultGrantTTL bounds how long a passwordless grant may be redeemed.
const DefaultGrantTTL = 5 * time.Minute

const grantIssuer = "playbook"

// Errors returned by the identity service.
var (
	ErrMissingSecret = errors.New("grant signing secret is required")
	ErrInvalidGrant  = errors.New("sign-in link is invalid or expired")
	ErrGrantUsed     = errors.New("sign-in link has already been used")
)

// Grant is a signed, short-lived, single-use passwordless credential.
type Grant struct {
	Token     string
	AccountID string
	ExpiresAt time.Time
}

type grantClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service is the identity collaborator.
type Service struct {
	accounts accountStore.Store
	secret   []byte
	ttl      time.Duration
	now      func() time.Time

	mu   sync.Mutex
	used map[string]time.Time // grant id -> expiry
}

// New creates an identity service signing grants with secret.
// PRE: len(secret) > 0
func New(accounts accountStore.Store, secret []byte, ttl time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	return &Service{
		accounts: accounts,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
		used:     make(map[string]time.Time),
	}, nil
}

// SetClock replaces the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// IssuePasswordless finds or creates the account for email and returns a
// grant for it. A new account stores first and last as name metadata; an
// existing account only gains names it is missing.
// PRE: email is allow-listed by the caller
// POST: The account exists; the grant expires after the configured TTL
func (s *Service) IssuePasswordless(ctx context.Context, email, first, last string) (Grant, error) {
	acct, err := s.findOrCreate(ctx, email, first, last)
	if err != nil {
		return Grant{}, err
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := grantClaims{
		Email: acct.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    grantIssuer,
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Grant{}, fmt.Errorf("sign grant: %w", err)
	}
	slog.Info("auth_event", "event", "grant_issued", "account_id", acct.ID)
	return Grant{Token: token, AccountID: acct.ID, ExpiresAt: expires}, nil
}

func (s *Service) findOrCreate(ctx context.Context, email, first, last string) (account.Account, error) {
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		if acct.SetNamesIfMissing(first, last) {
			if err := s.accounts.Save(ctx, acct); err != nil {
				return account.Account{}, err
			}
		}
		return acct, nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		return account.Account{}, err
	}

	acct = account.Account{
		ID:        uuid.New().String(),
		Email:     account.NormalizeEmail(email),
		FirstName: first,
		LastName:  last,
		CreatedAt: s.now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			// Lost a race with a concurrent first sign-in.
			return s.accounts.GetByEmail(ctx, email)
		}
		return account.Account{}, err
	}
	slog.Info("auth_event", "event", "account_created", "account_id", acct.ID)
	return acct, nil
}

// Redeem verifies a grant and consumes it.
// POST: Returns the granted account; a second redeem of the same grant fails with ErrGrantUsed
func (s *Service) Redeem(ctx context.Context, token string) (account.Account, error) {
	var claims grantClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(grantIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return account.Account{}, fmt.Errorf("%w: %v", ErrInvalidGrant, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return account.Account{}, ErrInvalidGrant
	}
	if err := s.consume(claims.ID, claims.ExpiresAt.Time); err != nil {
		return account.Account{}, err
	}
	return s.accounts.GetByID(ctx, claims.Subject)
}

func (s *Service) consume(id string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.used {
		if now.After(exp) {
			delete(s.used, k)
		}
	}
	if _, ok := s.used[id]; ok {
		return ErrGrantUsed
	}
	s.used[id] = expires
	return nil
}

// NewPasswordAccount builds a validated account with a hashed password
// without storing it, for callers that persist it in their own transaction.
func (s *Service) NewPasswordAccount(email, password, first, last string) (account.Account, error) {
	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     account.NormalizeEmail(email),
		FirstName: first,
		LastName:  last,
		CreatedAt: s.now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := acct.SetPassword(password); err != nil {
		return account.Account{}, err
	}
	return acct, nil
}

// SignUp creates a password account.
// POST: account.ErrEmailTaken when the email is registered
func (s *Service) SignUp(ctx context.Context, email, password, first, last string) (account.Account, error) {
	acct, err := s.NewPasswordAccount(email, password, first, last)
	if err != nil {
		return account.Account{}, err
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return account.Account{}, err
	}
	slog.Info("auth_event", "event", "account_registered", "account_id", acct.ID)
	return acct, nil
}

// SignIn checks a password, locking the account after repeated failures.
// POST: account.ErrLocked while locked; account.ErrWrongPassword for an
// unknown email or a bad password
func (s *Service) SignIn(ctx context.Context, email, password string) (account.Account, error) {
	acct, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, account.ErrNotFound) {
		return account.Account{}, account.ErrWrongPassword
	}
	if err != nil {
		return account.Account{}, err
	}
	now := s.now()
	if acct.IsLocked(now) {
		slog.Warn("auth_event", "event", "login_locked", "account_id", acct.ID)
		return account.Account{}, account.ErrLocked
	}
	if err := acct.CheckPassword(password); err != nil {
		acct.RecordFailedLogin(now)
		if saveErr := s.accounts.Save(ctx, acct); saveErr != nil {
			return account.Account{}, saveErr
		}
		slog.Warn("auth_event", "event", "login_failed", "account_id", acct.ID, "failed_logins", acct.FailedLogins)
		return account.Account{}, err
	}
	if acct.FailedLogins > 0 {
		acct.ResetFailedLogins()
		if err := s.accounts.Save(ctx, acct); err != nil {
			return account.Account{}, err
		}
	}
	slog.Info("auth_event", "event", "login_success", "account_id", acct.ID)
	return acct, nil
}

// GetAccount returns the account by id.
func (s *Service) GetAccount(ctx context.Context, id string) (account.Account, error) {
	return s.accounts.GetByID(ctx, id)
}
