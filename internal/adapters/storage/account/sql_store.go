package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"playbook/internal/adapters/storage"
	domain "playbook/internal/domain/account"
)

const accountColumns = "id, email, password_hash, first_name, last_name, created_at, failed_logins, locked_until"

// SQLStore implements Store on a relational database.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new account store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the account or domain.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	return scanAccount(row.Scan)
}

// GetByEmail retrieves an Account by normalized email.
// PRE: email is non-empty
// POST: Returns the account or domain.ErrNotFound
func (s *SQLStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE email = ?", domain.NormalizeEmail(email))
	return scanAccount(row.Scan)
}

// Create inserts a new account.
// PRE: value has been validated
// POST: Account persisted, or domain.ErrEmailTaken if the email exists
func (s *SQLStore) Create(ctx context.Context, a domain.Account) error {
	return create(ctx, s.db, a)
}

// CreateTx inserts a new account inside tx.
func CreateTx(ctx context.Context, tx storage.Tx, a domain.Account) error {
	return create(ctx, tx, a)
}

func create(ctx context.Context, q storage.Queryer, a domain.Account) error {
	res, err := q.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (email) DO NOTHING`,
		a.ID, domain.NormalizeEmail(a.Email), a.PasswordHash, a.FirstName, a.LastName,
		storage.FormatTime(a.CreatedAt), a.FailedLogins, storage.FormatTime(a.LockedUntil))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrEmailTaken
	}
	return nil
}

// Save updates mutable account fields.
// PRE: account exists
// POST: Password hash, names and lockout state persisted
func (s *SQLStore) Save(ctx context.Context, a domain.Account) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, first_name = ?, last_name = ?, failed_logins = ?, locked_until = ?
		 WHERE id = ?`,
		a.PasswordHash, a.FirstName, a.LastName, a.FailedLogins, storage.FormatTime(a.LockedUntil), a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of accounts.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&n)
	return n, err
}

func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var a domain.Account
	var createdAt, lockedUntil string
	err := scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &createdAt, &a.FailedLogins, &lockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	a.CreatedAt = storage.ParseTime(createdAt)
	a.LockedUntil = storage.ParseTime(lockedUntil)
	return a, nil
}
