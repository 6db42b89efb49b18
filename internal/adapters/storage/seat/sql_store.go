package seat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"playbook/internal/adapters/storage"
	accountStore "playbook/internal/adapters/storage/account"
	profileStore "playbook/internal/adapters/storage/profile"
	"playbook/internal/domain/account"
	"playbook/internal/domain/profile"
	domain "playbook/internal/domain/seat"
)

// ErrCodeNotFound is returned by GetCode for an unknown code.
var ErrCodeNotFound = errors.New("access code not found")

// SQLStore implements Store on a relational database.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new seat store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Inventory returns the seat counter.
func (s *SQLStore) Inventory(ctx context.Context) (domain.Inventory, error) {
	var inv domain.Inventory
	err := s.db.QueryRowContext(ctx, `SELECT total_seats, claimed_seats FROM seat_inventory WHERE id = 1`).
		Scan(&inv.TotalSeats, &inv.ClaimedSeats)
	return inv, err
}

// SetTotal changes the seat pool size.
// PRE: total >= 0
// POST: total_seats updated; domain.ErrInvalidTotal if total < claimed
func (s *SQLStore) SetTotal(ctx context.Context, total int) error {
	if total < 0 {
		return domain.ErrInvalidTotal
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE seat_inventory SET total_seats = ? WHERE id = 1 AND claimed_seats <= ?`, total, total)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInvalidTotal
	}
	return nil
}

// ClaimSeat takes one seat if any remain.
// POST: Returns false when the pool is exhausted
func (s *SQLStore) ClaimSeat(ctx context.Context) (bool, error) {
	return claimSeat(ctx, s.db)
}

func claimSeat(ctx context.Context, q storage.Queryer) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE seat_inventory SET claimed_seats = claimed_seats + 1 WHERE id = 1 AND claimed_seats < total_seats`)
	if err != nil {
		return false, fmt.Errorf("claim seat: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// InsertCodes stores new unclaimed codes in one transaction.
func (s *SQLStore) InsertCodes(ctx context.Context, codes []domain.AccessCode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, c := range codes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO access_codes (code, claimed, claimed_by, claimed_at, created_at) VALUES (?, 0, '', '', ?)`,
			domain.NormalizeCode(c.Code), storage.FormatTime(c.CreatedAt)); err != nil {
			return fmt.Errorf("insert code %s: %w", c.Code, err)
		}
	}
	return tx.Commit()
}

// GetCode looks up a code, case-insensitively.
func (s *SQLStore) GetCode(ctx context.Context, code string) (domain.AccessCode, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT code, claimed, claimed_by, claimed_at, created_at FROM access_codes WHERE code = ?`, domain.NormalizeCode(code))
	c, err := scanCode(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AccessCode{}, ErrCodeNotFound
	}
	return c, err
}

// ListCodes returns the newest codes first.
func (s *SQLStore) ListCodes(ctx context.Context, limit int) ([]domain.AccessCode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, claimed, claimed_by, claimed_at, created_at FROM access_codes ORDER BY created_at DESC, code LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.AccessCode
	for rows.Next() {
		c, err := scanCode(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Register creates a code-admitted participant: the account, its profile,
// the code claim and a seat, in one transaction.
// PRE: acct is validated with its password hashed; p.UserID == acct.ID
// POST: All four writes happen or none. account.ErrEmailTaken when the
// email is registered; domain.ErrCodeInvalid for an unknown or used code;
// domain.ErrNoSeats when the pool is exhausted.
func (s *SQLStore) Register(ctx context.Context, acct account.Account, p profile.Profile, code string, now time.Time) error {
	code = domain.NormalizeCode(code)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := accountStore.CreateTx(ctx, tx, acct); err != nil {
		return err
	}
	p.AccessCodeUsed = code
	if _, err := profileStore.CreateTx(ctx, tx, p); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE access_codes SET claimed = 1, claimed_by = ?, claimed_at = ? WHERE code = ? AND claimed = 0`,
		acct.ID, storage.FormatTime(now), code)
	if err != nil {
		return fmt.Errorf("claim code: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrCodeInvalid
	}

	ok, err := claimSeat(ctx, tx)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNoSeats
	}
	return tx.Commit()
}

func scanCode(scan func(dest ...any) error) (domain.AccessCode, error) {
	var c domain.AccessCode
	var claimed int
	var claimedAt, createdAt string
	if err := scan(&c.Code, &claimed, &c.ClaimedBy, &claimedAt, &createdAt); err != nil {
		return domain.AccessCode{}, err
	}
	c.Claimed = claimed != 0
	c.ClaimedAt = storage.ParseTime(claimedAt)
	c.CreatedAt = storage.ParseTime(createdAt)
	return c, nil
}
