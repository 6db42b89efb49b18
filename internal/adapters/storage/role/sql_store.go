package role

import (
	"context"

	"playbook/internal/adapters/storage"
	domain "playbook/internal/domain/role"
)

// SQLStore implements Store on a relational database.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new role store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// HasRole reports whether userID holds role.
func (s *SQLStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_roles WHERE user_id = ? AND role = ?`, userID, role).Scan(&n)
	return n > 0, err
}

// Grant upserts a grant.
// PRE: g.Validate() returns nil
func (s *SQLStore) Grant(ctx context.Context, g domain.Grant) error {
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role, granted_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, role) DO NOTHING`,
		g.UserID, g.Role, storage.FormatTime(g.GrantedAt))
	return err
}

// Revoke removes a grant.
func (s *SQLStore) Revoke(ctx context.Context, userID, role string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ? AND role = ?`, userID, role)
	return err
}

// ListByRole returns every grant of role, oldest first.
func (s *SQLStore) ListByRole(ctx context.Context, role string) ([]domain.Grant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, role, granted_at FROM user_roles WHERE role = ? ORDER BY granted_at, user_id`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Grant
	for rows.Next() {
		var g domain.Grant
		var grantedAt string
		if err := rows.Scan(&g.UserID, &g.Role, &grantedAt); err != nil {
			return nil, err
		}
		g.GrantedAt = storage.ParseTime(grantedAt)
		out = append(out, g)
	}
	return out, rows.Err()
}
