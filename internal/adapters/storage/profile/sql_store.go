package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"playbook/internal/adapters/storage"
	domain "playbook/internal/domain/profile"
)

// SQLStore implements Store on a relational database.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new profile store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Get loads a profile and its completed exercises.
// PRE: userID is non-empty
// POST: ModulesCompleted is in curriculum order; domain.ErrNotFound if absent
func (s *SQLStore) Get(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, status, first_name, last_name, access_code_used, created_at FROM profiles WHERE user_id = ?`,
		userID).Scan(&p.UserID, &p.Status, &p.FirstName, &p.LastName, &p.AccessCodeUsed, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	p.CreatedAt = storage.ParseTime(createdAt)

	rows, err := s.db.QueryContext(ctx, `SELECT exercise FROM module_completion WHERE user_id = ?`, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return domain.Profile{}, err
		}
		p.ModulesCompleted = append(p.ModulesCompleted, key)
	}
	if err := rows.Err(); err != nil {
		return domain.Profile{}, err
	}
	sortByCurriculum(p.ModulesCompleted)
	return p, nil
}

// Create inserts p unless a profile for the user already exists.
// POST: Returns true if a row was inserted
func (s *SQLStore) Create(ctx context.Context, p domain.Profile) (bool, error) {
	return create(ctx, s.db, p)
}

// CreateTx inserts p inside tx.
func CreateTx(ctx context.Context, tx storage.Tx, p domain.Profile) (bool, error) {
	return create(ctx, tx, p)
}

func create(ctx context.Context, q storage.Queryer, p domain.Profile) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO profiles (user_id, status, first_name, last_name, access_code_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, p.Status, p.FirstName, p.LastName, p.AccessCodeUsed, storage.FormatTime(p.CreatedAt))
	if err != nil {
		return false, fmt.Errorf("insert profile: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// FillNames sets first and last name only where they are blank.
func (s *SQLStore) FillNames(ctx context.Context, userID, first, last string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET
		   first_name = CASE WHEN first_name = '' THEN ? ELSE first_name END,
		   last_name  = CASE WHEN last_name  = '' THEN ? ELSE last_name  END
		 WHERE user_id = ?`, first, last, userID)
	return err
}

// AddCompleted adds exercise to the user's completed set. Concurrent or
// repeated calls for the same key leave exactly one entry.
// POST: Returns true if the key was newly added
func (s *SQLStore) AddCompleted(ctx context.Context, userID, exercise string, now time.Time) (bool, error) {
	return addCompleted(ctx, s.db, userID, exercise, now)
}

// AddCompletedTx records a completion inside tx.
func AddCompletedTx(ctx context.Context, tx storage.Tx, userID, exercise string, now time.Time) (bool, error) {
	return addCompleted(ctx, tx, userID, exercise, now)
}

func addCompleted(ctx context.Context, q storage.Queryer, userID, exercise string, now time.Time) (bool, error) {
	if !domain.IsExerciseKey(exercise) {
		return false, domain.ErrUnknownExercise
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO module_completion (user_id, exercise, completed_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, exercise) DO NOTHING`,
		userID, exercise, storage.FormatTime(now))
	if err != nil {
		return false, fmt.Errorf("record completion: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Transition moves the profile from one status to the next.
// PRE: from -> to is a single forward step
// POST: Status is to; ErrInvalidTransition if the profile was not in from
func (s *SQLStore) Transition(ctx context.Context, userID, from, to string) error {
	return transition(ctx, s.db, userID, from, to)
}

// transition is shared with stores that move status inside their own transaction.
func transition(ctx context.Context, q storage.Queryer, userID, from, to string) error {
	if !domain.CanTransition(from, to) {
		return domain.ErrInvalidTransition
	}
	res, err := q.ExecContext(ctx, `UPDATE profiles SET status = ? WHERE user_id = ? AND status = ?`, to, userID, from)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// TransitionTx applies a status transition inside tx.
func TransitionTx(ctx context.Context, tx storage.Tx, userID, from, to string) error {
	return transition(ctx, tx, userID, from, to)
}

// SetAccessCode records the code the user registered with.
func (s *SQLStore) SetAccessCode(ctx context.Context, userID, code string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE profiles SET access_code_used = ? WHERE user_id = ?`, code, userID)
	return err
}

// CountByStatus counts profiles in status.
func (s *SQLStore) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles WHERE status = ?`, status).Scan(&n)
	return n, err
}

func sortByCurriculum(keys []string) {
	rank := make(map[string]int, len(domain.ExerciseKeys))
	for i, k := range domain.ExerciseKeys {
		rank[k] = i
	}
	sort.SliceStable(keys, func(i, j int) bool { return rank[keys[i]] < rank[keys[j]] })
}
