package survey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"playbook/internal/adapters/storage"
	profileStore "playbook/internal/adapters/storage/profile"
	domain "playbook/internal/domain/survey"
)

// ErrNotFound is returned when the user has not taken the survey.
var ErrNotFound = errors.New("survey response not found")

// SQLStore implements Store on a relational database.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new survey store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Submit records r and advances the profile status in one transaction.
// PRE: r has been validated
// POST: Both the response and the transition are stored, or neither.
// Returns domain.ErrAlreadySubmitted for a second response of the same type
// and profile.ErrInvalidTransition if the profile was not in the required status.
func (s *SQLStore) Submit(ctx context.Context, r domain.Response) error {
	if err := r.Validate(); err != nil {
		return err
	}
	from, to, err := domain.Transition(r.Type)
	if err != nil {
		return err
	}
	var q [domain.MaxQuestions]int
	copy(q[:], r.Scores)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO pulse_surveys (id, user_id, type, q1, q2, q3, q4, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (user_id, type) DO NOTHING`,
		r.ID, r.UserID, r.Type, q[0], q[1], q[2], q[3], storage.FormatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert survey: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadySubmitted
	}
	if err := profileStore.TransitionTx(ctx, tx, r.UserID, from, to); err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns the user's response of surveyType.
func (s *SQLStore) Get(ctx context.Context, userID, surveyType string) (domain.Response, error) {
	var r domain.Response
	var q [domain.MaxQuestions]int
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, type, q1, q2, q3, q4, created_at FROM pulse_surveys WHERE user_id = ? AND type = ?`,
		userID, surveyType).Scan(&r.ID, &r.UserID, &r.Type, &q[0], &q[1], &q[2], &q[3], &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Response{}, ErrNotFound
	}
	if err != nil {
		return domain.Response{}, err
	}
	for _, score := range q {
		if score == 0 {
			break
		}
		r.Scores = append(r.Scores, score)
	}
	r.CreatedAt = storage.ParseTime(createdAt)
	return r, nil
}
