package exercise

import (
	"context"
	"fmt"

	"playbook/internal/adapters/storage"
	profileStore "playbook/internal/adapters/storage/profile"
	domain "playbook/internal/domain/exercise"
	"playbook/internal/domain/profile"
)

// tables maps each exercise to the table holding its submissions.
var tables = map[string]string{
	profile.ExerciseFriction:   "friction_logs",
	profile.ExerciseMakeover:   "mundane_makeover",
	profile.ExerciseVisibility: "visibility_signals",
}

// SQLStore implements Store on a relational database.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new exercise store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Save inserts one submission into its exercise's table and adds the
// exercise to the user's completed set, in one transaction.
// PRE: sub has been validated
// POST: Exactly one row is written and the completion recorded, or neither
func (s *SQLStore) Save(ctx context.Context, sub domain.Submission) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	created := storage.FormatTime(sub.CreatedAt)
	switch sub.Exercise {
	case profile.ExerciseFriction:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO friction_logs (id, user_id, struggle_1, struggle_2, struggle_3, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			sub.ID, sub.UserID, sub.Struggles[0], sub.Struggles[1], sub.Struggles[2], created)
	case profile.ExerciseMakeover:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO mundane_makeover (id, user_id, redesign_description, created_at) VALUES (?, ?, ?, ?)`,
			sub.ID, sub.UserID, sub.RedesignDescription, created)
	case profile.ExerciseVisibility:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO visibility_signals (id, user_id, colleague_name, impact_note, created_at) VALUES (?, ?, ?, ?, ?)`,
			sub.ID, sub.UserID, sub.ColleagueName, sub.ImpactNote, created)
	}
	if err != nil {
		return fmt.Errorf("insert %s submission: %w", sub.Exercise, err)
	}
	if _, err := profileStore.AddCompletedTx(ctx, tx, sub.UserID, sub.Exercise, sub.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// CountByExercise returns the number of submissions per exercise key.
func (s *SQLStore) CountByExercise(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(tables))
	for _, key := range profile.ExerciseKeys {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+tables[key]).Scan(&n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, nil
}
