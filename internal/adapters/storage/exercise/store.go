package exercise

import (
	"context"

	domain "playbook/internal/domain/exercise"
)

// Store appends exercise submissions. Submissions are never updated.
type Store interface {
	Save(ctx context.Context, sub domain.Submission) error
	CountByExercise(ctx context.Context) (map[string]int, error)
}
