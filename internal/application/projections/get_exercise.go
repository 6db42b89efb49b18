package projections

import (
	"context"
	"fmt"

	"playbook/internal/domain/exercise"
	"playbook/internal/domain/progress"
)

// ExercisePage is the data behind one exercise page.
type ExercisePage struct {
	exercise.Content
	Status            string
	Locked            bool
	Prerequisite      exercise.Content
	Categories        []string
	CategoryPrompts   map[string]string
	DefaultPrompt     string
	MinFrictionPoints int
	FrictionSlots     []int
	Assets            []string
	DesignTags        []string
	DefaultSubject    string
	SenderEmail       string
	SenderName        string
}

// GetExerciseQuery carries input for the exercise projection.
type GetExerciseQuery struct {
	UserID      string
	Exercise    string
	SenderEmail string
}

// GetExerciseDeps holds dependencies for the exercise projection.
type GetExerciseDeps struct {
	Profiles ProfileReader
	Policy   exercise.FrictionPolicy
}

// QueryGetExercise returns the page for an exercise and whether the user may
// open it.
// POST: exercise.ErrUnknownExercise for an unknown key; a locked page carries
// its prerequisite so the caller can point the user there
func QueryGetExercise(ctx context.Context, query GetExerciseQuery, deps GetExerciseDeps) (ExercisePage, error) {
	content, ok := exercise.Lookup(query.Exercise)
	if !ok {
		return ExercisePage{}, exercise.ErrUnknownExercise
	}
	p, err := deps.Profiles.Get(ctx, query.UserID)
	if err != nil {
		return ExercisePage{}, fmt.Errorf("load profile: %w", err)
	}
	policy := deps.Policy.Normalized()

	page := ExercisePage{
		Content:           content,
		Status:            progress.ExerciseStatus(query.Exercise, p.ModulesCompleted),
		Categories:        exercise.Categories,
		CategoryPrompts:   exercise.CategoryPrompts,
		DefaultPrompt:     exercise.DefaultPrompt,
		MinFrictionPoints: policy.MinPoints,
		Assets:            exercise.Assets,
		DesignTags:        exercise.DesignTags,
		DefaultSubject:    exercise.DefaultSubject,
		SenderEmail:       query.SenderEmail,
		SenderName:        p.FullName(),
	}
	for i := 0; i < exercise.MaxFrictionPoints; i++ {
		page.FrictionSlots = append(page.FrictionSlots, i)
	}
	page.Locked = page.Status == progress.Locked
	if pre, ok := progress.Prerequisite(query.Exercise); ok {
		page.Prerequisite, _ = exercise.Lookup(pre)
	}
	return page, nil
}
