package projections

import (
	"context"
	"fmt"

	"playbook/internal/domain/exercise"
	"playbook/internal/domain/profile"
	"playbook/internal/domain/progress"
	"playbook/internal/domain/survey"
)

// ExerciseCard is one exercise tile on the dashboard.
type ExerciseCard struct {
	exercise.Content
	Status       string
	Prerequisite string // title of the exercise that unlocks this one
}

// Dashboard is everything the dashboard page shows.
type Dashboard struct {
	Profile          profile.Profile
	Progress         progress.State
	Cards            []ExerciseCard
	PreQuestions     []string
	PostQuestions    []string
	CertificateReady bool
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	UserID string
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	Profiles ProfileReader
}

// QueryGetDashboard derives the dashboard from the user's profile.
// PRE: the user has a profile
// POST: Cards follow curriculum order; pulse questions are present only
// when that survey is due
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (Dashboard, error) {
	p, err := deps.Profiles.Get(ctx, query.UserID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load profile: %w", err)
	}
	state := progress.Derive(p.Status, p.ModulesCompleted)

	d := Dashboard{
		Profile:          p,
		Progress:         state,
		CertificateReady: p.Status == profile.StatusModulesComplete,
	}
	for _, es := range state.Exercises {
		content, _ := exercise.Lookup(es.Key)
		card := ExerciseCard{Content: content, Status: es.Status}
		if pre, ok := progress.Prerequisite(es.Key); ok && es.Status == progress.Locked {
			if c, ok := exercise.Lookup(pre); ok {
				card.Prerequisite = c.Title
			}
		}
		d.Cards = append(d.Cards, card)
	}
	if state.ShowPrePulse {
		d.PreQuestions = survey.Questions[survey.TypePre]
	}
	if state.ShowPostPulse {
		d.PostQuestions = survey.Questions[survey.TypePost]
	}
	return d, nil
}
