package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"playbook/internal/domain/profile"
	"playbook/internal/domain/survey"
)

// SubmitSurveyInput is one pulse survey form.
type SubmitSurveyInput struct {
	UserID string
	Type   string
	Scores []int
}

// SubmitSurveyDeps holds dependencies for the survey workflow.
type SubmitSurveyDeps struct {
	Profiles   ProfileStore
	Surveys    SurveyStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSubmitSurvey records a pulse survey and advances the profile status.
// PRE: the user has a profile
// POST: The response and the status transition are stored together.
// survey.ErrNotEligible when the profile is in the wrong status or, for the
// post survey, has not finished every exercise.
func ExecuteSubmitSurvey(ctx context.Context, input SubmitSurveyInput, deps SubmitSurveyDeps) (profile.Profile, error) {
	r := survey.Response{
		ID:        deps.GenerateID(),
		UserID:    input.UserID,
		Type:      input.Type,
		Scores:    input.Scores,
		CreatedAt: deps.Now(),
	}
	if err := r.Validate(); err != nil {
		return profile.Profile{}, err
	}

	p, err := deps.Profiles.Get(ctx, input.UserID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if !survey.Eligible(input.Type, p) {
		return profile.Profile{}, survey.ErrNotEligible
	}

	if err := deps.Surveys.Submit(ctx, r); err != nil {
		switch {
		case errors.Is(err, survey.ErrAlreadySubmitted):
			return profile.Profile{}, err
		case errors.Is(err, profile.ErrInvalidTransition):
			return profile.Profile{}, survey.ErrNotEligible
		}
		slog.Error("internal_error", "op", "submit_survey", "type", input.Type, "error", err)
		return profile.Profile{}, ErrPersistence
	}
	slog.Info("survey_event", "event", "survey_submitted", "user_id", input.UserID, "type", input.Type)

	return deps.Profiles.Get(ctx, input.UserID)
}
