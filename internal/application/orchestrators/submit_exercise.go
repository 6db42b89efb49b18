package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"playbook/internal/domain/email"
	"playbook/internal/domain/exercise"
	"playbook/internal/domain/outbox"
	"playbook/internal/domain/profile"
	"playbook/internal/domain/progress"
)

// Exercise workflow errors.
var (
	ErrExerciseLocked = errors.New("complete the friction audit first")
	ErrPersistence    = errors.New("failed to submit. please try again.")
	ErrMailDispatch   = errors.New("note saved, but email failed")
)

// SubmitExerciseInput carries one exercise form. Only the field matching
// Exercise is read.
type SubmitExerciseInput struct {
	UserID   string
	Exercise string
	Friction exercise.FrictionLog
	Makeover exercise.Makeover
	Signal   exercise.Signal
}

// SubmitExerciseDeps holds dependencies for the exercise workflow.
type SubmitExerciseDeps struct {
	Profiles    ProfileStore
	Submissions SubmissionStore
	Mailer      Mailer
	Outbox      OutboxStore
	Policy      exercise.FrictionPolicy
	MailFrom    string
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteSubmitExercise validates and stores one exercise submission and
// records the exercise as completed. The appreciation mail goes out only
// after both are committed.
// PRE: the user has a profile
// POST: On a validation error, ErrExerciseLocked or ErrPersistence nothing
// is written and no mail is sent. On ErrMailDispatch the
// submission and completion are stored, the mail is queued for retry, and
// the refreshed profile is returned alongside the error.
func ExecuteSubmitExercise(ctx context.Context, input SubmitExerciseInput, deps SubmitExerciseDeps) (profile.Profile, error) {
	if !profile.IsExerciseKey(input.Exercise) {
		return profile.Profile{}, exercise.ErrUnknownExercise
	}
	p, err := deps.Profiles.Get(ctx, input.UserID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if progress.ExerciseStatus(input.Exercise, p.ModulesCompleted) == progress.Locked {
		return profile.Profile{}, ErrExerciseLocked
	}

	now := deps.Now()
	sub := exercise.Submission{
		ID:        deps.GenerateID(),
		UserID:    input.UserID,
		Exercise:  input.Exercise,
		CreatedAt: now,
	}
	var signal exercise.Signal
	switch input.Exercise {
	case profile.ExerciseFriction:
		if err := input.Friction.Validate(deps.Policy); err != nil {
			return profile.Profile{}, err
		}
		sub.Struggles = input.Friction.Struggles()
	case profile.ExerciseMakeover:
		if err := input.Makeover.Validate(); err != nil {
			return profile.Profile{}, err
		}
		sub.RedesignDescription = input.Makeover.Encode()
	case profile.ExerciseVisibility:
		signal = input.Signal.WithDefaults()
		if err := signal.Validate(); err != nil {
			return profile.Profile{}, err
		}
		sub.ColleagueName = signal.RecipientEmail
		sub.ImpactNote = signal.ImpactNote()
	}

	if err := deps.Submissions.Save(ctx, sub); err != nil {
		slog.Error("internal_error", "op", "save_submission", "exercise", input.Exercise, "error", err)
		return profile.Profile{}, ErrPersistence
	}
	slog.Info("exercise_event", "event", "exercise_submitted", "user_id", input.UserID, "exercise", input.Exercise)

	var mailErr error
	if input.Exercise == profile.ExerciseVisibility {
		if signal.SenderName == "" {
			signal.SenderName = p.FullName()
		}
		mailErr = dispatchAppreciation(ctx, signal, deps, now)
	}

	refreshed, err := deps.Profiles.Get(ctx, input.UserID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("reload profile: %w", err)
	}
	return refreshed, mailErr
}

// dispatchAppreciation sends the visibility note. A failed send is queued in
// the outbox and reported as ErrMailDispatch.
func dispatchAppreciation(ctx context.Context, s exercise.Signal, deps SubmitExerciseDeps, now time.Time) error {
	note := email.Appreciation{
		SenderEmail:    s.SenderEmail,
		SenderName:     s.SenderName,
		RecipientEmail: s.RecipientEmail,
		Subject:        s.Subject,
		Message:        s.Message,
	}
	msg, err := email.Compose(note, deps.MailFrom)
	if err != nil {
		slog.Error("mail_event", "event", "compose_failed", "error", err)
		return ErrMailDispatch
	}
	id, err := deps.Mailer.Send(ctx, msg)
	if err == nil {
		slog.Info("mail_event", "event", "appreciation_sent", "message_id", id)
		return nil
	}
	slog.Warn("mail_event", "event", "appreciation_failed", "error", err)

	payload, jerr := json.Marshal(note)
	if jerr != nil {
		slog.Error("internal_error", "op", "encode_outbox_payload", "error", jerr)
		return ErrMailDispatch
	}
	entry := outbox.New(deps.GenerateID(), outbox.ActionTypeAppreciationEmail, string(payload), now)
	if err := deps.Outbox.Save(ctx, entry); err != nil {
		slog.Error("internal_error", "op", "enqueue_outbox", "error", err)
	} else {
		slog.Info("mail_event", "event", "appreciation_queued", "entry_id", entry.ID)
	}
	return ErrMailDispatch
}
