package survey

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"playbook/internal/domain/profile"
)

// Survey types.
const (
	TypePre  = "pre"
	TypePost = "post"
)

// Likert bounds and question counts.
const (
	MinScore     = 1
	MaxScore     = 5
	MinQuestions = 2
	MaxQuestions = 4
)

// Domain errors
var (
	ErrInvalidType      = errors.New("survey type must be pre or post")
	ErrUnrated          = errors.New("please rate both questions")
	ErrScoreOutOfRange  = errors.New("scores must be between 1 and 5")
	ErrQuestionCount    = errors.New("a survey has between 2 and 4 questions")
	ErrEmptyUserID      = errors.New("user id is required")
	ErrAlreadySubmitted = errors.New("this survey has already been submitted")
	ErrNotEligible      = errors.New("this survey is not available yet")
)

// Questions holds the prompts for each survey type.
var Questions = map[string][]string{
	TypePre: {
		"I feel empowered to identify and fix broken processes in my daily workflow.",
		"I feel that my behind-the-scenes contributions are visible and valued.",
	},
	TypePost: {
		"After this experience, I feel better equipped to spot innovation opportunities.",
		"I feel a stronger sense of belonging with my team.",
	},
}

// Response is one submitted pulse survey.
type Response struct {
	ID        string
	UserID    string
	Type      string
	Scores    []int
	CreatedAt time.Time
}

// Validate checks if the Response has valid data.
// PRE: Response struct is populated
// POST: Returns nil if valid; a zero score reports ErrUnrated
func (r *Response) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrEmptyUserID
	}
	if !IsValidType(r.Type) {
		return ErrInvalidType
	}
	if len(r.Scores) < MinQuestions || len(r.Scores) > MaxQuestions {
		return ErrQuestionCount
	}
	for i, s := range r.Scores {
		if s == 0 {
			return ErrUnrated
		}
		if s < MinScore || s > MaxScore {
			return fmt.Errorf("%w: question %d scored %d", ErrScoreOutOfRange, i+1, s)
		}
	}
	return nil
}

// IsValidationError reports whether err came from response validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnrated) || errors.Is(err, ErrScoreOutOfRange) ||
		errors.Is(err, ErrQuestionCount) || errors.Is(err, ErrInvalidType)
}

// IsValidType reports whether t is pre or post.
func IsValidType(t string) bool {
	return t == TypePre || t == TypePost
}

// Transition returns the profile status a survey moves from and to.
// PRE: t is a valid type
// POST: pre moves started to survey_complete; post moves survey_complete to modules_complete
func Transition(t string) (from, to string, err error) {
	switch t {
	case TypePre:
		return profile.StatusStarted, profile.StatusSurveyComplete, nil
	case TypePost:
		return profile.StatusSurveyComplete, profile.StatusModulesComplete, nil
	}
	return "", "", ErrInvalidType
}

// Eligible reports whether a profile may take a survey of type t now.
// The post survey additionally needs every exercise complete.
func Eligible(t string, p profile.Profile) bool {
	from, _, err := Transition(t)
	if err != nil || p.Status != from {
		return false
	}
	if t == TypePost {
		return p.AllExercisesComplete()
	}
	return true
}
