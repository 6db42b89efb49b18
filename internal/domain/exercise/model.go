package exercise

import (
	"errors"
	"strings"
	"time"

	"playbook/internal/domain/profile"
)

// Domain errors
var (
	ErrIncomplete      = errors.New("please complete all fields")
	ErrEmptyUserID     = errors.New("user id is required")
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrInvalidCategory = errors.New("friction category is not recognised")
	ErrTooManyPoints   = errors.New("a friction log holds at most 3 points")
	ErrInvalidAsset    = errors.New("asset type is not recognised")
	ErrInvalidTag      = errors.New("design tag is not recognised")
	ErrInvalidEmail    = errors.New("please enter a valid email address")
	ErrEmailTooLong    = errors.New("email address cannot exceed 255 characters")
	ErrSubjectTooLong  = errors.New("subject cannot exceed 200 characters")
	ErrMessageTooLong  = errors.New("message cannot exceed 5000 characters")
)

var validationErrors = []error{
	ErrIncomplete, ErrInvalidCategory, ErrTooManyPoints, ErrInvalidAsset,
	ErrInvalidTag, ErrInvalidEmail, ErrEmailTooLong, ErrSubjectTooLong, ErrMessageTooLong,
}

// IsValidationError reports whether err came from submission validation.
func IsValidationError(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// Submission is the persisted record of one exercise attempt.
// Only the fields for its Exercise are populated.
type Submission struct {
	ID       string
	UserID   string
	Exercise string

	// friction
	Struggles [MaxFrictionPoints]string

	// makeover
	RedesignDescription string

	// visibility
	ColleagueName string
	ImpactNote    string

	CreatedAt time.Time
}

// Validate checks if the Submission has valid data.
// PRE: Submission struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return ErrEmptyUserID
	}
	if !profile.IsExerciseKey(s.Exercise) {
		return ErrUnknownExercise
	}
	if s.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}
