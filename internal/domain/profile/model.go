package profile

import (
	"errors"
	"strings"
	"time"
)

// Status constants. A profile only ever moves forward through these.
const (
	StatusStarted         = "started"
	StatusSurveyComplete  = "survey_complete"
	StatusModulesComplete = "modules_complete"
)

// Exercise keys, in curriculum order.
const (
	ExerciseFriction   = "friction"
	ExerciseMakeover   = "makeover"
	ExerciseVisibility = "visibility"
)

// ExerciseKeys lists every exercise in the order participants see them.
var ExerciseKeys = []string{ExerciseFriction, ExerciseMakeover, ExerciseVisibility}

// statusOrder ranks each status; higher ranks are later in the lifecycle.
var statusOrder = map[string]int{
	StatusStarted:         0,
	StatusSurveyComplete:  1,
	StatusModulesComplete: 2,
}

// Domain errors
var (
	ErrEmptyUserID       = errors.New("user id is required")
	ErrInvalidStatus     = errors.New("status must be one of: started, survey_complete, modules_complete")
	ErrInvalidTransition = errors.New("status transition is not allowed")
	ErrUnknownExercise   = errors.New("unknown exercise")
	ErrDuplicateExercise = errors.New("completed exercises must not repeat")
	ErrNotFound          = errors.New("profile not found")
)

// Profile is a participant's progress record.
type Profile struct {
	UserID           string
	Status           string
	ModulesCompleted []string
	FirstName        string
	LastName         string
	AccessCodeUsed   string
	CreatedAt        time.Time
}

// New returns a fresh profile in the started state.
// PRE: userID is non-empty
// POST: Status is started, no exercises completed
func New(userID string, now time.Time) Profile {
	return Profile{
		UserID:    userID,
		Status:    StatusStarted,
		CreatedAt: now,
	}
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrEmptyUserID
	}
	if _, ok := statusOrder[p.Status]; !ok {
		return ErrInvalidStatus
	}
	seen := make(map[string]bool, len(p.ModulesCompleted))
	for _, key := range p.ModulesCompleted {
		if !IsExerciseKey(key) {
			return ErrUnknownExercise
		}
		if seen[key] {
			return ErrDuplicateExercise
		}
		seen[key] = true
	}
	return nil
}

// HasCompleted reports whether key is in the completed set.
// INVARIANT: Profile fields are not mutated
func (p Profile) HasCompleted(key string) bool {
	for _, k := range p.ModulesCompleted {
		if k == key {
			return true
		}
	}
	return false
}

// AddCompleted adds key to the completed set if absent.
// PRE: key is a known exercise key
// POST: key appears exactly once in ModulesCompleted; returns true if it was added
func (p *Profile) AddCompleted(key string) (bool, error) {
	if !IsExerciseKey(key) {
		return false, ErrUnknownExercise
	}
	if p.HasCompleted(key) {
		return false, nil
	}
	p.ModulesCompleted = append(p.ModulesCompleted, key)
	return true, nil
}

// AllExercisesComplete reports whether every exercise key has been completed.
// INVARIANT: Profile fields are not mutated
func (p Profile) AllExercisesComplete() bool {
	for _, key := range ExerciseKeys {
		if !p.HasCompleted(key) {
			return false
		}
	}
	return true
}

// TransitionTo moves the profile to the next status.
// PRE: to is the status directly after the current one
// POST: Status is updated, or ErrInvalidTransition if the move regresses or skips a step
func (p *Profile) TransitionTo(to string) error {
	if !CanTransition(p.Status, to) {
		return ErrInvalidTransition
	}
	p.Status = to
	return nil
}

// NeedsName reports whether the profile has no first name recorded yet.
func (p Profile) NeedsName() bool {
	return strings.TrimSpace(p.FirstName) == ""
}

// FullName joins first and last name, trimming blanks.
func (p Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// CanTransition reports whether a profile may move from one status to another.
// Only single forward steps are allowed.
func CanTransition(from, to string) bool {
	fromRank, ok := statusOrder[from]
	if !ok {
		return false
	}
	toRank, ok := statusOrder[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// IsExerciseKey reports whether key names a known exercise.
func IsExerciseKey(key string) bool {
	for _, k := range ExerciseKeys {
		if k == key {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether status is a known lifecycle status.
func IsValidStatus(status string) bool {
	_, ok := statusOrder[status]
	return ok
}
