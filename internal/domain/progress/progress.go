// Package progress derives what a participant may see and do from their
// profile status and completed exercises. Everything here is pure.
package progress

import "playbook/internal/domain/profile"

// Exercise availability values.
const (
	Available = "available"
	Locked    = "locked"
	Completed = "completed"
)

// prerequisites maps an exercise to the exercise that must be completed first.
var prerequisites = map[string]string{
	profile.ExerciseMakeover: profile.ExerciseFriction,
}

// ExerciseState pairs an exercise key with its availability.
type ExerciseState struct {
	Key    string
	Status string
}

// State is the derived view of a participant's progress.
type State struct {
	ShowPrePulse   bool
	ShowPostPulse  bool
	Exercises      []ExerciseState
	CompletedCount int
	AllComplete    bool
}

// Derive computes progress from a status and a completed set.
// PRE: none; unknown keys in completed are ignored
// POST: Exercises lists every exercise in curriculum order
func Derive(status string, completed []string) State {
	done := completedSet(completed)

	state := State{
		ShowPrePulse: status == profile.StatusStarted,
		Exercises:    make([]ExerciseState, 0, len(profile.ExerciseKeys)),
	}
	for _, key := range profile.ExerciseKeys {
		st := exerciseStatus(key, done)
		if st == Completed {
			state.CompletedCount++
		}
		state.Exercises = append(state.Exercises, ExerciseState{Key: key, Status: st})
	}
	state.AllComplete = state.CompletedCount == len(profile.ExerciseKeys)
	state.ShowPostPulse = state.AllComplete && status == profile.StatusSurveyComplete
	return state
}

// ExerciseStatus returns the availability of a single exercise.
// Completed wins over any unmet prerequisite.
func ExerciseStatus(key string, completed []string) string {
	return exerciseStatus(key, completedSet(completed))
}

// StatusOf looks up an exercise's availability in a derived state.
// Returns the empty string for unknown keys.
func (s State) StatusOf(key string) string {
	for _, e := range s.Exercises {
		if e.Key == key {
			return e.Status
		}
	}
	return ""
}

// Prerequisite returns the exercise that must precede key, if any.
func Prerequisite(key string) (string, bool) {
	pre, ok := prerequisites[key]
	return pre, ok
}

func exerciseStatus(key string, done map[string]bool) string {
	if done[key] {
		return Completed
	}
	if pre, ok := prerequisites[key]; ok && !done[pre] {
		return Locked
	}
	return Available
}

func completedSet(completed []string) map[string]bool {
	done := make(map[string]bool, len(completed))
	for _, key := range completed {
		if profile.IsExerciseKey(key) {
			done[key] = true
		}
	}
	return done
}
