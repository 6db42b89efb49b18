package progress_test

import (
	"testing"

	"playbook/internal/domain/profile"
	"playbook/internal/domain/progress"
)

// TestDerive_PrePulse tests that the pre survey shows only while started.
func TestDerive_PrePulse(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{profile.StatusStarted, true},
		{profile.StatusSurveyComplete, false},
		{profile.StatusModulesComplete, false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := progress.Derive(tt.status, nil).ShowPrePulse; got != tt.want {
				t.Errorf("ShowPrePulse = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestDerive_PostPulse tests the post survey gate.
func TestDerive_PostPulse(t *testing.T) {
	all := []string{"friction", "makeover", "visibility"}
	tests := []struct {
		name      string
		status    string
		completed []string
		want      bool
	}{
		{"all done after pre survey", profile.StatusSurveyComplete, all, true},
		{"all done before pre survey", profile.StatusStarted, all, false},
		{"two done after pre survey", profile.StatusSurveyComplete, []string{"friction", "makeover"}, false},
		{"post survey already taken", profile.StatusModulesComplete, all, false},
		{"order does not matter", profile.StatusSurveyComplete, []string{"visibility", "friction", "makeover"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progress.Derive(tt.status, tt.completed).ShowPostPulse; got != tt.want {
				t.Errorf("ShowPostPulse = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestExerciseStatus tests availability for each exercise.
func TestExerciseStatus(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		completed []string
		want      string
	}{
		{"friction open from the start", "friction", nil, progress.Available},
		{"visibility open from the start", "visibility", nil, progress.Available},
		{"makeover locked without friction", "makeover", nil, progress.Locked},
		{"makeover locked with only visibility", "makeover", []string{"visibility"}, progress.Locked},
		{"makeover available after friction", "makeover", []string{"friction"}, progress.Available},
		{"friction completed", "friction", []string{"friction"}, progress.Completed},
		{"completed wins over prerequisite", "makeover", []string{"makeover"}, progress.Completed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progress.ExerciseStatus(tt.key, tt.completed); got != tt.want {
				t.Errorf("ExerciseStatus(%q, %v) = %q, want %q", tt.key, tt.completed, got, tt.want)
			}
		})
	}
}

// TestDerive_CountsAndOrder tests the aggregate fields of the derived state.
func TestDerive_CountsAndOrder(t *testing.T) {
	s := progress.Derive(profile.StatusSurveyComplete, []string{"friction", "bogus"})
	if s.CompletedCount != 1 {
		t.Errorf("CompletedCount = %d, want 1", s.CompletedCount)
	}
	if s.AllComplete {
		t.Error("AllComplete should be false")
	}
	wantOrder := []string{"friction", "makeover", "visibility"}
	for i, e := range s.Exercises {
		if e.Key != wantOrder[i] {
			t.Errorf("Exercises[%d] = %q, want %q", i, e.Key, wantOrder[i])
		}
	}
	if got := s.StatusOf("makeover"); got != progress.Available {
		t.Errorf("StatusOf(makeover) = %q, want available", got)
	}
	if got := s.StatusOf("nope"); got != "" {
		t.Errorf("StatusOf(nope) = %q, want empty", got)
	}
}
