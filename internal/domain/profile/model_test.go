package profile_test

import (
	"errors"
	"testing"
	"time"

	"playbook/internal/domain/profile"
)

// TestProfile_Validate tests validation of Profile.
func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile profile.Profile
		wantErr error
	}{
		{
			name:    "fresh profile",
			profile: profile.New("u1", time.Now()),
		},
		{
			name: "all exercises complete",
			profile: profile.Profile{
				UserID:           "u1",
				Status:           profile.StatusSurveyComplete,
				ModulesCompleted: []string{"friction", "makeover", "visibility"},
			},
		},
		{
			name:    "missing user id",
			profile: profile.Profile{Status: profile.StatusStarted},
			wantErr: profile.ErrEmptyUserID,
		},
		{
			name:    "unknown status",
			profile: profile.Profile{UserID: "u1", Status: "finished"},
			wantErr: profile.ErrInvalidStatus,
		},
		{
			name:    "unknown exercise",
			profile: profile.Profile{UserID: "u1", Status: profile.StatusStarted, ModulesCompleted: []string{"juggling"}},
			wantErr: profile.ErrUnknownExercise,
		},
		{
			name:    "duplicate exercise",
			profile: profile.Profile{UserID: "u1", Status: profile.StatusStarted, ModulesCompleted: []string{"friction", "friction"}},
			wantErr: profile.ErrDuplicateExercise,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestProfile_AddCompleted verifies the completed set never holds duplicates.
func TestProfile_AddCompleted(t *testing.T) {
	p := profile.New("u1", time.Now())

	added, err := p.AddCompleted(profile.ExerciseFriction)
	if err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}
	added, err = p.AddCompleted(profile.ExerciseFriction)
	if err != nil || added {
		t.Fatalf("second add: added=%v err=%v, want false/nil", added, err)
	}
	if len(p.ModulesCompleted) != 1 {
		t.Errorf("ModulesCompleted = %v, want one entry", p.ModulesCompleted)
	}
	if _, err := p.AddCompleted("unknown"); !errors.Is(err, profile.ErrUnknownExercise) {
		t.Errorf("unknown key error = %v", err)
	}
}

// TestCanTransition tests that status only moves forward one step at a time.
func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{profile.StatusStarted, profile.StatusSurveyComplete, true},
		{profile.StatusSurveyComplete, profile.StatusModulesComplete, true},
		{profile.StatusStarted, profile.StatusModulesComplete, false},
		{profile.StatusSurveyComplete, profile.StatusStarted, false},
		{profile.StatusModulesComplete, profile.StatusSurveyComplete, false},
		{profile.StatusModulesComplete, profile.StatusModulesComplete, false},
		{"bogus", profile.StatusSurveyComplete, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := profile.CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// TestProfile_TransitionTo verifies regressions are rejected without mutation.
func TestProfile_TransitionTo(t *testing.T) {
	p := profile.Profile{UserID: "u1", Status: profile.StatusModulesComplete}
	if err := p.TransitionTo(profile.StatusStarted); !errors.Is(err, profile.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if p.Status != profile.StatusModulesComplete {
		t.Errorf("status changed to %q", p.Status)
	}
}

// TestProfile_FullName tests name joining with missing parts.
func TestProfile_FullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{" Ada ", "", "Ada"},
		{"", "", ""},
	}
	for _, tt := range tests {
		p := profile.Profile{FirstName: tt.first, LastName: tt.last}
		if got := p.FullName(); got != tt.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}
