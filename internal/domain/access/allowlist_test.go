package access_test

import (
	"testing"

	"playbook/internal/domain/access"
)

// TestAllowList_Allows tests exact and domain matching.
func TestAllowList_Allows(t *testing.T) {
	al := access.DefaultAllowList()
	tests := []struct {
		email string
		want  bool
	}{
		{"philip@lightmilemedia.com", true},
		{"Philip@LightMileMedia.com", true},
		{"  philip@lightmilemedia.com  ", true},
		{"other@lightmilemedia.com", false},
		{"a@evolutionofsmooth.com", true},
		{"A@EvolutionOfSmooth.COM", true},
		{"a@sub.evolutionofsmooth.com", false},
		{"a@evolutionofsmooth.com.evil.io", false},
		{"evolutionofsmooth.com", false},
		{"a@", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := al.Allows(tt.email); got != tt.want {
				t.Errorf("Allows(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

// TestNewAllowList_Normalizes tests entries are normalized on construction.
func TestNewAllowList_Normalizes(t *testing.T) {
	al := access.NewAllowList([]string{" Boss@Example.com ", ""}, []string{"@Example.ORG", " "})
	if !al.Allows("boss@example.com") {
		t.Error("exact entry should match case-insensitively")
	}
	if !al.Allows("anyone@example.org") {
		t.Error("domain with leading @ should match")
	}
	if al.Allows("anyone@example.com") {
		t.Error("exact entry must not admit its whole domain")
	}
}
