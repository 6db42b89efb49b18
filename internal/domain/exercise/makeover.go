package exercise

import (
	"fmt"
	"strings"
)

// Asset domains a makeover can target.
var Assets = []string{"Spreadsheet", "Form", "Email", "Meeting"}

// DesignTags are the brand principles a redesign can claim.
var DesignTags = []string{"simpler", "smoother", "more beautiful"}

// Makeover is the mundane-makeover exercise input.
type Makeover struct {
	Asset       string
	Description string
	Tags        []string
}

// Validate checks the makeover record.
// PRE: none
// POST: Returns nil if an asset is chosen, the description is non-blank,
// and every tag is a known design tag
func (m Makeover) Validate() error {
	if strings.TrimSpace(m.Asset) == "" || strings.TrimSpace(m.Description) == "" {
		return ErrIncomplete
	}
	if !contains(Assets, m.Asset) {
		return fmt.Errorf("%w: %q", ErrInvalidAsset, m.Asset)
	}
	for _, tag := range m.Tags {
		if !contains(DesignTags, tag) {
			return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
		}
	}
	return nil
}

// Encode renders the record as "[Asset] text [Tags: a, b]".
func (m Makeover) Encode() string {
	out := fmt.Sprintf("[%s] %s", m.Asset, strings.TrimSpace(m.Description))
	if len(m.Tags) > 0 {
		out += fmt.Sprintf(" [Tags: %s]", strings.Join(m.Tags, ", "))
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
