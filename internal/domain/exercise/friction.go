package exercise

import (
	"fmt"
	"strings"
)

// MaxFrictionPoints is the number of struggle slots on a friction log.
const MaxFrictionPoints = 3

// Friction categories.
const (
	CategoryProcessComplexity   = "Process Complexity"
	CategoryDigitalEnablement   = "Digital Enablement"
	CategoryCrossFunctionalFlow = "Cross-Functional Flow"
	CategoryKnowledgeAccess     = "Knowledge Access"
	CategoryResourceAlignment   = "Resource Alignment"
)

// Categories lists friction categories in display order.
var Categories = []string{
	CategoryProcessComplexity,
	CategoryDigitalEnablement,
	CategoryCrossFunctionalFlow,
	CategoryKnowledgeAccess,
	CategoryResourceAlignment,
}

// CategoryPrompts holds the hint shown for each category.
var CategoryPrompts = map[string]string{
	CategoryProcessComplexity:   "Where does the workflow feel heavier or slower than it needs to be?",
	CategoryDigitalEnablement:   "How is the tool fighting against the task? Describe the friction.",
	CategoryCrossFunctionalFlow: "Where does momentum drop when work moves from one team to another?",
	CategoryKnowledgeAccess:     "What specific information or data is difficult to locate?",
	CategoryResourceAlignment:   "Where is the volume of work outpacing our capacity to deliver?",
}

// DefaultPrompt is shown before a category is chosen.
const DefaultPrompt = "Describe the operational struggle..."

// FrictionPolicy controls how many leading points a friction log must fill.
type FrictionPolicy struct {
	MinPoints int
}

// DefaultFrictionPolicy requires only the first point.
var DefaultFrictionPolicy = FrictionPolicy{MinPoints: 1}

// Normalized clamps MinPoints into [1, MaxFrictionPoints].
func (p FrictionPolicy) Normalized() FrictionPolicy {
	switch {
	case p.MinPoints < 1:
		p.MinPoints = 1
	case p.MinPoints > MaxFrictionPoints:
		p.MinPoints = MaxFrictionPoints
	}
	return p
}

// FrictionPoint is one categorized struggle.
type FrictionPoint struct {
	Category string
	Text     string
}

// IsBlank reports whether neither field was filled in.
func (fp FrictionPoint) IsBlank() bool {
	return strings.TrimSpace(fp.Category) == "" && strings.TrimSpace(fp.Text) == ""
}

// FrictionLog is the friction exercise input.
type FrictionLog struct {
	Points []FrictionPoint
}

// Validate checks the log against a policy.
// PRE: policy is any value; it is normalized first
// POST: Returns nil if the first MinPoints points are complete and any
// optional point is either blank or complete
func (f FrictionLog) Validate(policy FrictionPolicy) error {
	policy = policy.Normalized()
	if len(f.Points) > MaxFrictionPoints {
		return ErrTooManyPoints
	}
	for i := 0; i < MaxFrictionPoints; i++ {
		var fp FrictionPoint
		if i < len(f.Points) {
			fp = f.Points[i]
		}
		required := i < policy.MinPoints
		if !required && fp.IsBlank() {
			continue
		}
		if strings.TrimSpace(fp.Category) == "" {
			return fmt.Errorf("%w: point %d needs a category", ErrIncomplete, i+1)
		}
		if strings.TrimSpace(fp.Text) == "" {
			return fmt.Errorf("%w: point %d needs a description", ErrIncomplete, i+1)
		}
		if !isCategory(fp.Category) {
			return fmt.Errorf("%w: %q", ErrInvalidCategory, fp.Category)
		}
	}
	return nil
}

// Struggles renders each point as "[Category] text". Blank points stay empty.
func (f FrictionLog) Struggles() [MaxFrictionPoints]string {
	var out [MaxFrictionPoints]string
	for i, fp := range f.Points {
		if i >= MaxFrictionPoints {
			break
		}
		if fp.IsBlank() {
			continue
		}
		out[i] = fmt.Sprintf("[%s] %s", strings.TrimSpace(fp.Category), strings.TrimSpace(fp.Text))
	}
	return out
}

func isCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}
