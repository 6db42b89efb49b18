package exercise

import "playbook/internal/domain/profile"

// Content is the copy shown on an exercise page. Body fields are markdown.
type Content struct {
	Key             string
	Title           string
	ContextHeadline string
	ContextBody     string
	Instruction     string
}

var catalog = map[string]Content{
	profile.ExerciseFriction: {
		Key:             profile.ExerciseFriction,
		Title:           "the friction audit",
		ContextHeadline: "garrett morgan saw danger where others saw the status quo.",
		ContextBody:     `He refused to tolerate the "daily hazards" of his time. Innovation starts with noticing what is broken. What *tolerated struggles* do you deal with every day?`,
		Instruction:     "log 3 minor inefficiencies or broken processes you encounter this week.",
	},
	profile.ExerciseMakeover: {
		Key:             profile.ExerciseMakeover,
		Title:           "the mundane makeover",
		ContextHeadline: "adoption requires good design.",
		ContextBody:     `Morgan understood that safety had to be wearable to be effective. At eos Products, we believe **smooth** applies to our internal tools, not just our lip balm.`,
		Instruction:     `pick one "ugly" internal asset and describe how you would redesign it using eos brand principles.`,
	},
	profile.ExerciseVisibility: {
		Key:             profile.ExerciseVisibility,
		Title:           "the visibility signal",
		ContextHeadline: "making the invisible visible.",
		ContextBody:     `Garrett Morgan was often erased from his own narrative. Today, we break that cycle by acknowledging the "quiet work" that keeps eos running.`,
		Instruction:     "identify one colleague in a support role (ops, qa, admin) and send a signal of appreciation.",
	},
}

// Lookup returns the content for an exercise key.
func Lookup(key string) (Content, bool) {
	c, ok := catalog[key]
	return c, ok
}

// All returns content for every exercise in curriculum order.
func All() []Content {
	out := make([]Content, 0, len(profile.ExerciseKeys))
	for _, key := range profile.ExerciseKeys {
		out = append(out, catalog[key])
	}
	return out
}
