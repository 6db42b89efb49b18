package cli

import (
	"fmt"
	"text/tabwriter"

	exerciseStore "playbook/internal/adapters/storage/exercise"
	profileStore "playbook/internal/adapters/storage/profile"
	"playbook/internal/domain/profile"
)

// StatsCmd prints participant counts per status and submissions per exercise.
type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *Context) error {
	profiles := profileStore.NewSQLStore(ctx.DB)
	submissions, err := exerciseStore.NewSQLStore(ctx.DB).CountByExercise(ctx.Ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tPARTICIPANTS")
	for _, status := range []string{profile.StatusStarted, profile.StatusSurveyComplete, profile.StatusModulesComplete} {
		n, err := profiles.CountByStatus(ctx.Ctx, status)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\n", status, n)
	}
	fmt.Fprintln(w, "\nEXERCISE\tSUBMISSIONS")
	for _, key := range profile.ExerciseKeys {
		fmt.Fprintf(w, "%s\t%d\n", key, submissions[key])
	}
	return w.Flush()
}
