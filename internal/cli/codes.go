package cli

import (
	"fmt"

	"playbook/internal/application/orchestrators"
)

// CodesGenerateCmd creates a batch of access codes and prints them one per line.
type CodesGenerateCmd struct {
	Count int `arg:"" help:"Number of codes to generate (1-1000)."`
}

func (c *CodesGenerateCmd) Run(ctx *Context) error {
	codes, err := orchestrators.ExecuteGenerateAccessCodes(ctx.Ctx, orchestrators.GenerateAccessCodesInput{
		ActorID: orchestrators.SystemActor,
		Count:   c.Count,
	}, ctx.accessCodeDeps())
	if err != nil {
		return err
	}
	for _, code := range codes {
		fmt.Fprintln(ctx.Out, code.Code)
	}
	return nil
}

// SeatsSetCmd resizes the seat pool.
type SeatsSetCmd struct {
	Total int `arg:"" help:"New total number of seats."`
}

func (c *SeatsSetCmd) Run(ctx *Context) error {
	err := orchestrators.ExecuteSetSeatTotal(ctx.Ctx, orchestrators.SetSeatTotalInput{
		ActorID: orchestrators.SystemActor,
		Total:   c.Total,
	}, ctx.accessCodeDeps())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "seat total set to %d\n", c.Total)
	return nil
}
