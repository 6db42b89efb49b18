package cli

import (
	"context"
	"fmt"
	"os"

	"playbook/internal/application/projections"
)

// operatorRoles grants the admin report to the CLI, which already holds
// direct database access.
type operatorRoles struct{}

func (operatorRoles) HasRole(context.Context, string, string) (bool, error) { return true, nil }

// ExportCmd writes the activation report workbook.
type ExportCmd struct {
	Output string `short:"o" help:"Destination file." default:"inventors-playbook-report.xlsx" type:"path"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	r, err := projections.QueryGetAdminReport(ctx.Ctx, projections.GetAdminReportQuery{UserID: "operator"},
		projections.GetAdminReportDeps{Roles: operatorRoles{}, Reports: ctx.reports()})
	if err != nil {
		return err
	}

	f, err := os.Create(c.Output)
	if err != nil {
		return err
	}
	if err := projections.WriteReportWorkbook(f, r, ctx.Now()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%d/%d seats claimed, %d%% complete, delta %s\nwrote %s\n",
		r.Inventory.ClaimedSeats, r.Inventory.TotalSeats, r.CompletionRate, r.FormattedDelta(), c.Output)
	return nil
}
