package cli

import (
	"fmt"

	"playbook/internal/adapters/storage"
)

// MigrateCmd applies pending schema migrations.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	if err := storage.MigrateDB(ctx.Ctx, ctx.DB.RawDB(), ctx.Driver); err != nil {
		return err
	}
	version, err := storage.SchemaVersion(ctx.Ctx, ctx.DB.RawDB())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "schema at version %d\n", version)
	return nil
}
