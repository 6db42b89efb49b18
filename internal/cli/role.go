package cli

import (
	"fmt"

	"playbook/internal/application/orchestrators"
)

// RoleGrantCmd grants a role to a registered account.
type RoleGrantCmd struct {
	Email string `arg:"" help:"Email of the account."`
	Role  string `help:"Role to grant." default:"admin" enum:"admin"`
}

func (c *RoleGrantCmd) Run(ctx *Context) error {
	g, err := orchestrators.ExecuteGrantRole(ctx.Ctx, orchestrators.RoleChangeInput{Email: c.Email, Role: c.Role}, ctx.roleChangeDeps())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "granted %s to %s (%s)\n", g.Role, c.Email, g.UserID)
	return nil
}

// RoleRevokeCmd removes a role from a registered account.
type RoleRevokeCmd struct {
	Email string `arg:"" help:"Email of the account."`
	Role  string `help:"Role to revoke." default:"admin" enum:"admin"`
}

func (c *RoleRevokeCmd) Run(ctx *Context) error {
	if err := orchestrators.ExecuteRevokeRole(ctx.Ctx, orchestrators.RoleChangeInput{Email: c.Email, Role: c.Role}, ctx.roleChangeDeps()); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "revoked %s from %s\n", c.Role, c.Email)
	return nil
}
