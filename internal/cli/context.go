// Package cli implements the playbookctl operator commands.
package cli

import (
	"context"
	"io"
	"time"

	"playbook/internal/adapters/storage"
	accountStore "playbook/internal/adapters/storage/account"
	reportStore "playbook/internal/adapters/storage/report"
	roleStore "playbook/internal/adapters/storage/role"
	seatStore "playbook/internal/adapters/storage/seat"
	"playbook/internal/application/orchestrators"
)

// Context is passed to every command's Run method.
type Context struct {
	Ctx    context.Context
	DB     *storage.TimedDB
	Driver string
	Out    io.Writer
	Now    func() time.Time
}

func (c *Context) accessCodeDeps() orchestrators.AccessCodeDeps {
	return orchestrators.AccessCodeDeps{
		Roles: roleStore.NewSQLStore(c.DB),
		Seats: seatStore.NewSQLStore(c.DB),
		Now:   c.Now,
	}
}

func (c *Context) roleChangeDeps() orchestrators.RoleChangeDeps {
	return orchestrators.RoleChangeDeps{
		Accounts: accountStore.NewSQLStore(c.DB),
		Roles:    roleStore.NewSQLStore(c.DB),
		Now:      c.Now,
	}
}

func (c *Context) reports() reportStore.Store {
	return reportStore.NewSQLStore(c.DB)
}
