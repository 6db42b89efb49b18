package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"playbook/internal/adapters/storage"
	"playbook/internal/cli"
	"playbook/internal/config"
	"playbook/internal/logging"
)

var version = "dev"

var CLI struct {
	Version kong.VersionFlag
	Driver  string `help:"Database driver (sqlite or postgres)." default:"${driver}" enum:"sqlite,postgres"`
	DSN     string `help:"Database connection string." default:"${dsn}"`

	Migrate cli.MigrateCmd `cmd:"" help:"Apply pending schema migrations."`
	Codes   struct {
		Generate cli.CodesGenerateCmd `cmd:"" help:"Generate access codes."`
	} `cmd:"" help:"Manage access codes."`
	Seats struct {
		Set cli.SeatsSetCmd `cmd:"" help:"Set the total seat count."`
	} `cmd:"" help:"Manage the seat pool."`
	Role struct {
		Grant  cli.RoleGrantCmd  `cmd:"" help:"Grant a role to an account."`
		Revoke cli.RoleRevokeCmd `cmd:"" help:"Revoke a role from an account."`
	} `cmd:"" help:"Manage roles."`
	Export cli.ExportCmd `cmd:"" help:"Export the activation report as XLSX."`
	Stats  cli.StatsCmd  `cmd:"" help:"Show participant and submission counts."`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if _, _, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	kctx := kong.Parse(&CLI,
		kong.Name("playbookctl"),
		kong.Description("Operator tools for the inventor's playbook"),
		kong.UsageOnError(),
		kong.Vars{"version": version, "driver": cfg.DBDriver, "dsn": cfg.DBDSN},
	)

	ctx := context.Background()
	db, err := storage.Open(ctx, CLI.Driver, CLI.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	timedDB := storage.NewTimedDB(db, CLI.Driver, nil)
	defer timedDB.Close()

	err = kctx.Run(&cli.Context{
		Ctx:    ctx,
		DB:     timedDB,
		Driver: CLI.Driver,
		Out:    os.Stdout,
		Now:    time.Now,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		timedDB.Close()
		os.Exit(1)
	}
}
