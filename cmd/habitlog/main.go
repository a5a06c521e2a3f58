package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/cli/backups"
	"github.com/julianstephens/habitlog/internal/cli/system"
	"github.com/julianstephens/habitlog/internal/cli/users"
	"github.com/julianstephens/habitlog/internal/constants"
	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `name:"db" help:"SQLite database path or PostgreSQL connection string. PostgreSQL passwords must NOT be embedded; use PGPASSWORD, .pgpass or 'habitlog config set-connection'. Defaults to the keyring connection string, then ~/.config/habitlog/habitlog.db." env:"HABITLOG_DB"`
	Debug   bool   `help:"Enable debug logging to stderr." env:"HABITLOG_DEBUG"`

	Serve   system.ServeCmd   `cmd:"" help:"Run the HTTP API server."`
	Init    system.InitCmd    `cmd:"" help:"Initialize habitlog storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	User    struct {
		Add users.UserAddCmd `cmd:"" help:"Create a user account."`
	} `cmd:"" help:"Manage user accounts."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
	Session struct {
		Purge system.SessionPurgeCmd `cmd:"" help:"Delete expired login sessions."`
	} `cmd:"" help:"Manage login sessions."`
	Config struct {
		SetConnection   system.SetConnectionCmd   `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		ShowConnection  system.ShowConnectionCmd  `cmd:"" help:"Show the stored connection string with the password masked."`
		ClearConnection system.ClearConnectionCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage stored configuration."`
}

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker API server and operator tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	dsn, fromKeyring, err := cli.ResolveDSN(CLI.DB)
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:   CLI.Debug,
		DataDir: cli.DataDir(dsn),
		Server:  kctx.Command() == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := cli.NewStore(dsn, fromKeyring)
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := kctx.Run(cli.NewContext(store, dsn)); err != nil {
		apperrors.Fatal(err)
	}
}
