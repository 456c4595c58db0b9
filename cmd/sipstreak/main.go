package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/cli/backups"
	"github.com/julianstephens/sipstreak/internal/cli/profile"
	"github.com/julianstephens/sipstreak/internal/cli/sips"
	"github.com/julianstephens/sipstreak/internal/cli/system"
	"github.com/julianstephens/sipstreak/internal/config"
	"github.com/julianstephens/sipstreak/internal/constants"
	apperrors "github.com/julianstephens/sipstreak/internal/errors"
	"github.com/julianstephens/sipstreak/internal/logger"
	"github.com/julianstephens/sipstreak/internal/scheduler"
	"github.com/julianstephens/sipstreak/internal/storage"
	"github.com/julianstephens/sipstreak/internal/utils"
)

var CLI struct {
	Version    kong.VersionFlag
	DB         string `name:"db" help:"SQLite file, *.json file, PostgreSQL URL or keyring:<account>. Overrides db from the config. PostgreSQL passwords must NOT be embedded; use the keyring, PGPASSWORD or .pgpass." type:"string"`
	ConfigFile string `help:"YAML config file. Defaults to $SIPSTREAK_CONFIG." type:"path"`
	Timezone   string `help:"IANA timezone day boundaries are computed in. Overrides timezone from the config."`
	Debug      bool   `help:"Log debug output to stderr."`
	Ephemeral  bool   `help:"Keep everything in memory; nothing is saved."`

	Init     system.InitCmd     `cmd:"" help:"Initialize sipstreak storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Drink    sips.DrinkCmd      `cmd:"" help:"Log a drink (one cup unless --ml is given)."`
	Undo     sips.UndoCmd       `cmd:"" help:"Remove the most recent drink."`
	Status   sips.StatusCmd     `cmd:"" help:"Show today's progress and streak."`
	History  sips.HistoryCmd    `cmd:"" help:"Show logged drinks per day."`
	Chart    sips.ChartCmd      `cmd:"" help:"Show hourly totals for a day."`
	Goal     sips.GoalCmd       `cmd:"" help:"Show or set the daily goal."`
	Profile  profile.ProfileCmd `cmd:"" help:"Show or edit the profile."`
	Remind   system.RemindCmd   `cmd:"" help:"Run the interval reminder in the foreground."`
	Reset    sips.ResetCmd      `cmd:"" help:"Clear every drink and the streak."`
	Backup   backups.BackupCmd  `cmd:"" help:"Manage database backups."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Serve    system.ServeCmd    `cmd:"" help:"Serve the HTTP API and Prometheus metrics."`
	DebugCmd system.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

// init creates the store itself; keyring never touches it
var (
	skipLoad  = map[string]bool{"init": true, "keyring": true}
	skipStore = map[string]bool{"keyring": true}
)

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Water intake tracker with daily goals and streaks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(context.Background(), config.Options{File: CLI.ConfigFile})
	if err != nil {
		apperrors.Fatal(err)
	}
	switch {
	case CLI.Ephemeral:
		cfg.DB = cli.MemoryPath
	case CLI.DB != "":
		cfg.DB = CLI.DB
	}
	if CLI.Timezone != "" {
		if !utils.ValidateTimezone(CLI.Timezone) {
			apperrors.Fatalf("invalid timezone %q", CLI.Timezone)
		}
		cfg.Timezone = CLI.Timezone
	}

	configDir, err := utils.ConfigDir(cfg.DB)
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir, Level: cfg.LogLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	command := strings.Fields(ctx.Command())
	name := ""
	if len(command) > 0 {
		name = command[0]
	}

	var store storage.Provider = storage.NewMemoryStore()
	if !skipStore[name] {
		store, err = cli.OpenStore(cfg.DB)
		if err != nil {
			apperrors.Fatal(err)
		}
	}

	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		apperrors.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:     store,
		Config:    cfg,
		Scheduler: scheduler.New(scheduler.WithLocation(loc)),
	}

	if !skipLoad[name] {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if cerr := store.Close(); cerr != nil {
		logger.Warn("Failed to close store", "error", cerr)
	}
	apperrors.Fatal(err)
}
