package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/sipstreak/internal/backup"
	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/tracker"
)

type DoctorCmd struct{}

// errWarn marks a check result that should not fail the run.
type errWarn struct{ error }

func warn(format string, args ...interface{}) error {
	return errWarn{fmt.Errorf(format, args...)}
}

var errSkip = errors.New("skipped")

type check struct {
	name  string
	needs bool // requires a reachable database
	run   func(*cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{"Database reachable", false, checkDBReachable},
		{"Schema version", true, checkSchemaVersion},
		{"Migrations complete", true, checkMigrationsComplete},
		{"Stored values", true, checkStoredValues},
		{"Backups present", true, checkBackupsPresent},
		{"Clock/timezone", false, checkClockTimezone},
	}

	hasError := false
	dbReachable := true
	for _, c := range checks {
		if c.needs && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		var w errWarn
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkip):
			ctx.Printf("⊘ %s: SKIPPED (not applicable to %s)\n", c.name, ctx.Store.GetConfigPath())
		case errors.As(err, &w):
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", w.error)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, _, err := ctx.Store.Get(constants.KeyGoal); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func schemaVersions(ctx *cli.Context) (current, latest int, err error) {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return 0, 0, errSkip
	}
	return m.SchemaVersion()
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := schemaVersions(ctx)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := schemaVersions(ctx)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'sipstreak migrate')", current, latest)
	}
	return nil
}

// checkStoredValues decodes the raw keys the way a session would and warns
// about anything that would silently fall back to a default.
func checkStoredValues(ctx *cli.Context) error {
	get := func(key string) (string, bool, error) {
		v, ok, err := ctx.Store.Get(key)
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s: %w", key, err)
		}
		return v, ok, nil
	}

	raw, ok, err := get(constants.KeyEvents)
	if err != nil {
		return err
	}
	legacy := constants.LegacyCupMl
	if ctx.Config != nil {
		legacy = ctx.Config.LegacyCupMl
	}
	if _, clean := tracker.ParseEvents(raw, ok, legacy); !clean {
		return warn("%s holds legacy or invalid entries; they are normalized on the next run", constants.KeyEvents)
	}

	raw, ok, err = get(constants.KeyGoal)
	if err != nil {
		return err
	}
	if ok && tracker.ParseGoal(raw, ok, 0) == 0 {
		return warn("%s is %q; the default goal is used instead", constants.KeyGoal, raw)
	}

	raw, ok, err = get(constants.KeyAwardedDay)
	if err != nil {
		return err
	}
	if ok && tracker.ParseAwardedDay(raw, ok) == "" && raw != "" && raw != `""` {
		return warn("%s is %q; it is treated as never awarded", constants.KeyAwardedDay, raw)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	s, err := ctx.SQLite("backups")
	if err != nil {
		return errSkip
	}
	backups, err := backup.NewManager(s.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return warn("no backups found - consider creating one with 'sipstreak backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := ctx.Location(); err != nil {
		return err
	}
	return nil
}
