package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/sipstreak/internal/backup"
	"github.com/julianstephens/sipstreak/internal/config"
	"github.com/julianstephens/sipstreak/internal/logger"
	"github.com/julianstephens/sipstreak/internal/scheduler"
	"github.com/julianstephens/sipstreak/internal/storage"
	"github.com/julianstephens/sipstreak/internal/storage/sqlite"
	"github.com/julianstephens/sipstreak/internal/tracker"
	"github.com/julianstephens/sipstreak/internal/utils"
)

// Context is shared by every command.
type Context struct {
	Store     storage.Provider
	Config    *config.Config
	Scheduler *scheduler.Scheduler

	// Out receives command output; nil means stdout.
	Out io.Writer
	// In answers confirmation prompts; nil means stdin.
	In io.Reader
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
	// Observer receives tracker events, e.g. the metrics manager for `serve`.
	Observer tracker.Observer

	tracker *tracker.Tracker
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Writer is where command output goes.
func (c *Context) Writer() io.Writer {
	return c.out()
}

func (c *Context) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// Confirm prints prompt and reports whether the reply was y or yes.
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)
	reply, err := bufio.NewReader(c.in()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	reply = strings.ToLower(strings.TrimSpace(reply))
	return reply == "y" || reply == "yes", nil
}

// SQLite returns the store as a SQLite store, or an error naming the command
// that needs one.
func (c *Context) SQLite(command string) (*sqlite.Store, error) {
	s, ok := c.Store.(*sqlite.Store)
	if !ok {
		return nil, fmt.Errorf("%s only supports SQLite storage (current: %s)", command, c.Store.GetConfigPath())
	}
	return s, nil
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) cfg() *config.Config {
	if c.Config == nil {
		c.Config = config.New()
	}
	return c.Config
}

// Settings returns the loaded configuration, or defaults.
func (c *Context) Settings() *config.Config {
	return c.cfg()
}

// Location is where day boundaries are computed.
func (c *Context) Location() (*time.Location, error) {
	return utils.LoadLocation(c.cfg().Timezone)
}

// Tracker opens the session over Store on first use.
func (c *Context) Tracker() (*tracker.Tracker, error) {
	if c.tracker != nil {
		return c.tracker, nil
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	cfg := c.cfg()
	t, err := tracker.Open(c.Store, tracker.Options{
		Location:      loc,
		Now:           c.Now,
		RetentionDays: cfg.RetentionDays,
		HistoryDays:   cfg.HistoryDays,
		DefaultGoalMl: cfg.DefaultGoalMl,
		LegacyCupMl:   cfg.LegacyCupMl,
		Observer:      c.Observer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open tracker: %w", err)
	}
	c.tracker = t
	return t, nil
}

// PerformAutomaticBackup backs up a SQLite store and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Migrator is implemented by stores with a versioned schema.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}
