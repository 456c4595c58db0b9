package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/storage"
	"github.com/julianstephens/sipstreak/internal/tracker"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing SQLite database before initialization."`
	Source string `help:"Database path, JSON export or connection string to import data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	id, err := tracker.EnsureInstallID(ctx.Store)
	if err != nil {
		return fmt.Errorf("failed to create install id: %w", err)
	}
	ctx.Printf("Initialized sipstreak storage at: %s\n", ctx.Store.GetConfigPath())
	ctx.Printf("Install id: %s\n", id)

	if c.Source == "" {
		return nil
	}
	ctx.Printf("Importing data from: %s\n", c.Source)
	if err := c.importData(ctx); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	if _, err := ctx.SQLite("init --force"); err != nil {
		return err
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, errDB := filepath.Abs(dbPath)
		absSrc, errSrc := filepath.Abs(c.Source)
		if errDB == nil && errSrc == nil && absDB == absSrc {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) importData(ctx *cli.Context) error {
	src, err := cli.OpenStore(c.Source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source: %w", err)
	}
	defer src.Close()

	n, err := storage.CopyAll(src, ctx.Store)
	if err != nil {
		return err
	}
	ctx.Printf("  Copied %d keys\n", n)

	// opening the tracker rewrites legacy events and prunes stale ones
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}
	ctx.Printf("  %d sips inside the retention window, goal %dml\n", len(t.Events()), t.GoalMl())
	ctx.Println("Import completed successfully!")
	return nil
}
