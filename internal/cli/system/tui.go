package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/scheduler"
	"github.com/julianstephens/sipstreak/internal/tui"
)

type TuiCmd struct {
	NoNotify bool `help:"Skip the desktop tray for reminders."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	sched := ctx.Scheduler
	if sched == nil {
		sched = scheduler.New(scheduler.WithLocation(t.Location()))
	}
	// reminder output would draw over the TUI, so only the tray is used
	n := newNotifier(ctx, c.NoNotify)
	n.Fallback = nil

	p := tea.NewProgram(tui.NewModel(t, sched, n, ctx.Settings().ReminderMinutes), tea.WithAltScreen())

	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
