package system

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/logger"
	"github.com/julianstephens/sipstreak/internal/notifier"
	"github.com/julianstephens/sipstreak/internal/scheduler"
)

type RemindCmd struct {
	Every    int  `help:"Minutes between reminders. Defaults to reminder_minutes from the config." default:"0"`
	Count    int  `help:"Stop after this many reminders; 0 runs until interrupted." default:"0"`
	NoNotify bool `help:"Skip the desktop tray and only print to the terminal."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	minutes := c.Every
	if minutes == 0 {
		minutes = ctx.Settings().ReminderMinutes
	}

	sched := ctx.Scheduler
	if sched == nil {
		loc, err := ctx.Location()
		if err != nil {
			return err
		}
		sched = scheduler.New(scheduler.WithLocation(loc))
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := newNotifier(ctx, c.NoNotify)
	done := make(chan struct{})
	var fired atomic.Int32
	err := sched.StartReminder(minutes, func(tick scheduler.Tick) {
		if err := n.Remind(); err != nil {
			logger.Warn("Reminder delivery failed", "seq", tick.Seq, "error", err)
		}
		if c.Count > 0 && int(fired.Add(1)) == c.Count {
			close(done)
		}
	})
	if err != nil {
		return err
	}

	sched.Start()
	defer func() {
		sched.StopReminder()
		<-sched.Stop().Done()
	}()

	ctx.Printf("%s. Press Ctrl+C to stop.\n", sched.ReminderStatus())
	select {
	case <-runCtx.Done():
	case <-done:
	}
	ctx.Println("Reminder stopped.")
	return nil
}

// newNotifier delivers to the tray unless disabled, always falling back to
// the command output.
func newNotifier(ctx *cli.Context, noTray bool) *notifier.Notifier {
	n := notifier.New(true, ctx.Writer())
	n.TrayDisabled = noTray || !ctx.Settings().Notifications
	return n
}
