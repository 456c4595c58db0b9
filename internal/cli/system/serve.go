package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/sipstreak/internal/api"
	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/logger"
	"github.com/julianstephens/sipstreak/internal/metrics"
	"github.com/julianstephens/sipstreak/internal/scheduler"
	"github.com/julianstephens/sipstreak/internal/tracker"
)

type ServeCmd struct {
	Addr     string `help:"Listen address. Defaults to api_addr from the config."`
	Remind   bool   `help:"Also run the interval reminder."`
	NoNotify bool   `help:"Skip the desktop tray for reminders."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Settings().APIAddr
	}

	labels := map[string]string{}
	if id, err := tracker.EnsureInstallID(ctx.Store); err == nil {
		labels["install"] = id
	} else {
		logger.Warn("No install id for metrics", "error", err)
	}
	m := metrics.NewManager(metrics.WithConstLabels(labels))
	ctx.Observer = m

	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	sched := ctx.Scheduler
	if sched == nil {
		sched = scheduler.New(scheduler.WithLocation(t.Location()))
	}
	sched.OnMidnight(func(time.Time) {
		if award := t.Refresh(); award != nil {
			logger.Info("Streak awarded at midnight refresh", "count", award.Count)
		}
	})
	if c.Remind {
		n := newNotifier(ctx, c.NoNotify)
		err := sched.StartReminder(ctx.Settings().ReminderMinutes, func(scheduler.Tick) {
			m.ReminderTick(n.Remind())
		})
		if err != nil {
			return err
		}
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Printf("Serving sipstreak API on http://%s (metrics at /metrics)\n", addr)
	return api.New(t, m).ListenAndServe(runCtx, addr)
}
