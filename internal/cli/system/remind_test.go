package system

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/sipstreak/internal/notifier"
	"github.com/julianstephens/sipstreak/internal/scheduler"
)

// syncBuffer is written from cron goroutines
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRemindCmd_StopsAfterCount(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for real reminder ticks")
	}
	ctx, _, _ := setupMemoryContext(t)
	var out syncBuffer
	ctx.Out = &out
	ctx.Scheduler = scheduler.New(scheduler.WithLocation(time.UTC), scheduler.WithIntervalUnit(time.Second))

	done := make(chan error, 1)
	go func() {
		done <- (&RemindCmd{Every: 1, Count: 2, NoNotify: true}).Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("remind failed: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("remind did not stop after two ticks")
	}

	got := out.String()
	if n := strings.Count(got, notifier.ReminderText()); n != 2 {
		t.Errorf("delivered %d reminders, want 2:\n%s", n, got)
	}
	if !strings.Contains(got, "Running: every 1 minute") {
		t.Errorf("missing status line:\n%s", got)
	}
	if !strings.Contains(got, "Reminder stopped.") {
		t.Errorf("missing stop line:\n%s", got)
	}
	if ctx.Scheduler.ReminderRunning() {
		t.Error("reminder still running after exit")
	}
}

func TestRemindCmd_RejectsShortInterval(t *testing.T) {
	ctx, _, _ := setupMemoryContext(t)
	ctx.Config.ReminderMinutes = 0
	ctx.Scheduler = scheduler.New(scheduler.WithLocation(time.UTC))
	if err := (&RemindCmd{Every: -1}).Run(ctx); err == nil {
		t.Fatal("expected an invalid interval error")
	}
}

func TestNewNotifier(t *testing.T) {
	ctx, _, _ := setupMemoryContext(t)
	if n := newNotifier(ctx, false); n.TrayDisabled {
		t.Error("tray disabled with notifications on")
	}
	if n := newNotifier(ctx, true); !n.TrayDisabled {
		t.Error("--no-notify should disable the tray")
	}
	ctx.Config.Notifications = false
	if n := newNotifier(ctx, false); !n.TrayDisabled {
		t.Error("notifications=false should disable the tray")
	}
}
