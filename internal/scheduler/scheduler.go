// Package scheduler runs the interval reminder and the local-midnight refresh
// on a single cron instance.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	rcron "github.com/robfig/cron/v3"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/logger"
)

// ErrInvalidInterval is returned for reminder intervals under a minute
var ErrInvalidInterval = errors.New("reminder interval must be at least 1 minute")

// Tick describes one reminder firing
type Tick struct {
	RunID string
	Seq   int
	At    time.Time
}

// MidnightSchedule fires at every local midnight plus a small buffer, so the
// day key read by the handler is already the new day. cron asks it for the
// following boundary after each run.
type MidnightSchedule struct {
	Location *time.Location
	Buffer   time.Duration
}

// Next implements cron.Schedule
func (m MidnightSchedule) Next(t time.Time) time.Time {
	loc := m.Location
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc).Add(m.Buffer)
	// t may sit inside today's buffer window
	if today := next.AddDate(0, 0, -1); today.After(t) {
		return today
	}
	return next
}

// Scheduler owns a cron runner. It is safe for concurrent use.
type Scheduler struct {
	mu   sync.Mutex
	cron *rcron.Cron
	loc  *time.Location
	unit time.Duration

	reminderID      rcron.EntryID
	reminderMinutes int
	reminderRun     string
	reminderSeq     int

	midnightID rcron.EntryID
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLocation sets the zone midnight is computed in
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIntervalUnit scales reminder intervals; tests use time.Second
func WithIntervalUnit(unit time.Duration) Option {
	return func(s *Scheduler) {
		if unit > 0 {
			s.unit = unit
		}
	}
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		loc:  time.Local,
		unit: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = rcron.New(
		rcron.WithLocation(s.loc),
		rcron.WithLogger(cronLogger{}),
		rcron.WithChain(rcron.Recover(cronLogger{})),
	)
	return s
}

// Start begins running registered jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the runner and returns a context that is done once running jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// StartReminder fires fn every minutes, replacing any running reminder.
// There is no drift correction or backoff.
func (s *Scheduler) StartReminder(minutes int, fn func(Tick)) error {
	if minutes < constants.MinReminderMinutes {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, minutes)
	}
	if fn == nil {
		return errors.New("reminder callback is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopReminderLocked()

	runID := uuid.NewString()
	s.reminderRun = runID
	s.reminderSeq = 0
	s.reminderMinutes = minutes
	s.reminderID = s.cron.Schedule(rcron.Every(time.Duration(minutes)*s.unit), rcron.FuncJob(func() {
		s.mu.Lock()
		if s.reminderRun != runID {
			s.mu.Unlock()
			return
		}
		s.reminderSeq++
		tick := Tick{RunID: runID, Seq: s.reminderSeq, At: time.Now().In(s.loc)}
		s.mu.Unlock()

		logger.Debug("Reminder fired", "run", runID, "seq", tick.Seq)
		fn(tick)
	}))

	logger.Info("Reminder started", "every_minutes", minutes, "run", runID)
	return nil
}

// StopReminder cancels the running reminder and reports whether one was running
func (s *Scheduler) StopReminder() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopReminderLocked()
}

func (s *Scheduler) stopReminderLocked() bool {
	if s.reminderRun == "" {
		return false
	}
	s.cron.Remove(s.reminderID)
	logger.Info("Reminder stopped", "run", s.reminderRun)
	s.reminderID = 0
	s.reminderRun = ""
	s.reminderMinutes = 0
	return true
}

// ReminderRunning reports whether a reminder is active
func (s *Scheduler) ReminderRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminderRun != ""
}

// ReminderStatus renders the reminder state for display
func (s *Scheduler) ReminderStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FormatStatus(s.reminderMinutes, s.reminderRun != "")
}

// FormatStatus renders "Running: every N minute(s)" or "Not running"
func FormatStatus(minutes int, running bool) string {
	if !running {
		return "Not running"
	}
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Running: every %d %s", minutes, unit)
}

// OnMidnight registers fn to run after every local midnight. Calling it
// again replaces the previous handler.
func (s *Scheduler) OnMidnight(fn func(time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.midnightID != 0 {
		s.cron.Remove(s.midnightID)
	}
	sched := MidnightSchedule{Location: s.loc, Buffer: constants.MidnightBuffer}
	s.midnightID = s.cron.Schedule(sched, rcron.FuncJob(func() {
		now := time.Now().In(s.loc)
		logger.Debug("Midnight refresh", "at", now.Format(time.RFC3339))
		fn(now)
	}))
}

// NextMidnight returns when the midnight handler fires next, zero if none is registered
func (s *Scheduler) NextMidnight() time.Time {
	s.mu.Lock()
	id := s.midnightID
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// cronLogger routes cron's internal logging through the application logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
