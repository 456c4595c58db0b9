// Package tracker is the intake session: it owns the event log, goal, streak
// and profile, keeps them in step with a storage.Provider and derives the
// day's progress on every read.
package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/intake"
	"github.com/julianstephens/sipstreak/internal/logger"
	"github.com/julianstephens/sipstreak/internal/models"
	"github.com/julianstephens/sipstreak/internal/progress"
	"github.com/julianstephens/sipstreak/internal/storage"
	"github.com/julianstephens/sipstreak/internal/streak"
)

var (
	ErrInvalidGoal = errors.New("goal must be a positive number of milliliters")
	ErrInvalidDay  = errors.New("day must be formatted as YYYY-MM-DD")
)

// Observer receives session events. The metrics package implements it.
type Observer interface {
	SipRecorded(volumeMl int)
	SipUndone(volumeMl int)
	StreakAwarded(count int)
	EventsPruned(n int)
	ProgressChanged(todayMl int, ratio float64, streak int)
}

type nopObserver struct{}

func (nopObserver) SipRecorded(int)                   {}
func (nopObserver) SipUndone(int)                     {}
func (nopObserver) StreakAwarded(int)                 {}
func (nopObserver) EventsPruned(int)                  {}
func (nopObserver) ProgressChanged(int, float64, int) {}

// Options configures a Tracker. Zero values take the application defaults.
type Options struct {
	Location      *time.Location
	Now           func() time.Time
	RetentionDays int
	HistoryDays   int
	DefaultGoalMl int
	LegacyCupMl   int
	Observer      Observer
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.RetentionDays <= 0 {
		o.RetentionDays = constants.RetentionDays
	}
	if o.HistoryDays <= 0 {
		o.HistoryDays = constants.HistoryDays
	}
	if o.DefaultGoalMl <= 0 {
		o.DefaultGoalMl = constants.DefaultGoalMl
	}
	if o.LegacyCupMl <= 0 {
		o.LegacyCupMl = constants.LegacyCupMl
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	return o
}

// Snapshot is today's derived progress
type Snapshot struct {
	Day          string        `json:"day"`
	Count        int           `json:"count"`
	TotalMl      int           `json:"totalMl"`
	GoalMl       int           `json:"goalMl"`
	RemainingMl  int           `json:"remainingMl"`
	Ratio        float64       `json:"ratio"`
	Color        progress.RGB  `json:"color"`
	Hint         progress.Hint `json:"hint"`
	CupMl        int           `json:"cupMl"`
	Streak       int           `json:"streak"`
	AwardedToday bool          `json:"awardedToday"`
}

// Award is produced the one time a day's goal is first reached
type Award struct {
	Count int    `json:"count"`
	Day   string `json:"day"`
}

// Message is the toast text for the award
func (a Award) Message() string {
	return streak.Message(a.Count)
}

// MarshalJSON adds the toast text to the encoded award
func (a Award) MarshalJSON() ([]byte, error) {
	type award Award
	return json.Marshal(struct {
		award
		Message string `json:"message"`
	}{award: award(a), Message: a.Message()})
}

// Result is the outcome of a mutation
type Result struct {
	Event    models.IntakeEvent `json:"event"`
	Snapshot Snapshot           `json:"snapshot"`
	Award    *Award             `json:"award,omitempty"`
}

// Tracker is safe for concurrent use; every method holds its lock.
type Tracker struct {
	mu      sync.Mutex
	store   storage.Provider
	opts    Options
	agg     intake.Aggregator
	events  *intake.EventLog
	goalMl  int
	streak  streak.State
	profile models.Profile

	// pending is an award reached by a refresh that had no caller to report it
	pending *Award
}

// Open rehydrates a session from store. Unreadable values fall back to
// defaults, and stale or legacy events are rewritten in the current form.
func Open(store storage.Provider, opts Options) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("tracker: nil store")
	}
	opts = opts.withDefaults()

	t := &Tracker{
		store: store,
		opts:  opts,
		agg:   intake.NewAggregator(opts.Location),
	}

	raw, ok := t.read(constants.KeyEvents)
	events, clean := ParseEvents(raw, ok, opts.LegacyCupMl)
	t.events = intake.NewEventLog(events)

	raw, ok = t.read(constants.KeyGoal)
	t.goalMl = ParseGoal(raw, ok, opts.DefaultGoalMl)

	raw, ok = t.read(constants.KeyStreak)
	t.streak.Count = ParseStreak(raw, ok)
	raw, ok = t.read(constants.KeyAwardedDay)
	t.streak.AwardedDay = ParseAwardedDay(raw, ok)

	raw, ok = t.read(constants.KeyProfile)
	t.profile = ParseProfile(raw, ok)

	if !clean {
		logger.Info("Normalizing stored events", "count", len(events))
		t.persistEvents()
	}
	t.hold(t.refreshLocked())

	logger.Debug("Tracker opened",
		"store", store.GetConfigPath(),
		"events", t.events.Len(),
		"goal_ml", t.goalMl,
		"streak", t.streak.Count,
		"location", opts.Location.String(),
	)
	return t, nil
}

// read returns ("", false) on a store error so the caller falls back to defaults
func (t *Tracker) read(key string) (string, bool) {
	v, ok, err := t.store.Get(key)
	if err != nil {
		logger.Warn("Failed to read stored value, using default", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

// write logs and swallows store errors; the in-memory session stays authoritative
func (t *Tracker) write(key, value string) {
	if err := t.store.Set(key, value); err != nil {
		logger.Warn("Failed to persist value", "key", key, "error", err)
	}
}

func (t *Tracker) persistEvents() {
	t.write(constants.KeyEvents, EncodeEvents(t.events.Events()))
}

func (t *Tracker) persistStreak() {
	t.write(constants.KeyStreak, strconv.Itoa(t.streak.Count))
	t.write(constants.KeyAwardedDay, t.streak.AwardedDay)
}

// sync prunes, persists events when dirty, then runs the streak check
func (t *Tracker) sync(now time.Time, dirty bool) *Award {
	if n := t.events.Prune(now, t.opts.RetentionDays); n > 0 {
		logger.Debug("Pruned events outside retention window", "removed", n)
		t.opts.Observer.EventsPruned(n)
		dirty = true
	}
	if dirty {
		t.persistEvents()
	}
	award := t.checkStreak(now)
	snap := t.snapshotAt(now)
	t.opts.Observer.ProgressChanged(snap.TotalMl, snap.Ratio, snap.Streak)
	return award
}

func (t *Tracker) checkStreak(now time.Time) *Award {
	today := t.agg.DayKey(now)
	totals := t.agg.TotalsForDay(t.events.Events(), today)
	next, awarded := streak.CheckAndAward(totals.TotalMl, t.goalMl, today, t.streak)
	if !awarded {
		return nil
	}
	t.streak = next
	t.persistStreak()
	logger.Info("Streak awarded", "day", today, "streak", next.Count)
	t.opts.Observer.StreakAwarded(next.Count)
	return &Award{Count: next.Count, Day: today}
}

func (t *Tracker) refreshLocked() *Award {
	return t.sync(t.opts.Now(), false)
}

func (t *Tracker) hold(award *Award) {
	if award != nil {
		t.pending = award
	}
}

// deliver returns award, or the held one when award is nil
func (t *Tracker) deliver(award *Award) *Award {
	if award == nil {
		award = t.pending
	}
	t.pending = nil
	return award
}

// Drink logs one cup of the profile's size
func (t *Tracker) Drink() (Result, error) {
	t.mu.Lock()
	cup := int(t.profile.CupMl)
	t.mu.Unlock()
	return t.DrinkMl(cup)
}

// DrinkMl logs volumeMl at the current time
func (t *Tracker) DrinkMl(volumeMl int) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.opts.Now()
	e, err := t.events.Record(now, volumeMl)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("Sip recorded", "ml", volumeMl, "at", now.Format(time.RFC3339))
	t.opts.Observer.SipRecorded(volumeMl)

	award := t.deliver(t.sync(now, true))
	return Result{Event: e, Snapshot: t.snapshotAt(now), Award: award}, nil
}

// Undo removes the most recently logged sip. ok is false when there was
// nothing to undo. A streak point already awarded is kept.
func (t *Tracker) Undo() (res Result, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.opts.Now()
	e, ok := t.events.UndoLast()
	if !ok {
		logger.Debug("Undo on empty log")
		return Result{Snapshot: t.snapshotAt(now)}, false
	}
	logger.Debug("Sip undone", "ml", e.VolumeMl, "at", e.Timestamp.Format(time.RFC3339))
	t.opts.Observer.SipUndone(e.VolumeMl)

	award := t.deliver(t.sync(now, true))
	return Result{Event: e, Snapshot: t.snapshotAt(now), Award: award}, true
}

// SetGoal changes the daily goal; lowering it below today's total can award
func (t *Tracker) SetGoal(goalMl int) (Result, error) {
	if goalMl <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidGoal, goalMl)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.goalMl = goalMl
	t.write(constants.KeyGoal, strconv.Itoa(goalMl))
	logger.Info("Goal updated", "goal_ml", goalMl)

	now := t.opts.Now()
	award := t.deliver(t.sync(now, false))
	return Result{Snapshot: t.snapshotAt(now), Award: award}, nil
}

// SetProfile validates and stores p
func (t *Tracker) SetProfile(p models.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Outfit == nil {
		p.Outfit = map[string]string{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.profile = p
	t.write(constants.KeyProfile, EncodeProfile(p))
	logger.Info("Profile updated", "cup_ml", int(p.CupMl))
	return nil
}

// Profile returns a copy of the current profile
func (t *Tracker) Profile() models.Profile {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.profile
	p.Outfit = make(map[string]string, len(t.profile.Outfit))
	for k, v := range t.profile.Outfit {
		p.Outfit[k] = v
	}
	return p
}

// GoalMl returns the current daily goal
func (t *Tracker) GoalMl() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.goalMl
}

// Refresh re-derives today's state; it is what the midnight timer calls.
// It returns the award when the refresh reached the goal, or one reached
// earlier by a call that could not report it.
func (t *Tracker) Refresh() *Award {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deliver(t.refreshLocked())
}

// Status refreshes and returns today's snapshot
func (t *Tracker) Status() (Snapshot, *Award) {
	t.mu.Lock()
	defer t.mu.Unlock()
	award := t.deliver(t.refreshLocked())
	return t.snapshotAt(t.opts.Now()), award
}

// Snapshot returns today's progress without touching storage
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotAt(t.opts.Now())
}

func (t *Tracker) snapshotAt(now time.Time) Snapshot {
	today := t.agg.DayKey(now)
	totals := t.agg.TotalsForDay(t.events.Events(), today)
	ratio := progress.Ratio(totals.TotalMl, t.goalMl)
	remaining := t.goalMl - totals.TotalMl
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		Day:          today,
		Count:        totals.Count,
		TotalMl:      totals.TotalMl,
		GoalMl:       t.goalMl,
		RemainingMl:  remaining,
		Ratio:        ratio,
		Color:        progress.ColorFor(ratio),
		Hint:         progress.HintFor(ratio, int(t.profile.CupMl)),
		CupMl:        int(t.profile.CupMl),
		Streak:       t.streak.Count,
		AwardedToday: t.streak.AwardedDay == today,
	}
}

// History returns logged days inside the retention window, newest first
func (t *Tracker) History() []intake.DayHistory {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hold(t.refreshLocked())
	return t.agg.History(t.events.Events())
}

// Hourly returns the 24 hourly totals for day
func (t *Tracker) Hourly(day string) ([constants.HoursPerDay]int, error) {
	if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return [constants.HoursPerDay]int{}, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hold(t.refreshLocked())
	return t.agg.HourlyTotalsForDay(t.events.Events(), day), nil
}

// DayKeys lists the selectable chart days, today first
func (t *Tracker) DayKeys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.agg.AvailableDayKeys(t.opts.Now(), t.opts.HistoryDays)
}

// Today returns the current day key
func (t *Tracker) Today() string {
	return t.agg.DayKey(t.opts.Now())
}

// NextMidnight returns the next local day boundary after now
func (t *Tracker) NextMidnight(now time.Time) time.Time {
	return t.agg.NextMidnight(now)
}

// Location returns the location day keys are computed in
func (t *Tracker) Location() *time.Location {
	return t.agg.Location()
}

// Events returns every retained event in insertion order
func (t *Tracker) Events() []models.IntakeEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.events.Events()
}

// Reset clears events and streak state. Goal and profile are kept.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	for _, key := range constants.StateKeys {
		if err := t.store.Delete(key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	t.events = intake.NewEventLog(nil)
	t.streak = streak.State{}
	t.pending = nil
	logger.Info("Tracker reset")

	snap := t.snapshotAt(t.opts.Now())
	t.opts.Observer.ProgressChanged(snap.TotalMl, snap.Ratio, snap.Streak)
	return firstErr
}

// EnsureInstallID returns the stored installation id, generating one on first use
func EnsureInstallID(store storage.Provider) (string, error) {
	if v, ok, err := store.Get(constants.KeyInstallID); err != nil {
		return "", err
	} else if ok {
		if id, err := uuid.Parse(v); err == nil {
			return id.String(), nil
		}
	}
	id := uuid.NewString()
	if err := store.Set(constants.KeyInstallID, id); err != nil {
		return "", err
	}
	return id, nil
}
