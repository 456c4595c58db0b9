// Package intake holds the drink event log and the per-day aggregations
// derived from it.
package intake

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/sipstreak/internal/models"
)

// ErrInvalidVolume is returned when a drink is recorded with a non-positive volume
var ErrInvalidVolume = errors.New("volume must be a positive number of milliliters")

// EventLog is an append-only, insertion-ordered list of intake events.
// It is not safe for concurrent use.
type EventLog struct {
	events []models.IntakeEvent
}

// NewEventLog returns a log seeded with a copy of events
func NewEventLog(events []models.IntakeEvent) *EventLog {
	l := &EventLog{events: make([]models.IntakeEvent, len(events))}
	copy(l.events, events)
	return l
}

// Record appends a drink of volumeMl at now
func (l *EventLog) Record(now time.Time, volumeMl int) (models.IntakeEvent, error) {
	if volumeMl <= 0 {
		return models.IntakeEvent{}, fmt.Errorf("%w: got %d", ErrInvalidVolume, volumeMl)
	}
	e := models.IntakeEvent{Timestamp: now, VolumeMl: volumeMl}
	l.events = append(l.events, e)
	return e, nil
}

// UndoLast removes the most recently appended event, whatever day it belongs to.
// It reports false when the log is empty.
func (l *EventLog) UndoLast() (models.IntakeEvent, bool) {
	if len(l.events) == 0 {
		return models.IntakeEvent{}, false
	}
	last := l.events[len(l.events)-1]
	l.events = l.events[:len(l.events)-1]
	return last, true
}

// Prune drops every event older than retentionDays before now and returns how
// many were removed. Events exactly on the cutoff are kept.
func (l *EventLog) Prune(now time.Time, retentionDays int) int {
	cutoff := Cutoff(now, retentionDays)
	kept := l.events[:0]
	for _, e := range l.events {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(l.events) - len(kept)
	// clear the tail so dropped events are not retained by the backing array
	for i := len(kept); i < len(l.events); i++ {
		l.events[i] = models.IntakeEvent{}
	}
	l.events = kept
	return removed
}

// Cutoff returns the oldest instant still inside the retention window
func Cutoff(now time.Time, retentionDays int) time.Time {
	return now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
}

// Events returns a copy of the log in insertion order
func (l *EventLog) Events() []models.IntakeEvent {
	out := make([]models.IntakeEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of events in the log
func (l *EventLog) Len() int {
	return len(l.events)
}
