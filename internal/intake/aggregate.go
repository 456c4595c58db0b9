package intake

import (
	"sort"
	"time"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/models"
)

// DayTotals is the number of drinks and the volume logged on one day
type DayTotals struct {
	Count   int `json:"count"`
	TotalMl int `json:"totalMl"`
}

// HistoryEntry is a single drink inside a history day
type HistoryEntry struct {
	Time     time.Time `json:"time"`
	Clock    string    `json:"clock"` // HH:MM:SS, local
	VolumeMl int       `json:"volumeMl"`
}

// DayHistory groups the drinks of one day
type DayHistory struct {
	Day     string         `json:"day"`
	TotalMl int            `json:"totalMl"`
	Entries []HistoryEntry `json:"entries"`
}

// Aggregator derives day-keyed totals from events using local wall-clock
// fields of its location.
type Aggregator struct {
	loc *time.Location
}

// NewAggregator returns an Aggregator for loc; nil means time.Local
func NewAggregator(loc *time.Location) Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return Aggregator{loc: loc}
}

// Location returns the location day keys are computed in
func (a Aggregator) Location() *time.Location {
	if a.loc == nil {
		return time.Local
	}
	return a.loc
}

// DayKey maps an instant to its local calendar day (YYYY-MM-DD)
func (a Aggregator) DayKey(t time.Time) string {
	return t.In(a.Location()).Format(constants.DateFormat)
}

// TotalsForDay counts the events on dayKey and sums their volume
func (a Aggregator) TotalsForDay(events []models.IntakeEvent, dayKey string) DayTotals {
	var totals DayTotals
	for _, e := range events {
		if a.DayKey(e.Timestamp) == dayKey {
			totals.Count++
			totals.TotalMl += e.VolumeMl
		}
	}
	return totals
}

// HourlyTotalsForDay sums the volume logged on dayKey into 24 local-hour buckets
func (a Aggregator) HourlyTotalsForDay(events []models.IntakeEvent, dayKey string) [constants.HoursPerDay]int {
	var buckets [constants.HoursPerDay]int
	for _, e := range events {
		local := e.Timestamp.In(a.Location())
		if local.Format(constants.DateFormat) != dayKey {
			continue
		}
		buckets[local.Hour()] += e.VolumeMl
	}
	return buckets
}

// AvailableDayKeys returns today, today-1, ... today-(windowDays-1) regardless
// of whether any events exist on those days.
func (a Aggregator) AvailableDayKeys(now time.Time, windowDays int) []string {
	if windowDays <= 0 {
		return []string{}
	}
	local := now.In(a.Location())
	// anchor at noon so DST transitions never skip or repeat a calendar day
	anchor := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, a.Location())
	keys := make([]string, windowDays)
	for i := 0; i < windowDays; i++ {
		keys[i] = anchor.AddDate(0, 0, -i).Format(constants.DateFormat)
	}
	return keys
}

// History groups events by day, newest day first, entries oldest first
func (a Aggregator) History(events []models.IntakeEvent) []DayHistory {
	byDay := make(map[string]*DayHistory)
	for _, e := range events {
		local := e.Timestamp.In(a.Location())
		key := local.Format(constants.DateFormat)
		day, ok := byDay[key]
		if !ok {
			day = &DayHistory{Day: key}
			byDay[key] = day
		}
		day.TotalMl += e.VolumeMl
		day.Entries = append(day.Entries, HistoryEntry{
			Time:     local,
			Clock:    local.Format(constants.ClockFormat),
			VolumeMl: e.VolumeMl,
		})
	}

	days := make([]DayHistory, 0, len(byDay))
	for _, day := range byDay {
		sort.SliceStable(day.Entries, func(i, j int) bool {
			return day.Entries[i].Time.Before(day.Entries[j].Time)
		})
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Day > days[j].Day
	})
	return days
}

// NextMidnight returns the start of the local day after now
func (a Aggregator) NextMidnight(now time.Time) time.Time {
	local := now.In(a.Location())
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, a.Location())
}

// ChartMax is the y-axis ceiling for an hourly chart: the largest bucket, but
// never below floorMl so an empty day still has a scale.
func ChartMax(hours [constants.HoursPerDay]int, floorMl int) int {
	max := floorMl
	for _, ml := range hours {
		if ml > max {
			max = ml
		}
	}
	return max
}
