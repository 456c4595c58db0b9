package tracker

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/sipstreak/internal/constants"
	"github.com/julianstephens/sipstreak/internal/models"
)

// eventRecord is the persisted event shape: epoch milliseconds plus volume
type eventRecord struct {
	Ts int64 `json:"ts"`
	Ml int   `json:"ml"`
}

// ParseEvents decodes the events key. It accepts {ts, ml} objects and bare
// epoch-ms numbers (legacy entries, logged at legacyCupMl), in any mix.
// Invalid entries are dropped. clean is false when anything was dropped or
// converted, so the caller can write the normalized form back.
func ParseEvents(raw string, present bool, legacyCupMl int) (events []models.IntakeEvent, clean bool) {
	events = []models.IntakeEvent{}
	if !present || strings.TrimSpace(raw) == "" {
		return events, true
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return events, false
	}

	clean = true
	for _, item := range items {
		e, legacy, ok := parseEvent(item, legacyCupMl)
		if !ok {
			clean = false
			continue
		}
		if legacy {
			clean = false
		}
		events = append(events, e)
	}
	return events, clean
}

func parseEvent(item json.RawMessage, legacyCupMl int) (e models.IntakeEvent, legacy bool, ok bool) {
	trimmed := strings.TrimSpace(string(item))
	if trimmed == "" {
		return e, false, false
	}

	if trimmed[0] != '{' {
		ms, ok := parseEpochMs(trimmed)
		if !ok || legacyCupMl <= 0 {
			return e, false, false
		}
		return models.IntakeEvent{Timestamp: time.UnixMilli(ms), VolumeMl: legacyCupMl}, true, true
	}

	var rec struct {
		Ts json.Number `json:"ts"`
		Ml json.Number `json:"ml"`
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return e, false, false
	}
	ms, okTs := parseEpochMs(rec.Ts.String())
	ml, okMl := parsePositiveInt(rec.Ml.String())
	if !okTs || !okMl {
		return e, false, false
	}
	return models.IntakeEvent{Timestamp: time.UnixMilli(ms), VolumeMl: ml}, false, true
}

func parseEpochMs(s string) (int64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parsePositiveInt(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f > math.MaxInt32 {
		return 0, false
	}
	n := int(math.Round(f))
	if n <= 0 {
		return 0, false
	}
	return n, true
}

// EncodeEvents always writes the {ts, ml} form
func EncodeEvents(events []models.IntakeEvent) string {
	recs := make([]eventRecord, len(events))
	for i, e := range events {
		recs[i] = eventRecord{Ts: e.EpochMs(), Ml: e.VolumeMl}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		// unreachable for plain ints
		return "[]"
	}
	return string(data)
}

// unquote accepts both a bare value and a JSON string around it
func unquote(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return raw
}

// ParseGoal returns a positive goal, or def when raw is missing or invalid
func ParseGoal(raw string, present bool, def int) int {
	if !present {
		return def
	}
	n, ok := parsePositiveInt(unquote(raw))
	if !ok {
		return def
	}
	return n
}

// ParseStreak returns a non-negative streak count, 0 when invalid
func ParseStreak(raw string, present bool) int {
	if !present {
		return 0
	}
	f, err := strconv.ParseFloat(unquote(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// ParseAwardedDay returns raw when it is a YYYY-MM-DD day key, "" otherwise
func ParseAwardedDay(raw string, present bool) string {
	if !present {
		return ""
	}
	day := unquote(raw)
	if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return ""
	}
	return day
}

// ParseProfile decodes the profile key field by field; each invalid field
// falls back to its default rather than discarding the whole profile.
func ParseProfile(raw string, present bool) models.Profile {
	p := models.DefaultProfile()
	if !present {
		return p
	}

	var stored struct {
		CupMl  json.Number       `json:"cupMl"`
		Gender string            `json:"gender"`
		Age    json.Number       `json:"age"`
		Outfit map[string]string `json:"outfit"`
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&stored); err != nil {
		return p
	}

	if n, ok := parsePositiveInt(stored.CupMl.String()); ok && models.CupSize(n).Valid() {
		p.CupMl = models.CupSize(n)
	}
	p.Gender = strings.TrimSpace(stored.Gender)
	if n, ok := parsePositiveInt(stored.Age.String()); ok && n <= 150 {
		p.Age = n
	}
	for _, slot := range models.OutfitSlots {
		if item := strings.TrimSpace(stored.Outfit[slot]); item != "" {
			p.Outfit[slot] = item
		}
	}
	return p
}

// EncodeProfile serializes p for the profile key
func EncodeProfile(p models.Profile) string {
	if p.Outfit == nil {
		p.Outfit = map[string]string{}
	}
	data, err := json.Marshal(struct {
		CupMl  int               `json:"cupMl"`
		Gender string            `json:"gender,omitempty"`
		Age    int               `json:"age,omitempty"`
		Outfit map[string]string `json:"outfit"`
	}{int(p.CupMl), p.Gender, p.Age, p.Outfit})
	if err != nil {
		return "{}"
	}
	return string(data)
}
