package energy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrUnresolvedTime is returned when a raw time cannot become an instant
var ErrUnresolvedTime = errors.New("unresolved time")

// TimeKind tags the shape of a RawTime
type TimeKind int

const (
	TimeEmpty     TimeKind = iota // nothing logged
	TimeInstant                   // full timestamp with zone
	TimeLocal                     // date and clock, no zone
	TimeClock                     // HH:MM on the record's day
	TimeDateOnly                  // date with no clock
	TimeInvalid                   // unparseable input
)

// RawTime is a timestamp as logged, which may be partial
type RawTime struct {
	Kind    TimeKind
	Raw     string
	instant time.Time
	date    Date
	hour    int
	minute  int
	second  int
}

// InstantOf wraps a fully known time
func InstantOf(t time.Time) RawTime {
	return RawTime{Kind: TimeInstant, Raw: t.Format(time.RFC3339), instant: t}
}

// ClockOf is an HH:MM time on the record's day
func ClockOf(hour, minute int) RawTime {
	return RawTime{Kind: TimeClock, Raw: fmt.Sprintf("%02d:%02d", hour, minute), hour: hour, minute: minute}
}

// DateOnlyOf is a day with no time of day
func DateOnlyOf(d Date) RawTime {
	return RawTime{Kind: TimeDateOnly, Raw: d.String(), date: d}
}

var (
	localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}
	clockLayouts = []string{"15:04", "15:04:05"}
)

// ParseRawTime classifies a logged time string
func ParseRawTime(s string) RawTime {
	s = strings.TrimSpace(s)
	if s == "" {
		return RawTime{Kind: TimeEmpty}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return RawTime{Kind: TimeInstant, Raw: s, instant: t}
	}
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return RawTime{
				Kind: TimeLocal, Raw: s, date: DateOf(t),
				hour: t.Hour(), minute: t.Minute(), second: t.Second(),
			}
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return RawTime{Kind: TimeClock, Raw: s, hour: t.Hour(), minute: t.Minute(), second: t.Second()}
		}
	}
	if d, err := ParseDate(s); err == nil {
		return RawTime{Kind: TimeDateOnly, Raw: s, date: d}
	}
	return RawTime{Kind: TimeInvalid, Raw: s}
}

// String returns a canonical form that ParseRawTime reads back
func (r RawTime) String() string {
	switch r.Kind {
	case TimeEmpty:
		return ""
	case TimeInstant:
		return r.instant.Format(time.RFC3339)
	case TimeLocal:
		return fmt.Sprintf("%sT%02d:%02d:%02d", r.date, r.hour, r.minute, r.second)
	case TimeClock:
		if r.second != 0 {
			return fmt.Sprintf("%02d:%02d:%02d", r.hour, r.minute, r.second)
		}
		return fmt.Sprintf("%02d:%02d", r.hour, r.minute)
	case TimeDateOnly:
		return r.date.String()
	}
	return r.Raw
}

// Resolve turns the raw value into an instant in loc. Clock values take the given
// day; date-only and empty values take the configured time of the meal slot.
func (r RawTime) Resolve(day Date, loc *time.Location, slot string, pattern []MealSlot) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch r.Kind {
	case TimeInstant:
		return r.instant.In(loc), nil
	case TimeLocal:
		return time.Date(r.date.Year, r.date.Month, r.date.Day, r.hour, r.minute, r.second, 0, loc), nil
	case TimeClock:
		return time.Date(day.Year, day.Month, day.Day, r.hour, r.minute, r.second, 0, loc), nil
	case TimeDateOnly, TimeEmpty:
		d := day
		if r.Kind == TimeDateOnly {
			d = r.date
		}
		if strings.TrimSpace(slot) == "" {
			if r.Kind == TimeEmpty {
				return time.Time{}, fmt.Errorf("%w: no time logged and no meal slot", ErrUnresolvedTime)
			}
			return time.Time{}, fmt.Errorf("%w: date-only value with no meal slot", ErrUnresolvedTime)
		}
		h, m, ok := SlotTime(slot, pattern)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: unknown meal slot %q", ErrUnresolvedTime, slot)
		}
		return time.Date(d.Year, d.Month, d.Day, h, m, 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised time %q", ErrUnresolvedTime, r.Raw)
}

// conventional meal order, used for positional fallback
var conventionalSlots = []string{"breakfast", "lunch", "dinner", "snack"}

var defaultSlotTimes = map[string][2]int{
	"breakfast": {7, 0},
	"lunch":     {12, 0},
	"dinner":    {18, 0},
	"snack":     {15, 0},
}

var slotAliases = map[string]string{
	"morning":         "breakfast",
	"am":              "breakfast",
	"brekkie":         "breakfast",
	"first meal":      "breakfast",
	"midday":          "lunch",
	"noon":            "lunch",
	"luncheon":        "lunch",
	"evening":         "dinner",
	"supper":          "dinner",
	"pm":              "dinner",
	"afternoon":       "snack",
	"snacks":          "snack",
	"afternoon snack": "snack",
}

// SlotTime finds the configured clock time for a meal slot: exact name, then alias,
// then position in the conventional order, then the built-in default.
func SlotTime(slot string, pattern []MealSlot) (hour, minute int, ok bool) {
	name := normalizeSlot(slot)
	if name == "" {
		return 0, 0, false
	}

	for _, s := range pattern {
		if normalizeSlot(s.Name) == name {
			if h, m, ok := parseClock(s.Time); ok {
				return h, m, true
			}
		}
	}

	canonical := name
	if c, found := slotAliases[name]; found {
		canonical = c
	}
	for _, s := range pattern {
		matched := canonical != name && normalizeSlot(s.Name) == canonical
		for _, a := range s.Aliases {
			if a := normalizeSlot(a); a == name || a == canonical {
				matched = true
			}
		}
		if matched {
			if h, m, ok := parseClock(s.Time); ok {
				return h, m, true
			}
		}
	}

	idx := indexOf(conventionalSlots, canonical)
	if idx < 0 {
		return 0, 0, false
	}
	if idx < len(pattern) {
		if h, m, ok := parseClock(pattern[idx].Time); ok {
			return h, m, true
		}
	}
	def := defaultSlotTimes[canonical]
	return def[0], def[1], true
}

func normalizeSlot(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func parseClock(s string) (int, int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// ResolvedFood is a food item placed on the clock
type ResolvedFood struct {
	Food    FoodIntakeEvent
	Slot    string
	At      time.Time
	Profile AbsorptionProfile
}

// ResolvedWorkout is a workout placed on the clock
type ResolvedWorkout struct {
	Workout WorkoutEvent
	Start   time.Time
	End     time.Time
}

// DayEvents is the normalized event set for one day
type DayEvents struct {
	Foods       []ResolvedFood
	Workouts    []ResolvedWorkout
	Unscheduled []UnscheduledEvent
}

// NormalizeDay resolves every logged food and workout of a record, sorted by time
func NormalizeDay(record NutritionRecord, workouts []WorkoutEvent, s Settings) DayEvents {
	s = s.WithDefaults()
	loc := s.Location()
	c := s.classifier()
	var ev DayEvents

	for _, bucket := range record.Meals {
		for _, item := range bucket.Items {
			at, err := item.LoggedAt.Resolve(record.Date, loc, bucket.Name, s.MealPattern)
			if err != nil {
				ev.Unscheduled = append(ev.Unscheduled, UnscheduledEvent{
					Kind: EventMeal, Name: item.Name, Slot: bucket.Name,
					Raw: item.LoggedAt.Raw, Reason: err.Error(),
				})
				continue
			}
			ev.Foods = append(ev.Foods, ResolvedFood{Food: item, Slot: bucket.Name, At: at, Profile: c.ProfileFor(item)})
		}
	}

	for _, w := range workouts {
		start, err := w.Start.Resolve(record.Date, loc, "", nil)
		if err != nil {
			ev.Unscheduled = append(ev.Unscheduled, UnscheduledEvent{
				Kind: EventWorkout, Name: w.Title, Raw: w.Start.Raw, Reason: err.Error(),
			})
			continue
		}
		end := start.Add(time.Duration(w.DurationMinutes() * float64(time.Minute)))
		ev.Workouts = append(ev.Workouts, ResolvedWorkout{Workout: w, Start: start, End: end})
	}

	sort.SliceStable(ev.Foods, func(i, j int) bool { return ev.Foods[i].At.Before(ev.Foods[j].At) })
	sort.SliceStable(ev.Workouts, func(i, j int) bool { return ev.Workouts[i].Start.Before(ev.Workouts[j].Start) })
	return ev
}
