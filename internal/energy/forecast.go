package energy

import (
	"sort"
	"time"
)

// DayInput is one day of caller-assembled inputs. Workouts must already be
// deduplicated so a completed session replaces its planned entry.
type DayInput struct {
	Record   NutritionRecord
	Workouts []WorkoutEvent
}

// Forecast simulates consecutive days in date order, starting each day from the
// previous day's last point. start seeds the first day; nil uses the baseline.
func Forecast(days []DayInput, s Settings, start *ChainedState, now time.Time) []DayTimeline {
	ordered := make([]DayInput, len(days))
	copy(ordered, days)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Record.Date.Before(ordered[j].Record.Date)
	})

	out := make([]DayTimeline, 0, len(ordered))
	chained := start
	for _, d := range ordered {
		tl := Timeline(d.Record, d.Workouts, s, TimelineOptions{Now: now, Chained: chained})
		out = append(out, tl)
		if last, ok := tl.Last(); ok {
			chained = ChainFrom(last)
		}
	}
	return out
}

// Before reports whether d is an earlier calendar day than o
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}
