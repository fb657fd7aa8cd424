package energy

import (
	"sort"
	"time"
)

// MergeGap is the largest gap between two windows that still merges them
const MergeGap = 15 * time.Minute

const transitionDescription = "Transition: combined fueling between sessions"

// MergeWindows reduces raw windows to a non-overlapping list that tiles day.
//
// Incoming DAILY_BASE windows are discarded and regenerated, so the result is
// stable under repeated merging. Windows are clipped to the day, sorted, and merged
// while the next one starts no later than MergeGap after the current end. Merged
// targets are summed and mixed types become TRANSITION. Remaining gaps are filled
// with DAILY_BASE windows carrying base needs prorated over 24 hours.
func MergeWindows(windows []FuelingWindow, day DayRange, base DailyNeeds) []FuelingWindow {
	work := make([]FuelingWindow, 0, len(windows))
	for _, w := range windows {
		if w.Type == WindowDailyBase {
			continue
		}
		if w.Start.Before(day.Start) {
			w.Start = day.Start
		}
		if w.End.After(day.End) {
			w.End = day.End
		}
		if !w.Start.Before(w.End) {
			continue
		}
		work = append(work, cloneWindow(w))
	}
	sort.SliceStable(work, func(i, j int) bool {
		a, b := work[i], work[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if !a.End.Equal(b.End) {
			return a.End.Before(b.End)
		}
		return a.Type < b.Type
	})

	var merged []FuelingWindow
	for _, w := range work {
		if len(merged) == 0 {
			merged = append(merged, w)
			continue
		}
		cur := &merged[len(merged)-1]
		if w.Start.After(cur.End.Add(MergeGap)) {
			merged = append(merged, w)
			continue
		}
		combine(cur, w)
	}

	out := make([]FuelingWindow, 0, 2*len(merged)+1)
	cursor := day.Start
	for _, w := range merged {
		if w.Start.After(cursor) {
			out = append(out, baseWindow(cursor, w.Start, base))
		}
		out = append(out, w)
		cursor = w.End
	}
	if cursor.Before(day.End) {
		out = append(out, baseWindow(cursor, day.End, base))
	}
	return out
}

func combine(cur *FuelingWindow, w FuelingWindow) {
	if w.Type != cur.Type {
		cur.Type = WindowTransition
		cur.Description = transitionDescription
	}
	if w.End.After(cur.End) {
		cur.End = w.End
	}
	cur.TargetCarbs += w.TargetCarbs
	cur.TargetProtein += w.TargetProtein
	cur.TargetFat += w.TargetFat
	cur.TargetFluidMl += w.TargetFluidMl
	cur.TargetSodiumMg += w.TargetSodiumMg
	for _, id := range w.WorkoutIDs {
		cur.WorkoutIDs = appendUnique(cur.WorkoutIDs, id)
	}
	for _, t := range w.WorkoutTitles {
		cur.WorkoutTitles = appendUnique(cur.WorkoutTitles, t)
	}
	cur.Foods = append(cur.Foods, w.Foods...)
}

func baseWindow(start, end time.Time, base DailyNeeds) FuelingWindow {
	share := base.Scale(end.Sub(start).Minutes() / MinutesPerDay)
	return FuelingWindow{
		Type:           WindowDailyBase,
		Start:          start,
		End:            end,
		TargetCarbs:    roundTo(share.Carbs, 1),
		TargetProtein:  roundTo(share.Protein, 1),
		TargetFat:      roundTo(share.Fat, 1),
		TargetFluidMl:  roundTo(share.FluidMl, 0),
		TargetSodiumMg: roundTo(share.SodiumMg, 0),
		Description:    "Daily base: regular meals",
	}
}

func cloneWindow(w FuelingWindow) FuelingWindow {
	w.WorkoutIDs = append([]string(nil), w.WorkoutIDs...)
	w.WorkoutTitles = append([]string(nil), w.WorkoutTitles...)
	w.Foods = append([]FoodIntakeEvent(nil), w.Foods...)
	return w
}

// AssignFoods returns a copy of windows with each resolved food placed in the
// window containing its time. Foods outside every window are dropped.
func AssignFoods(windows []FuelingWindow, foods []ResolvedFood) []FuelingWindow {
	out := make([]FuelingWindow, len(windows))
	for i, w := range windows {
		out[i] = cloneWindow(w)
	}
	for _, f := range foods {
		for i := range out {
			if out[i].Contains(f.At) {
				out[i].Foods = append(out[i].Foods, f.Food)
				break
			}
		}
	}
	return out
}

// WindowProgress compares what was eaten in a window against its targets
type WindowProgress struct {
	Target   DailyNeeds
	Consumed DailyNeeds
}

// Progress sums the window's assigned foods against its targets
func Progress(w FuelingWindow) WindowProgress {
	p := WindowProgress{Target: windowTargets(w)}
	for _, f := range w.Foods {
		p.Consumed.Carbs += f.CarbsGrams
		p.Consumed.Protein += f.ProteinGrams
		p.Consumed.Fat += f.FatGrams
		p.Consumed.FluidMl += f.FluidMl
	}
	return p
}

// CarbRatio is consumed over target carbohydrate; zero targets count as met
func (p WindowProgress) CarbRatio() float64 {
	if p.Target.Carbs <= 0 {
		if p.Consumed.Carbs > 0 {
			return 1
		}
		return 0
	}
	return p.Consumed.Carbs / p.Target.Carbs
}

// DayPlan is a merged fueling plan for one day
type DayPlan struct {
	Date        Date
	Windows     []FuelingWindow
	Notes       []string
	Supplements []Supplement
	Unscheduled []UnscheduledEvent
}

// PlanDay runs FuelingStrategy for every resolved workout, merges the windows over
// the record's day and slots the logged foods into them.
func PlanDay(record NutritionRecord, workouts []WorkoutEvent, s Settings) DayPlan {
	s = s.WithDefaults()
	ev := NormalizeDay(record, workouts, s)
	plan := DayPlan{Date: record.Date, Unscheduled: ev.Unscheduled}

	var raw []FuelingWindow
	for _, w := range ev.Workouts {
		st := FuelingStrategy(s, w)
		raw = append(raw, st.Windows...)
		plan.Notes = append(plan.Notes, st.Notes...)
		plan.Supplements = append(plan.Supplements, st.Supplements...)
	}
	merged := MergeWindows(raw, record.Date.Range(s.Location()), BaseNeeds(s))
	plan.Windows = AssignFoods(merged, ev.Foods)
	return plan
}
