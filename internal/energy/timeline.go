package energy

import (
	"math"
	"strings"
	"time"
)

const (
	fastReleaseMinutes = 30.0
	sigmoidSteepness   = 0.12
	sigmoidMidpoint    = 45.0

	mealIcon    = "🍽"
	workoutIcon = "🏃"
)

// TimelineOptions are the optional inputs of Timeline
type TimelineOptions struct {
	Now     time.Time     // points after Now are flagged IsFuture; zero flags none
	Chained *ChainedState // previous day's ending state; nil starts at the midnight baseline
}

// DayTimeline is the simulated energy wave of one local day
type DayTimeline struct {
	Date        Date
	Points      []EnergyPoint
	Unscheduled []UnscheduledEvent
}

// Last returns the day's ending point
func (d DayTimeline) Last() (EnergyPoint, bool) {
	if len(d.Points) == 0 {
		return EnergyPoint{}, false
	}
	return d.Points[len(d.Points)-1], true
}

// Nearest returns the point closest to t
func (d DayTimeline) Nearest(t time.Time) (EnergyPoint, bool) {
	if len(d.Points) == 0 {
		return EnergyPoint{}, false
	}
	best := d.Points[0]
	bestDiff := absDuration(t.Sub(best.Timestamp))
	for _, p := range d.Points[1:] {
		if diff := absDuration(t.Sub(p.Timestamp)); diff < bestDiff {
			best, bestDiff = p, diff
		}
	}
	return best, true
}

// Levels returns the tank percentages in point order
func (d DayTimeline) Levels() []float64 {
	out := make([]float64, len(d.Points))
	for i, p := range d.Points {
		out[i] = p.LevelPercent
	}
	return out
}

// Timeline steps through the record's local day in 15 minute intervals.
//
// Point 0 is the state at local midnight and point i is the state after the
// interval ending at its timestamp, so a 24 hour day yields 97 points. Each interval
// applies resting drain, prorated workout drain and meal inflow (capped at
// MaxInflowPerStep grams, excess dropped), then clamps the store to capacity.
func Timeline(record NutritionRecord, workouts []WorkoutEvent, s Settings, opts TimelineOptions) DayTimeline {
	s = s.WithDefaults()
	loc := s.Location()
	if record.Date.IsZero() {
		record.Date = DateOf(opts.Now.In(loc))
	}
	ev := NormalizeDay(record, workouts, s)
	day := record.Date.Range(loc)
	capacity := s.CapacityGrams()

	startPct := MidnightBaselinePercent
	var fluid float64
	if opts.Chained != nil {
		startPct = clamp(opts.Chained.Percentage, MinTankPercent, MaxTankPercent)
		fluid = math.Max(0, opts.Chained.FluidDeficit)
	}
	grams := capacity * startPct / 100
	startGrams := grams
	var kcal float64

	step := StepMinutes * time.Minute
	points := make([]EnergyPoint, 0, int(day.End.Sub(day.Start)/step)+1)
	points = append(points, newPoint(day.Start, grams, startGrams, capacity, kcal, fluid, opts.Now, ev, loc))

	for a := day.Start; a.Before(day.End); a = a.Add(step) {
		b := a.Add(step)
		if b.After(day.End) {
			b = day.End
		}
		minutes := b.Sub(a).Minutes()

		drain := s.RestingCarbGramsPerMinute() * minutes
		kcal -= s.RestingKcalPerMinute() * minutes

		for _, rw := range ev.Workouts {
			overlap := overlapMinutes(a, b, rw.Start, rw.End)
			if overlap <= 0 {
				continue
			}
			gpm := GramsPerMinute(rw.Workout.Intensity)
			drain += gpm * WorkoutDrainMultiplier * overlap
			kcal -= workoutKcalPerMinute(rw.Workout.Intensity) * overlap
			fluid += s.SweatRateLPerHour * 1000 * overlap / 60
		}

		var inflow float64
		for _, f := range ev.Foods {
			if !f.At.Before(b) {
				continue
			}
			frac := releasedFraction(f, b) - releasedFraction(f, a)
			inflow += f.Food.CarbsGrams * frac
			kcal += foodKcal(f.Food) * frac
			if !f.At.Before(a) && f.Food.FluidMl > 0 {
				fluid -= f.Food.FluidMl
			}
		}
		inflow = math.Min(inflow, MaxInflowPerStep)

		grams = clamp(grams-drain+inflow, 0, capacity)
		fluid = math.Max(0, fluid)
		points = append(points, newPoint(b, grams, startGrams, capacity, kcal, fluid, opts.Now, ev, loc))
	}
	points[len(points)-1].TimeLabel = "24:00"

	return DayTimeline{Date: record.Date, Points: points, Unscheduled: ev.Unscheduled}
}

func newPoint(t time.Time, grams, startGrams, capacity, kcal, fluid float64, now time.Time, ev DayEvents, loc *time.Location) EnergyPoint {
	return EnergyPoint{
		TimeLabel:    t.In(loc).Format("15:04"),
		Timestamp:    t,
		LevelPercent: roundTo(clamp(grams/capacity*100, MinTankPercent, MaxTankPercent), 2),
		KcalBalance:  roundTo(kcal, 0),
		CarbBalance:  roundTo(grams-startGrams, 1),
		FluidDeficit: roundTo(fluid, 0),
		IsFuture:     !now.IsZero() && t.After(now),
		Event:        annotate(t, ev),
	}
}

// annotate collects the events resolved within half a step of t
func annotate(t time.Time, ev DayEvents) *EventAnnotation {
	half := StepMinutes * time.Minute / 2
	lo, hi := t.Add(-half), t.Add(half)
	in := func(x time.Time) bool { return !x.Before(lo) && x.Before(hi) }

	var names []string
	var hasMeal, hasWorkout bool
	for _, f := range ev.Foods {
		if in(f.At) {
			hasMeal = true
			names = appendUnique(names, f.Food.Name)
		}
	}
	for _, w := range ev.Workouts {
		if in(w.Start) {
			hasWorkout = true
			names = appendUnique(names, w.Workout.Title)
		}
	}
	if !hasMeal && !hasWorkout {
		return nil
	}

	a := &EventAnnotation{Label: strings.Join(names, " + ")}
	if hasMeal {
		a.Kinds = append(a.Kinds, EventMeal)
		a.Icon += mealIcon
	}
	if hasWorkout {
		a.Kinds = append(a.Kinds, EventWorkout)
		a.Icon += workoutIcon
	}
	return a
}

// releasedFraction is the share of an item's carbohydrate released by t.
// Simple items ramp linearly over 30 minutes, everything else follows a logistic
// curve rescaled to start at zero.
func releasedFraction(f ResolvedFood, t time.Time) float64 {
	m := t.Sub(f.At).Minutes()
	if m <= 0 {
		return 0
	}
	if f.Profile.ID == ProfileSimple.ID {
		return math.Min(1, m/fastReleaseMinutes)
	}
	s0 := logistic(0)
	return (logistic(m) - s0) / (1 - s0)
}

func logistic(m float64) float64 {
	return 1 / (1 + math.Exp(-sigmoidSteepness*(m-sigmoidMidpoint)))
}

// carbFraction is the share of workout energy drawn from carbohydrate
func carbFraction(intensity float64) float64 {
	return clamp(0.35+0.6*intensity, 0.4, 0.95)
}

func workoutKcalPerMinute(intensity float64) float64 {
	return GramsPerMinute(intensity) * KcalPerGramCarb / carbFraction(intensity)
}

func foodKcal(f FoodIntakeEvent) float64 {
	if f.CaloriesKcal > 0 {
		return f.CaloriesKcal
	}
	return f.CarbsGrams*4 + f.ProteinGrams*4 + f.FatGrams*9
}

func overlapMinutes(a, b, start, end time.Time) float64 {
	lo, hi := a, b
	if start.After(lo) {
		lo = start
	}
	if end.Before(hi) {
		hi = end
	}
	if !hi.After(lo) {
		return 0
	}
	return hi.Sub(lo).Minutes()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func appendUnique(list []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return list
	}
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
