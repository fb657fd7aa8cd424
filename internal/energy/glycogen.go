package energy

import (
	"math"
	"time"
)

// TankState is the display tier of a glycogen percentage
type TankState string

const (
	TankHigh     TankState = "high"
	TankModerate TankState = "moderate"
	TankCritical TankState = "critical"
)

// GlycogenResult is the tank estimate at a single instant
type GlycogenResult struct {
	Percentage   float64
	State        TankState
	Advice       string
	Breakdown    GlycogenBreakdown
	CarbsOnBoard float64 // eaten but not yet absorbed, grams
	Unscheduled  []UnscheduledEvent
}

// GramsPerMinute is the carbohydrate burn rate at a given intensity
func GramsPerMinute(intensity float64) float64 {
	switch {
	case intensity >= 0.9:
		return 4.5
	case intensity >= 0.75:
		return 2.75
	case intensity < 0.6:
		return 0.75
	default:
		return 1.5
	}
}

// ClassifyTank maps a percentage onto its display tier and advice line
func ClassifyTank(pct float64) (TankState, string) {
	switch {
	case pct > 70:
		return TankHigh, "Tank is well stocked. Good day for quality work."
	case pct > 35:
		return TankModerate, "Tank is half full. Top up before anything hard."
	default:
		return TankCritical, "Tank is low. Eat carbohydrate before training."
	}
}

// GlycogenState estimates the tank percentage at now.
//
// The result starts from the midnight baseline, adds a replenishment bonus for
// carbohydrate logged so far and subtracts resting and workout drains. Every term
// is kept in the breakdown so Breakdown.Total() reproduces Percentage. Events
// whose time cannot be resolved are left out and reported in Unscheduled.
func GlycogenState(record NutritionRecord, workouts []WorkoutEvent, s Settings, now time.Time) GlycogenResult {
	s = s.WithDefaults()
	loc := s.Location()
	if record.Date.IsZero() {
		record.Date = DateOf(now.In(loc))
	}
	ev := NormalizeDay(record, workouts, s)
	day := record.Date.Range(loc)
	capacity := s.CapacityGrams()

	var actual float64
	for _, f := range ev.Foods {
		if !f.At.After(now) {
			actual += f.Food.CarbsGrams
		}
	}
	if len(ev.Foods) == 0 && record.TotalCarbsGrams > 0 {
		actual = record.TotalCarbsGrams
	}
	target := record.CarbGoalGrams
	if target <= 0 {
		target = s.WeightKg * DefaultCarbGoalPerKg
	}
	repl := MaxReplenishmentPercent * math.Min(1, math.Max(0, actual)/target)

	elapsed := clamp(now.Sub(day.Start).Minutes(), 0, day.End.Sub(day.Start).Minutes())
	resting := s.RestingCarbGramsPerMinute() * elapsed / capacity * 100

	var depletion []DepletionEvent
	for _, rw := range ev.Workouts {
		minutes := 0.0
		switch {
		case now.After(rw.Start):
			minutes = math.Min(rw.Workout.DurationMinutes(), now.Sub(rw.Start).Minutes())
		case rw.Workout.Completed:
			// logged as done even though the clock says otherwise
			minutes = rw.Workout.DurationMinutes()
		}
		if minutes <= 0 {
			continue
		}
		depletion = append(depletion, workoutDepletion(rw.Workout, minutes, capacity))
	}

	b := GlycogenBreakdown{
		MidnightBaselinePercent: MidnightBaselinePercent,
		Replenishment: Replenishment{
			Value:       roundTo(repl, 2),
			ActualCarbs: actual,
			TargetCarbs: target,
		},
		DepletionEvents:       depletion,
		RestingMetabolismDrop: roundTo(resting, 2),
	}
	pct := b.Total()
	state, advice := ClassifyTank(pct)
	return GlycogenResult{
		Percentage:   pct,
		State:        state,
		Advice:       advice,
		Breakdown:    b,
		CarbsOnBoard: roundTo(CarbsOnBoard(ev.Foods, now), 1),
		Unscheduled:  ev.Unscheduled,
	}
}

func workoutDepletion(w WorkoutEvent, minutes, capacity float64) DepletionEvent {
	grams := GramsPerMinute(w.Intensity) * WorkoutDrainMultiplier * minutes
	return DepletionEvent{
		Title:       w.Title,
		Value:       roundTo(grams/capacity*100, 2),
		Intensity:   w.Intensity,
		DurationMin: roundTo(minutes, 1),
	}
}
