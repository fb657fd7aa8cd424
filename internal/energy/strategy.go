package energy

import (
	"fmt"
	"math"
	"time"
)

// Daily base needs per kg bodyweight
const (
	BaseCarbsPerKg    = 3.0
	BaseProteinPerKg  = 1.6
	BaseFatPerKg      = 1.0
	BaseFluidMlPerKg  = 35.0
	BaseSodiumMgDaily = 1500.0
)

// DailyNeeds is a set of nutrition targets
type DailyNeeds struct {
	Carbs    float64
	Protein  float64
	Fat      float64
	FluidMl  float64
	SodiumMg float64
}

// Add sums two sets of targets
func (n DailyNeeds) Add(o DailyNeeds) DailyNeeds {
	return DailyNeeds{
		Carbs:    n.Carbs + o.Carbs,
		Protein:  n.Protein + o.Protein,
		Fat:      n.Fat + o.Fat,
		FluidMl:  n.FluidMl + o.FluidMl,
		SodiumMg: n.SodiumMg + o.SodiumMg,
	}
}

// Scale multiplies every target by f
func (n DailyNeeds) Scale(f float64) DailyNeeds {
	return DailyNeeds{
		Carbs:    n.Carbs * f,
		Protein:  n.Protein * f,
		Fat:      n.Fat * f,
		FluidMl:  n.FluidMl * f,
		SodiumMg: n.SodiumMg * f,
	}
}

// BaseNeeds returns the rest-day targets for the athlete
func BaseNeeds(s Settings) DailyNeeds {
	s = s.WithDefaults()
	return DailyNeeds{
		Carbs:    s.WeightKg * BaseCarbsPerKg,
		Protein:  s.WeightKg * BaseProteinPerKg,
		Fat:      s.WeightKg * BaseFatPerKg,
		FluidMl:  s.WeightKg * BaseFluidMlPerKg,
		SodiumMg: BaseSodiumMgDaily,
	}
}

// Supplement is an optional ergogenic aid suggestion
type Supplement struct {
	Name   string
	Amount float64
	Unit   string
	Timing string
	Reason string
}

// Strategy is the fueling plan around one workout
type Strategy struct {
	Windows      []FuelingWindow
	CarbsPerHour float64
	DailyTotals  DailyNeeds // sum of the window targets
	Notes        []string
	Supplements  []Supplement
}

// intra-workout carbs per hour, rows by duration bucket, columns by intensity band
var intraCarbTable = [4][4]float64{
	{0, 0, 0, 30},    // < 60 min
	{30, 30, 45, 60}, // 60-90 min
	{30, 45, 60, 75}, // 90-150 min
	{45, 60, 75, 90}, // >= 150 min
}

// IntraCarbsPerHour looks up the uncapped intra-workout carbohydrate rate
func IntraCarbsPerHour(durationMin, intensity float64) float64 {
	row := 0
	switch {
	case durationMin >= 150:
		row = 3
	case durationMin >= 90:
		row = 2
	case durationMin >= 60:
		row = 1
	}
	col := 0
	switch {
	case intensity > 0.9:
		col = 3
	case intensity >= 0.75:
		col = 2
	case intensity >= 0.6:
		col = 1
	}
	return intraCarbTable[row][col]
}

func preCarbsPerKg(durationMin, intensity float64) float64 {
	switch {
	case intensity >= 0.9 || durationMin >= 150:
		return 2.0
	case intensity >= 0.75 || durationMin >= 90:
		return 1.5
	default:
		return 1.0
	}
}

// FuelingStrategy builds PRE, INTRA and POST windows for a resolved workout
func FuelingStrategy(s Settings, w ResolvedWorkout) Strategy {
	s = s.WithDefaults()
	kg := s.WeightKg
	durMin := w.Workout.DurationMinutes()
	hours := durMin / 60
	intensity := w.Workout.Intensity
	trainLow := s.TrainLow || w.Workout.TrainLow

	var st Strategy
	ids, titles := workoutRefs(w.Workout)

	perHour := IntraCarbsPerHour(durMin, intensity)
	if perHour > s.GutCarbCeiling && !trainLow {
		st.Notes = append(st.Notes, fmt.Sprintf("Intra carbs capped at %.0f g/h by gut tolerance (table suggests %.0f g/h)", s.GutCarbCeiling, perHour))
		perHour = s.GutCarbCeiling
	}
	if trainLow {
		perHour = 0
		st.Notes = append(st.Notes, "Train-low session: carbohydrate withheld before and during")
	} else if perHour == 0 && durMin > 0 {
		st.Notes = append(st.Notes, "Short or easy session: water is enough during")
	}
	st.CarbsPerHour = perHour

	pre := FuelingWindow{
		Type:           WindowPreWorkout,
		Start:          w.Start.Add(-time.Duration(s.PreWindowMinutes) * time.Minute),
		End:            w.Start,
		TargetProtein:  roundTo(0.25*kg, 1),
		TargetFat:      10,
		TargetFluidMl:  roundTo(6*kg, 0),
		TargetSodiumMg: 300,
		WorkoutIDs:     ids,
		WorkoutTitles:  titles,
	}
	if trainLow {
		pre.Description = "Pre-workout: protein only, keep carbohydrate low"
	} else {
		gpk := preCarbsPerKg(durMin, intensity)
		pre.TargetCarbs = roundTo(gpk*kg, 0)
		pre.Description = fmt.Sprintf("Pre-workout: %.1f g/kg carbohydrate", gpk)
	}
	st.Windows = append(st.Windows, pre)

	sweatMl := s.SweatRateLPerHour * hours * 1000
	intraFluid := sweatMl * 0.8
	if durMin > 0 {
		st.Windows = append(st.Windows, FuelingWindow{
			Type:           WindowIntraWorkout,
			Start:          w.Start,
			End:            w.End,
			TargetCarbs:    roundTo(perHour*hours, 0),
			TargetFluidMl:  roundTo(intraFluid, 0),
			TargetSodiumMg: roundTo(intraFluid/1000*s.SodiumMgPerL, 0),
			Description:    fmt.Sprintf("During: %.0f g carbohydrate per hour", perHour),
			WorkoutIDs:     ids,
			WorkoutTitles:  titles,
		})
	}

	postProtein := 0.3
	if trainLow {
		postProtein = 0.5
	}
	postFluid := 1.5 * math.Max(0, sweatMl-intraFluid)
	st.Windows = append(st.Windows, FuelingWindow{
		Type:           WindowPostWorkout,
		Start:          w.End,
		End:            w.End.Add(time.Duration(s.PostWindowMinutes) * time.Minute),
		TargetCarbs:    roundTo(1.2*kg, 0),
		TargetProtein:  roundTo(postProtein*kg, 1),
		TargetFat:      15,
		TargetFluidMl:  roundTo(postFluid, 0),
		TargetSodiumMg: roundTo(postFluid/1000*s.SodiumMgPerL, 0),
		Description:    "Recovery: 1.2 g/kg carbohydrate with protein",
		WorkoutIDs:     ids,
		WorkoutTitles:  titles,
	})

	for _, win := range st.Windows {
		st.DailyTotals = st.DailyTotals.Add(windowTargets(win))
	}
	st.Supplements = supplementsFor(s, durMin, intensity)
	return st
}

func supplementsFor(s Settings, durMin, intensity float64) []Supplement {
	var out []Supplement
	if intensity >= 0.85 || durMin >= 120 {
		out = append(out, Supplement{
			Name:   "Caffeine",
			Amount: roundTo(3*s.WeightKg, 0),
			Unit:   "mg",
			Timing: "60 min before",
			Reason: "hard or long session",
		})
	}
	if intensity > 0.9 && durMin <= 60 {
		out = append(out, Supplement{
			Name:   "Sodium bicarbonate",
			Amount: roundTo(0.3*s.WeightKg, 1),
			Unit:   "g",
			Timing: "90 min before",
			Reason: "short, very high intensity",
		})
	}
	if durMin >= 90 || s.SweatRateLPerHour >= 1.2 {
		out = append(out, Supplement{
			Name:   "Electrolytes",
			Amount: s.SodiumMgPerL,
			Unit:   "mg sodium per litre",
			Timing: "during",
			Reason: "long session or heavy sweating",
		})
	}
	return out
}

func workoutRefs(w WorkoutEvent) ([]string, []string) {
	var ids, titles []string
	if w.ID != "" {
		ids = []string{w.ID}
	}
	if w.Title != "" {
		titles = []string{w.Title}
	}
	return ids, titles
}

func windowTargets(w FuelingWindow) DailyNeeds {
	return DailyNeeds{
		Carbs:    w.TargetCarbs,
		Protein:  w.TargetProtein,
		Fat:      w.TargetFat,
		FluidMl:  w.TargetFluidMl,
		SodiumMg: w.TargetSodiumMg,
	}
}
