package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fuelwave/internal/energy"
	"fuelwave/internal/fitfile"
	"fuelwave/internal/store"
	"fuelwave/internal/strava"
)

// nutritionRecord groups a day's stored items into meal buckets, keeping the
// order in which each meal was first logged
func nutritionRecord(date energy.Date, day store.NutritionDay, items []store.FoodItem) energy.NutritionRecord {
	rec := energy.NutritionRecord{
		Date:            date,
		CarbGoalGrams:   day.CarbGoal,
		TotalCarbsGrams: day.TotalCarbs,
	}

	index := make(map[string]int)
	for _, it := range items {
		meal := strings.ToLower(strings.TrimSpace(it.Meal))
		i, ok := index[meal]
		if !ok {
			i = len(rec.Meals)
			index[meal] = i
			rec.Meals = append(rec.Meals, energy.MealBucket{Name: meal})
		}
		rec.Meals[i].Items = append(rec.Meals[i].Items, energy.FoodIntakeEvent{
			ID:           it.ID,
			Name:         it.Name,
			CarbsGrams:   it.Carbs,
			ProteinGrams: it.Protein,
			FatGrams:     it.Fat,
			CaloriesKcal: it.Calories,
			FluidMl:      it.FluidMl,
			LoggedAt:     energy.ParseRawTime(it.LoggedAt),
			Profile:      it.Profile,
		})
	}
	return rec
}

func workoutEvent(w store.Workout) energy.WorkoutEvent {
	return energy.WorkoutEvent{
		ID:              w.ID,
		Title:           w.Title,
		Start:           energy.ParseRawTime(w.Start),
		DurationSeconds: w.DurationSeconds,
		Intensity:       w.Intensity,
		Completed:       w.Completed,
		TrainLow:        w.TrainLow,
		Source:          w.Source,
	}
}

// dayWorkouts converts stored workouts and drops planned sessions that a
// completed one has replaced
func dayWorkouts(date energy.Date, stored []store.Workout, loc *time.Location) []energy.WorkoutEvent {
	events := make([]energy.WorkoutEvent, len(stored))
	starts := make([]time.Time, len(stored))
	for i, w := range stored {
		events[i] = workoutEvent(w)
		starts[i], _ = events[i].Start.Resolve(date, loc, "", nil)
	}

	out := make([]energy.WorkoutEvent, 0, len(events))
	for i, ev := range events {
		if !ev.Completed && replaced(i, events, starts) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func replaced(planned int, events []energy.WorkoutEvent, starts []time.Time) bool {
	for j, ev := range events {
		if j == planned || !ev.Completed {
			continue
		}
		if !starts[planned].IsZero() && !starts[j].IsZero() {
			if d := starts[j].Sub(starts[planned]); d < PlannedMatchWindow && d > -PlannedMatchWindow {
				return true
			}
			continue
		}
		if strings.EqualFold(strings.TrimSpace(ev.Title), strings.TrimSpace(events[planned].Title)) {
			return true
		}
	}
	return false
}

// estimateIntensity ignores heart rates outside the plausible range
func estimateIntensity(avgHR, watts, ftp float64, zones energy.HRZones) float64 {
	if avgHR < MinValidHeartrate || avgHR > MaxValidHeartrate {
		avgHR = 0
	}
	intensity, _ := energy.EstimateIntensity(avgHR, watts, ftp, zones)
	return intensity
}

// workoutFromActivity converts a Strava activity summary to a completed workout
func workoutFromActivity(a strava.Activity, zones energy.HRZones, ftp float64, loc *time.Location) store.Workout {
	w := store.Workout{
		Source:          store.SourceStrava,
		ExternalID:      strconv.FormatInt(a.ID, 10),
		Date:            energy.DateOf(a.StartDate.In(loc)).String(),
		Title:           a.Name,
		Start:           a.StartDate.UTC().Format(time.RFC3339),
		DurationSeconds: a.MovingTime,
		Intensity:       estimateIntensity(a.AverageHeartrate, a.Watts(), ftp, zones),
		Completed:       true,
	}
	if w.DurationSeconds <= 0 {
		w.DurationSeconds = a.ElapsedTime
	}
	if a.HasHeartrate && a.AverageHeartrate > 0 {
		hr := a.AverageHeartrate
		w.AverageHeartrate = &hr
	}
	if watts := a.Watts(); watts > 0 {
		w.AverageWatts = &watts
	}
	return w
}

// workoutFromSession converts a FIT session to a completed workout. The
// session's stored threshold power is used when no FTP is configured.
func workoutFromSession(s fitfile.Session, zones energy.HRZones, ftp float64, loc *time.Location) store.Workout {
	if ftp <= 0 {
		ftp = s.ThresholdPower
	}
	w := store.Workout{
		Source:          store.SourceFIT,
		ExternalID:      fmt.Sprintf("%d-%s", s.Start.Unix(), strings.ToLower(s.Sport)),
		Date:            energy.DateOf(s.Start.In(loc)).String(),
		Title:           s.Title(loc),
		Start:           s.Start.UTC().Format(time.RFC3339),
		DurationSeconds: s.DurationSeconds,
		Intensity:       estimateIntensity(s.AvgHeartRate, s.AvgWatts, ftp, zones),
		Completed:       true,
	}
	if s.AvgHeartRate > 0 {
		hr := s.AvgHeartRate
		w.AverageHeartrate = &hr
	}
	if s.AvgWatts > 0 {
		watts := s.AvgWatts
		w.AverageWatts = &watts
	}
	return w
}

// ParseFoodEntry reads "meal,name,carbs[,time[,fluid_ml]]", for example
// "breakfast,Oatmeal,60,07:30". Time may be any form the model accepts.
func ParseFoodEntry(date energy.Date, s string) (store.FoodItem, error) {
	parts := splitEntry(s)
	if len(parts) < 3 {
		return store.FoodItem{}, fmt.Errorf("food entry %q: want meal,name,carbs[,time[,fluid_ml]]", s)
	}
	carbs, err := parseAmount(parts[2])
	if err != nil {
		return store.FoodItem{}, fmt.Errorf("food entry %q: carbs: %w", s, err)
	}
	item := store.FoodItem{
		Date:  date.String(),
		Meal:  strings.ToLower(parts[0]),
		Name:  parts[1],
		Carbs: carbs,
	}
	if len(parts) > 3 {
		item.LoggedAt = parts[3]
	}
	if len(parts) > 4 {
		if item.FluidMl, err = parseAmount(parts[4]); err != nil {
			return store.FoodItem{}, fmt.Errorf("food entry %q: fluid: %w", s, err)
		}
	}
	return item, nil
}

// ParseWorkoutEntry reads "title,start,minutes,intensity", for example
// "Tempo run,17:30,60,0.8". The workout is planned, not completed.
func ParseWorkoutEntry(date energy.Date, s string) (store.Workout, error) {
	parts := splitEntry(s)
	if len(parts) != 4 {
		return store.Workout{}, fmt.Errorf("workout entry %q: want title,start,minutes,intensity", s)
	}
	minutes, err := parseAmount(parts[2])
	if err != nil {
		return store.Workout{}, fmt.Errorf("workout entry %q: minutes: %w", s, err)
	}
	intensity, err := parseAmount(parts[3])
	if err != nil || intensity > 1.2 {
		return store.Workout{}, fmt.Errorf("workout entry %q: intensity must be a fraction of threshold", s)
	}
	return store.Workout{
		Source:          store.SourceManual,
		Date:            date.String(),
		Title:           parts[0],
		Start:           parts[1],
		DurationSeconds: int(math.Round(minutes * 60)),
		Intensity:       intensity,
	}, nil
}

func splitEntry(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q out of range", s)
	}
	return v, nil
}
