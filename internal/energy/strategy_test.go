package energy

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func resolvedAt(h, m int, minutes int, intensity float64) ResolvedWorkout {
	start := clock(h, m)
	return ResolvedWorkout{
		Workout: WorkoutEvent{
			ID:              "w1",
			Title:           "Session",
			Start:           InstantOf(start),
			DurationSeconds: minutes * 60,
			Intensity:       intensity,
		},
		Start: start,
		End:   start.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestIntraCarbsPerHour(t *testing.T) {
	tests := []struct {
		name      string
		minutes   float64
		intensity float64
		expected  float64
	}{
		{"short easy", 45, 0.5, 0},
		{"short threshold", 45, 0.9, 0},
		{"short very hard", 45, 0.95, 30},
		{"hour easy", 60, 0.5, 30},
		{"hour steady", 75, 0.7, 30},
		{"hour tempo", 75, 0.8, 45},
		{"hour very hard", 75, 0.92, 60},
		{"two hours easy", 120, 0.55, 30},
		{"two hours steady", 120, 0.65, 45},
		{"two hours tempo", 120, 0.85, 60},
		{"two hours very hard", 120, 0.95, 75},
		{"long easy", 180, 0.5, 45},
		{"long steady", 240, 0.7, 60},
		{"long tempo", 180, 0.9, 75},
		{"long very hard", 150, 0.95, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntraCarbsPerHour(tt.minutes, tt.intensity); got != tt.expected {
				t.Errorf("IntraCarbsPerHour(%v, %v) = %v, want %v", tt.minutes, tt.intensity, got, tt.expected)
			}
		})
	}
}

func TestFuelingStrategy(t *testing.T) {
	s := Settings{WeightKg: 70, Timezone: "UTC"}
	w := resolvedAt(10, 0, 90, 0.8)

	got := FuelingStrategy(s, w)

	// sweat 0.8 L/h for 1.5 h = 1200 ml; 80% replaced during, 1.5x the rest after
	want := []FuelingWindow{
		{
			Type:           WindowPreWorkout,
			Start:          clock(7, 0),
			End:            clock(10, 0),
			TargetCarbs:    105,
			TargetProtein:  17.5,
			TargetFat:      10,
			TargetFluidMl:  420,
			TargetSodiumMg: 300,
			Description:    "Pre-workout: 1.5 g/kg carbohydrate",
			WorkoutIDs:     []string{"w1"},
			WorkoutTitles:  []string{"Session"},
		},
		{
			Type:           WindowIntraWorkout,
			Start:          clock(10, 0),
			End:            clock(11, 30),
			TargetCarbs:    90,
			TargetFluidMl:  960,
			TargetSodiumMg: 672,
			Description:    "During: 60 g carbohydrate per hour",
			WorkoutIDs:     []string{"w1"},
			WorkoutTitles:  []string{"Session"},
		},
		{
			Type:           WindowPostWorkout,
			Start:          clock(11, 30),
			End:            clock(13, 30),
			TargetCarbs:    84,
			TargetProtein:  21,
			TargetFat:      15,
			TargetFluidMl:  360,
			TargetSodiumMg: 252,
			Description:    "Recovery: 1.2 g/kg carbohydrate with protein",
			WorkoutIDs:     []string{"w1"},
			WorkoutTitles:  []string{"Session"},
		},
	}
	if diff := cmp.Diff(want, got.Windows); diff != "" {
		t.Errorf("FuelingStrategy() windows mismatch (-want +got):\n%s", diff)
	}

	if got.CarbsPerHour != 60 {
		t.Errorf("CarbsPerHour = %v, want 60", got.CarbsPerHour)
	}
	if got.DailyTotals.Carbs != 105+90+84 {
		t.Errorf("DailyTotals.Carbs = %v, want %v", got.DailyTotals.Carbs, 105+90+84)
	}
	if len(got.Supplements) != 1 || got.Supplements[0].Name != "Electrolytes" {
		t.Errorf("Supplements = %+v, want electrolytes only", got.Supplements)
	}
}

func TestFuelingStrategyGutCeiling(t *testing.T) {
	s := Settings{WeightKg: 70, Timezone: "UTC", GutCarbCeiling: 60}
	got := FuelingStrategy(s, resolvedAt(8, 0, 180, 0.95))

	if got.CarbsPerHour != 60 {
		t.Errorf("CarbsPerHour = %v, want capped 60", got.CarbsPerHour)
	}
	if len(got.Notes) == 0 || !strings.Contains(got.Notes[0], "capped") {
		t.Errorf("Notes = %v, want a cap note", got.Notes)
	}
	if intra := got.Windows[1]; intra.TargetCarbs != 180 {
		t.Errorf("intra carbs = %v, want 180", intra.TargetCarbs)
	}
	if pre := got.Windows[0]; pre.TargetCarbs != 140 {
		t.Errorf("pre carbs = %v, want 2.0 g/kg = 140", pre.TargetCarbs)
	}

	names := make([]string, len(got.Supplements))
	for i, sup := range got.Supplements {
		names[i] = sup.Name
	}
	if diff := cmp.Diff([]string{"Caffeine", "Electrolytes"}, names); diff != "" {
		t.Errorf("supplements mismatch (-want +got):\n%s", diff)
	}
}

func TestFuelingStrategyTrainLow(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		workout  ResolvedWorkout
	}{
		{
			name:     "settings override",
			settings: Settings{WeightKg: 70, TrainLow: true},
			workout:  resolvedAt(7, 0, 90, 0.7),
		},
		{
			name:     "workout flag",
			settings: Settings{WeightKg: 70},
			workout: func() ResolvedWorkout {
				w := resolvedAt(7, 0, 90, 0.7)
				w.Workout.TrainLow = true
				return w
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FuelingStrategy(tt.settings, tt.workout)
			if got.CarbsPerHour != 0 {
				t.Errorf("CarbsPerHour = %v, want 0", got.CarbsPerHour)
			}
			pre, intra, post := got.Windows[0], got.Windows[1], got.Windows[2]
			if pre.TargetCarbs != 0 || pre.TargetProtein == 0 {
				t.Errorf("pre = %v carbs %v protein, want protein only", pre.TargetCarbs, pre.TargetProtein)
			}
			if intra.TargetCarbs != 0 {
				t.Errorf("intra carbs = %v, want 0", intra.TargetCarbs)
			}
			if intra.TargetFluidMl == 0 {
				t.Error("intra fluid withheld under train-low")
			}
			if post.TargetProtein != 35 {
				t.Errorf("post protein = %v, want 0.5 g/kg = 35", post.TargetProtein)
			}
		})
	}
}

func TestFuelingStrategyTrainLowSkipsCapNote(t *testing.T) {
	s := Settings{WeightKg: 70, Timezone: "UTC", GutCarbCeiling: 60, TrainLow: true}
	got := FuelingStrategy(s, resolvedAt(8, 0, 180, 0.95))

	if got.CarbsPerHour != 0 {
		t.Errorf("CarbsPerHour = %v, want 0", got.CarbsPerHour)
	}
	var trainLowNote bool
	for _, n := range got.Notes {
		if strings.Contains(n, "capped") {
			t.Errorf("unexpected cap note %q on a train-low session", n)
		}
		if strings.Contains(n, "Train-low") {
			trainLowNote = true
		}
	}
	if !trainLowNote {
		t.Errorf("Notes = %v, want the train-low note", got.Notes)
	}
}

func TestFuelingStrategyShortSessions(t *testing.T) {
	s := Settings{WeightKg: 70}

	easy := FuelingStrategy(s, resolvedAt(18, 0, 40, 0.5))
	if easy.Windows[1].TargetCarbs != 0 {
		t.Errorf("easy intra carbs = %v, want 0", easy.Windows[1].TargetCarbs)
	}
	if easy.Windows[0].TargetCarbs != 70 {
		t.Errorf("easy pre carbs = %v, want 1.0 g/kg", easy.Windows[0].TargetCarbs)
	}
	if len(easy.Supplements) != 0 {
		t.Errorf("easy supplements = %+v, want none", easy.Supplements)
	}

	sprint := FuelingStrategy(s, resolvedAt(18, 0, 45, 0.95))
	if sprint.Windows[1].TargetCarbs != 23 {
		t.Errorf("sprint intra carbs = %v, want 30 g/h over 45 min", sprint.Windows[1].TargetCarbs)
	}
	var bicarb *Supplement
	for i := range sprint.Supplements {
		if sprint.Supplements[i].Name == "Sodium bicarbonate" {
			bicarb = &sprint.Supplements[i]
		}
	}
	if bicarb == nil || bicarb.Amount != 21 {
		t.Errorf("bicarbonate = %+v, want 0.3 g/kg = 21 g", bicarb)
	}
}

func TestFuelingStrategyZeroDuration(t *testing.T) {
	got := FuelingStrategy(Settings{}, resolvedAt(9, 0, 0, 0.8))
	for _, w := range got.Windows {
		if w.Type == WindowIntraWorkout {
			t.Errorf("zero length session produced an intra window: %+v", w)
		}
		if !w.Start.Before(w.End) {
			t.Errorf("window %s has start %v not before end %v", w.Type, w.Start, w.End)
		}
	}
}

func TestBaseNeeds(t *testing.T) {
	got := BaseNeeds(Settings{WeightKg: 80})
	want := DailyNeeds{Carbs: 240, Protein: 128, Fat: 80, FluidMl: 2800, SodiumMg: 1500}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("BaseNeeds() mismatch (-want +got):\n%s", diff)
	}
}
