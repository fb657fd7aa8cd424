package energy

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testRange() DayRange {
	return testDay.Range(time.UTC)
}

func checkTiling(t *testing.T, windows []FuelingWindow, day DayRange) {
	t.Helper()
	if len(windows) == 0 {
		t.Fatal("no windows")
	}
	if !windows[0].Start.Equal(day.Start) {
		t.Errorf("first window starts %v, want %v", windows[0].Start, day.Start)
	}
	if last := windows[len(windows)-1]; !last.End.Equal(day.End) {
		t.Errorf("last window ends %v, want %v", last.End, day.End)
	}
	for i, w := range windows {
		if !w.Start.Before(w.End) {
			t.Errorf("window %d: start %v not before end %v", i, w.Start, w.End)
		}
		if i > 0 && !windows[i-1].End.Equal(w.Start) {
			t.Errorf("window %d starts %v, previous ends %v", i, w.Start, windows[i-1].End)
		}
	}
}

func TestMergeWindows(t *testing.T) {
	base := BaseNeeds(Settings{WeightKg: 80})
	windows := []FuelingWindow{
		{
			Type:          WindowPostWorkout,
			Start:         clock(7, 10),
			End:           clock(8, 0),
			TargetCarbs:   30,
			TargetProtein: 20,
			Description:   "Recovery",
			WorkoutIDs:    []string{"b"},
			WorkoutTitles: []string{"Swim"},
		},
		{
			Type:          WindowPreWorkout,
			Start:         clock(6, 0),
			End:           clock(7, 0),
			TargetCarbs:   50,
			TargetFluidMl: 400,
			Description:   "Pre",
			WorkoutIDs:    []string{"a"},
			WorkoutTitles: []string{"Run"},
		},
	}

	got := MergeWindows(windows, testRange(), base)

	want := []FuelingWindow{
		{
			Type:           WindowDailyBase,
			Start:          clock(0, 0),
			End:            clock(6, 0),
			TargetCarbs:    60,
			TargetProtein:  32,
			TargetFat:      20,
			TargetFluidMl:  700,
			TargetSodiumMg: 375,
			Description:    "Daily base: regular meals",
		},
		{
			Type:          WindowTransition,
			Start:         clock(6, 0),
			End:           clock(8, 0),
			TargetCarbs:   80,
			TargetProtein: 20,
			TargetFluidMl: 400,
			Description:   transitionDescription,
			WorkoutIDs:    []string{"a", "b"},
			WorkoutTitles: []string{"Run", "Swim"},
		},
		{
			Type:           WindowDailyBase,
			Start:          clock(8, 0),
			End:            testRange().End,
			TargetCarbs:    160,
			TargetProtein:  85.3,
			TargetFat:      53.3,
			TargetFluidMl:  1867,
			TargetSodiumMg: 1000,
			Description:    "Daily base: regular meals",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeWindows() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeWindowsSameType(t *testing.T) {
	windows := []FuelingWindow{
		{Type: WindowPreWorkout, Start: clock(6, 0), End: clock(8, 0), TargetCarbs: 50, Description: "Pre run", WorkoutTitles: []string{"Run"}},
		{Type: WindowPreWorkout, Start: clock(7, 0), End: clock(9, 0), TargetCarbs: 40, Description: "Pre ride", WorkoutTitles: []string{"Run"}},
	}
	got := MergeWindows(windows, testRange(), DailyNeeds{})

	if len(got) != 3 {
		t.Fatalf("got %d windows, want 3", len(got))
	}
	m := got[1]
	if m.Type != WindowPreWorkout || m.Description != "Pre run" {
		t.Errorf("merged = %s %q, want PRE_WORKOUT keeping the first description", m.Type, m.Description)
	}
	if m.TargetCarbs != 90 || !m.End.Equal(clock(9, 0)) {
		t.Errorf("merged carbs %v end %v, want 90 ending 09:00", m.TargetCarbs, m.End)
	}
	if diff := cmp.Diff([]string{"Run"}, m.WorkoutTitles); diff != "" {
		t.Errorf("titles not deduplicated (-want +got):\n%s", diff)
	}
}

func TestMergeWindowsGapBoundary(t *testing.T) {
	tests := []struct {
		name   string
		gap    time.Duration
		merged bool
	}{
		{"touching", 0, true},
		{"exactly fifteen minutes", 15 * time.Minute, true},
		{"sixteen minutes", 16 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := FuelingWindow{Type: WindowIntraWorkout, Start: clock(10, 0), End: clock(11, 0), TargetCarbs: 60}
			second := FuelingWindow{Type: WindowPostWorkout, Start: clock(11, 0).Add(tt.gap), End: clock(13, 0), TargetCarbs: 90}
			got := MergeWindows([]FuelingWindow{first, second}, testRange(), DailyNeeds{})

			var workoutWindows int
			for _, w := range got {
				if w.Type != WindowDailyBase {
					workoutWindows++
				}
			}
			if tt.merged && workoutWindows != 1 {
				t.Errorf("got %d workout windows, want 1", workoutWindows)
			}
			if !tt.merged && workoutWindows != 2 {
				t.Errorf("got %d workout windows, want 2", workoutWindows)
			}
			checkTiling(t, got, testRange())
		})
	}
}

func TestMergeWindowsClipsToDay(t *testing.T) {
	day := testRange()
	windows := []FuelingWindow{
		{Type: WindowPostWorkout, Start: day.Start.Add(-2 * time.Hour), End: day.Start.Add(time.Hour), TargetCarbs: 90},
		{Type: WindowPreWorkout, Start: day.End.Add(-time.Hour), End: day.End.Add(2 * time.Hour), TargetCarbs: 70},
		{Type: WindowPreWorkout, Start: day.End.Add(time.Hour), End: day.End.Add(2 * time.Hour), TargetCarbs: 70},
		{Type: WindowDailyBase, Start: clock(12, 0), End: clock(13, 0), TargetCarbs: 999},
	}
	got := MergeWindows(windows, day, BaseNeeds(Settings{}))

	checkTiling(t, got, day)
	if got[0].Type != WindowPostWorkout || !got[0].End.Equal(day.Start.Add(time.Hour)) {
		t.Errorf("first = %s ending %v, want clipped POST_WORKOUT", got[0].Type, got[0].End)
	}
	if last := got[len(got)-1]; last.Type != WindowPreWorkout {
		t.Errorf("last = %s, want clipped PRE_WORKOUT", last.Type)
	}
	for _, w := range got {
		if w.TargetCarbs == 999 {
			t.Error("incoming DAILY_BASE window survived the merge")
		}
	}
}

func TestMergeWindowsEmpty(t *testing.T) {
	got := MergeWindows(nil, testRange(), BaseNeeds(Settings{WeightKg: 80}))
	if len(got) != 1 || got[0].Type != WindowDailyBase {
		t.Fatalf("got %+v, want one DAILY_BASE window", got)
	}
	if got[0].TargetCarbs != 240 {
		t.Errorf("full day base carbs = %v, want 240", got[0].TargetCarbs)
	}
	checkTiling(t, got, testRange())
}

func randomWindows(r *rand.Rand, day DayRange) []FuelingWindow {
	types := []WindowType{WindowPreWorkout, WindowIntraWorkout, WindowPostWorkout, WindowDailyBase}
	n := r.Intn(8)
	out := make([]FuelingWindow, n)
	for i := range out {
		start := day.Start.Add(time.Duration(r.Intn(30*60)-180) * time.Minute)
		out[i] = FuelingWindow{
			Type:          types[r.Intn(len(types))],
			Start:         start,
			End:           start.Add(time.Duration(r.Intn(240)) * time.Minute),
			TargetCarbs:   float64(r.Intn(100)),
			TargetFluidMl: float64(r.Intn(800)),
			WorkoutTitles: []string{string(rune('A' + r.Intn(4)))},
		}
	}
	return out
}

func TestMergeWindowsProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	day := testRange()
	base := BaseNeeds(Settings{})

	for i := 0; i < 200; i++ {
		in := randomWindows(r, day)
		once := MergeWindows(in, day, base)
		checkTiling(t, once, day)

		twice := MergeWindows(once, day, base)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("case %d: merge is not idempotent (-once +twice):\n%s", i, diff)
		}
	}
}

func TestMergeWindowsDSTDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	day := Date{Year: 2024, Month: time.March, Day: 31}.Range(loc)
	start := time.Date(2024, 3, 31, 9, 0, 0, 0, loc)
	windows := []FuelingWindow{
		{Type: WindowIntraWorkout, Start: start, End: start.Add(time.Hour)},
	}
	got := MergeWindows(windows, day, BaseNeeds(Settings{}))
	checkTiling(t, got, day)
	if total := got[len(got)-1].End.Sub(got[0].Start); total != 23*time.Hour {
		t.Errorf("tiled span = %v, want 23h", total)
	}
}

func TestAssignFoodsAndProgress(t *testing.T) {
	windows := MergeWindows([]FuelingWindow{
		{Type: WindowPreWorkout, Start: clock(7, 0), End: clock(9, 40), TargetCarbs: 100},
		{Type: WindowIntraWorkout, Start: clock(10, 0), End: clock(11, 0), TargetCarbs: 60},
	}, testRange(), BaseNeeds(Settings{}))

	foods := []ResolvedFood{
		{Food: FoodIntakeEvent{Name: "Bagel", CarbsGrams: 55, ProteinGrams: 10}, At: clock(8, 0)},
		{Food: FoodIntakeEvent{Name: "Banana", CarbsGrams: 27}, At: clock(9, 30)},
		{Food: FoodIntakeEvent{Name: "Gel", CarbsGrams: 25, FluidMl: 100}, At: clock(10, 0)},
		{Food: FoodIntakeEvent{Name: "Pizza", CarbsGrams: 90}, At: clock(20, 0)},
	}
	got := AssignFoods(windows, foods)

	if len(windows[1].Foods) != 0 {
		t.Error("AssignFoods modified its input")
	}

	var pre, intra, evening FuelingWindow
	for _, w := range got {
		switch {
		case w.Type == WindowTransition:
			t.Fatalf("unexpected transition window")
		case w.Contains(clock(8, 0)):
			pre = w
		case w.Contains(clock(10, 30)):
			intra = w
		case w.Contains(clock(20, 0)):
			evening = w
		}
	}

	p := Progress(pre)
	if p.Consumed.Carbs != 82 || p.Consumed.Protein != 10 {
		t.Errorf("pre consumed = %+v, want 82 g carbs 10 g protein", p.Consumed)
	}
	if ratio := p.CarbRatio(); ratio != 0.82 {
		t.Errorf("pre carb ratio = %v, want 0.82", ratio)
	}

	if len(intra.Foods) != 1 || intra.Foods[0].Name != "Gel" {
		t.Errorf("intra foods = %+v, want the gel at the window start", intra.Foods)
	}
	if Progress(intra).Consumed.FluidMl != 100 {
		t.Errorf("intra fluid = %v, want 100", Progress(intra).Consumed.FluidMl)
	}
	if evening.Type != WindowDailyBase || len(evening.Foods) != 1 {
		t.Errorf("evening window = %s with %d foods, want DAILY_BASE with pizza", evening.Type, len(evening.Foods))
	}
}

func TestCarbRatioZeroTarget(t *testing.T) {
	if r := (WindowProgress{}).CarbRatio(); r != 0 {
		t.Errorf("empty ratio = %v, want 0", r)
	}
	p := WindowProgress{Consumed: DailyNeeds{Carbs: 10}}
	if r := p.CarbRatio(); r != 1 {
		t.Errorf("ratio with zero target = %v, want 1", r)
	}
}

func TestPlanDay(t *testing.T) {
	record := NutritionRecord{
		Date: testDay,
		Meals: []MealBucket{
			{Name: "breakfast", Items: []FoodIntakeEvent{{Name: "Oatmeal", CarbsGrams: 80, LoggedAt: ClockOf(6, 30)}}},
			{Name: "mystery", Items: []FoodIntakeEvent{{Name: "Snack bar", CarbsGrams: 40}}},
		},
	}
	workouts := []WorkoutEvent{
		{ID: "am", Title: "Long run", Start: ClockOf(8, 0), DurationSeconds: 2 * 3600, Intensity: 0.7},
		{ID: "pm", Title: "Strides", Start: ClockOf(12, 0), DurationSeconds: 30 * 60, Intensity: 0.95},
	}
	plan := PlanDay(record, workouts, Settings{WeightKg: 65, Timezone: "UTC"})

	checkTiling(t, plan.Windows, testRange())
	if len(plan.Unscheduled) != 1 {
		t.Errorf("Unscheduled = %+v, want the snack bar", plan.Unscheduled)
	}

	// PRE of the second session overlaps POST of the first
	var transition *FuelingWindow
	for i := range plan.Windows {
		if plan.Windows[i].Type == WindowTransition {
			transition = &plan.Windows[i]
		}
	}
	if transition == nil {
		t.Fatal("no transition window")
	}
	if diff := cmp.Diff([]string{"Long run", "Strides"}, transition.WorkoutTitles); diff != "" {
		t.Errorf("transition titles mismatch (-want +got):\n%s", diff)
	}

	var oatmealPlaced bool
	for _, w := range plan.Windows {
		for _, f := range w.Foods {
			if f.Name == "Oatmeal" {
				oatmealPlaced = w.Contains(clock(6, 30))
			}
		}
	}
	if !oatmealPlaced {
		t.Error("oatmeal not slotted into the window covering 06:30")
	}
}
