package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 {
	return &f
}

func TestFoodItems(t *testing.T) {
	s := NewTestStore(t)

	oats, err := s.AddFoodItem(FoodItem{Date: "2024-06-01", Meal: "breakfast", Name: "Oatmeal", Carbs: 60, LoggedAt: "07:30"})
	require.NoError(t, err)
	assert.Len(t, oats.ID, 36, "uuid assigned")

	_, err = s.AddFoodItem(FoodItem{Date: "2024-06-01", Meal: "snack", Name: "Gel", Carbs: 25, FluidMl: 100, Profile: "simple"})
	require.NoError(t, err)
	_, err = s.AddFoodItem(FoodItem{Date: "2024-06-02", Meal: "lunch", Name: "Pasta", Carbs: 90})
	require.NoError(t, err)

	items, err := s.GetFoodItems("2024-06-01")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Oatmeal", items[0].Name)
	assert.Equal(t, "07:30", items[0].LoggedAt)
	assert.Equal(t, "simple", items[1].Profile)
	assert.Equal(t, 100.0, items[1].FluidMl)

	require.NoError(t, s.DeleteFoodItem(oats.ID))
	items, err = s.GetFoodItems("2024-06-01")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.ErrorIs(t, s.DeleteFoodItem(oats.ID), ErrFoodItemNotFound)

	_, err = s.AddFoodItem(FoodItem{Name: "No date"})
	assert.Error(t, err)
}

func TestNutritionDay(t *testing.T) {
	s := NewTestStore(t)

	day, err := s.GetNutritionDay("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, NutritionDay{Date: "2024-06-01"}, day)

	require.NoError(t, s.SaveNutritionDay(NutritionDay{Date: "2024-06-01", CarbGoal: 400}))
	require.NoError(t, s.SaveNutritionDay(NutritionDay{Date: "2024-06-01", CarbGoal: 450, TotalCarbs: 120}))

	day, err = s.GetNutritionDay("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 450.0, day.CarbGoal)
	assert.Equal(t, 120.0, day.TotalCarbs)
}

func TestUpsertWorkout(t *testing.T) {
	s := NewTestStore(t)

	ride := Workout{
		Source:           SourceStrava,
		ExternalID:       "987654",
		Date:             "2024-06-01",
		Title:            "Morning Ride",
		Start:            "2024-06-01T06:00:00Z",
		DurationSeconds:  5400,
		Intensity:        0.72,
		Completed:        true,
		AverageHeartrate: floatPtr(142),
	}
	id, err := s.UpsertWorkout(ride)
	require.NoError(t, err)

	// Same source and external ID updates in place
	ride.Title = "Morning Ride (edited)"
	ride.Intensity = 0.75
	again, err := s.UpsertWorkout(ride)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, err := s.GetWorkout(id)
	require.NoError(t, err)
	assert.Equal(t, "Morning Ride (edited)", got.Title)
	assert.Equal(t, 0.75, got.Intensity)
	assert.True(t, got.Completed)
	assert.False(t, got.TrainLow)
	require.NotNil(t, got.AverageHeartrate)
	assert.Equal(t, 142.0, *got.AverageHeartrate)
	assert.Nil(t, got.AverageWatts)

	// Manual workouts get their own external ID
	manualID, err := s.UpsertWorkout(Workout{Date: "2024-06-01", Title: "Intervals", Start: "17:30", DurationSeconds: 3600, Intensity: 0.9})
	require.NoError(t, err)
	manual, err := s.GetWorkout(manualID)
	require.NoError(t, err)
	assert.Equal(t, SourceManual, manual.Source)
	assert.Equal(t, manualID, manual.ExternalID)

	day, err := s.GetWorkoutsForDate("2024-06-01")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "17:30", day[0].Start, "raw start strings sort as text")

	counts, err := s.CountWorkouts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{SourceStrava: 1, SourceManual: 1}, counts)

	require.NoError(t, s.DeleteWorkout(id))
	_, err = s.GetWorkout(id)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
	assert.ErrorIs(t, s.DeleteWorkout(id), ErrWorkoutNotFound)
}

func TestDayStates(t *testing.T) {
	s := NewTestStore(t)

	_, err := s.GetDayState("2024-06-01")
	assert.ErrorIs(t, err, ErrDayStateNotFound)

	require.NoError(t, s.SaveDayState(DayState{Date: "2024-05-30", Percentage: 62, FluidDeficit: 300}))
	require.NoError(t, s.SaveDayState(DayState{Date: "2024-05-31", Percentage: 70, FluidDeficit: 0}))
	require.NoError(t, s.SaveDayState(DayState{Date: "2024-06-01", Percentage: 55, FluidDeficit: 120}))

	st, err := s.GetDayState("2024-05-31")
	require.NoError(t, err)
	assert.Equal(t, 70.0, st.Percentage)
	assert.False(t, st.ComputedAt.IsZero())

	prev, err := s.GetLatestDayStateBefore("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-31", prev.Date)

	_, err = s.GetLatestDayStateBefore("2024-05-30")
	assert.ErrorIs(t, err, ErrDayStateNotFound)

	// Recomputing a day overwrites it
	require.NoError(t, s.SaveDayState(DayState{Date: "2024-05-31", Percentage: 48, FluidDeficit: 800}))
	st, err = s.GetDayState("2024-05-31")
	require.NoError(t, err)
	assert.Equal(t, 48.0, st.Percentage)
	assert.Equal(t, 800.0, st.FluidDeficit)
}

func TestAuth(t *testing.T) {
	s := NewTestStore(t)

	_, err := s.GetAuth()
	assert.ErrorIs(t, err, ErrNoAuth)
	assert.ErrorIs(t, s.UpdateTokens("a", "r", time.Now()), ErrNoAuth)

	expires := time.Unix(1717228800, 0)
	require.NoError(t, s.SaveAuth(&Auth{AthleteID: 7, AccessToken: "a1", RefreshToken: "r1", ExpiresAt: expires}))
	require.NoError(t, s.UpdateTokens("a2", "r2", expires.Add(6*time.Hour)))

	auth, err := s.GetAuth()
	require.NoError(t, err)
	assert.Equal(t, int64(7), auth.AthleteID)
	assert.Equal(t, "a2", auth.AccessToken)
	assert.Equal(t, "r2", auth.RefreshToken)
	assert.True(t, auth.ExpiresAt.Equal(expires.Add(6*time.Hour)))

	require.NoError(t, s.ClearAuth())
	_, err = s.GetAuth()
	assert.ErrorIs(t, err, ErrNoAuth)
}

func TestSyncState(t *testing.T) {
	s := NewTestStore(t)

	v, err := s.GetSyncState("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	ts, err := s.GetSyncTime(SyncKeyLastStravaSync)
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	when := time.Unix(1717300000, 0)
	require.NoError(t, s.SetSyncTime(SyncKeyLastStravaSync, when))
	ts, err = s.GetSyncTime(SyncKeyLastStravaSync)
	require.NoError(t, err)
	assert.True(t, ts.Equal(when))
}
