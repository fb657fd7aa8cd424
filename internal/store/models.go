package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// NutritionDay holds the day-level nutrition figures
type NutritionDay struct {
	Date       string  `db:"date"` // YYYY-MM-DD
	CarbGoal   float64 `db:"carb_goal"`
	TotalCarbs float64 `db:"total_carbs"`
}

// FoodItem is one logged food or drink
type FoodItem struct {
	ID       string  `db:"id"` // uuid
	Date     string  `db:"date"`
	Meal     string  `db:"meal"`
	Name     string  `db:"name"`
	Carbs    float64 `db:"carbs"`    // grams
	Protein  float64 `db:"protein"`  // grams
	Fat      float64 `db:"fat"`      // grams
	Calories float64 `db:"calories"` // kcal, 0 = derive from macros
	FluidMl  float64 `db:"fluid_ml"`
	LoggedAt string  `db:"logged_at"` // as entered: RFC3339, HH:MM, date or empty
	Profile  string  `db:"profile"`
}

// Workout sources
const (
	SourceManual = "manual"
	SourceStrava = "strava"
	SourceFIT    = "fit"
)

// Workout is a planned or completed training session
type Workout struct {
	ID               string   `db:"id"` // uuid
	Source           string   `db:"source"`
	ExternalID       string   `db:"external_id"` // id in the source system
	Date             string   `db:"date"`        // local day the session belongs to
	Title            string   `db:"title"`
	Start            string   `db:"start"` // raw start time, same forms as FoodItem.LoggedAt
	DurationSeconds  int      `db:"duration_seconds"`
	Intensity        float64  `db:"intensity"`
	Completed        bool     `db:"completed"`
	TrainLow         bool     `db:"train_low"`
	AverageHeartrate *float64 `db:"average_heartrate"` // nullable
	AverageWatts     *float64 `db:"average_watts"`     // nullable
}

// DayState is the tank state saved at the end of a computed day
type DayState struct {
	Date         string    `db:"date"`
	Percentage   float64   `db:"percentage"`
	FluidDeficit float64   `db:"fluid_deficit"`
	ComputedAt   time.Time `db:"computed_at"`
}
