package energy

import (
	"fmt"
	"math"
	"time"
)

// Model constants
const (
	DefaultBMR      = 1600.0 // kcal/day
	DefaultWeightKg = 75.0

	GlycogenGramsPerKg      = 8.0  // tank capacity per kg bodyweight
	MidnightBaselinePercent = 85.0 // assumed tank level at local midnight
	MinTankPercent          = 5.0
	MaxTankPercent          = 100.0
	MaxReplenishmentPercent = 20.0

	RestingCarbShare       = 0.4 // share of BMR covered by carbohydrate
	RestingKcalFactor      = 1.2 // BMR multiplier for daily resting kcal burn
	KcalPerGramCarb        = 4.0
	WorkoutDrainMultiplier = 1.25
	MaxInflowPerStep       = 25.0 // grams absorbed per step, at most

	StepMinutes   = 15
	MinutesPerDay = 1440.0

	DefaultCarbGoalPerKg     = 5.0   // g/kg/day when the record has no goal
	DefaultGutCarbCeiling    = 60.0  // g/h
	DefaultSweatRateLPerHour = 0.8
	DefaultSodiumMgPerL      = 700.0
	DefaultPreWindowMinutes  = 180
	DefaultPostWindowMinutes = 120
)

// MealSlot is one entry of a user's meal-time pattern
type MealSlot struct {
	Name    string   `json:"name"`
	Time    string   `json:"time"` // HH:MM
	Aliases []string `json:"aliases,omitempty"`
}

// DefaultMealPattern is the standard four-slot day
func DefaultMealPattern() []MealSlot {
	return []MealSlot{
		{Name: "breakfast", Time: "07:00"},
		{Name: "lunch", Time: "12:00"},
		{Name: "dinner", Time: "18:00"},
		{Name: "snack", Time: "15:00"},
	}
}

// Settings are the athlete parameters the model runs against.
// Zero values fall back to documented defaults.
type Settings struct {
	BMR               float64
	WeightKg          float64
	Timezone          string // IANA name
	MealPattern       []MealSlot
	GutCarbCeiling    float64 // g carbs per hour the gut is trained for
	SweatRateLPerHour float64
	SodiumMgPerL      float64
	PreWindowMinutes  int
	PostWindowMinutes int
	TrainLow          bool        // suppress carbs around every session
	Classifier        *Classifier // nil uses DefaultClassifier
}

// DefaultSettings returns settings with every default filled in
func DefaultSettings() Settings {
	return Settings{}.WithDefaults()
}

// WithDefaults returns a copy with zero or invalid fields replaced by defaults
func (s Settings) WithDefaults() Settings {
	if s.BMR <= 0 || math.IsNaN(s.BMR) {
		s.BMR = DefaultBMR
	}
	if s.WeightKg <= 0 || math.IsNaN(s.WeightKg) {
		s.WeightKg = DefaultWeightKg
	}
	if s.Timezone == "" {
		s.Timezone = "UTC"
	}
	if len(s.MealPattern) == 0 {
		s.MealPattern = DefaultMealPattern()
	}
	if s.GutCarbCeiling <= 0 {
		s.GutCarbCeiling = DefaultGutCarbCeiling
	}
	if s.SweatRateLPerHour <= 0 {
		s.SweatRateLPerHour = DefaultSweatRateLPerHour
	}
	if s.SodiumMgPerL <= 0 {
		s.SodiumMgPerL = DefaultSodiumMgPerL
	}
	if s.PreWindowMinutes <= 0 {
		s.PreWindowMinutes = DefaultPreWindowMinutes
	}
	if s.PostWindowMinutes <= 0 {
		s.PostWindowMinutes = DefaultPostWindowMinutes
	}
	return s
}

func (s Settings) classifier() Classifier {
	if s.Classifier != nil {
		return *s.Classifier
	}
	return DefaultClassifier()
}

// Location resolves the configured timezone, falling back to UTC
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CapacityGrams is the full-tank glycogen store
func (s Settings) CapacityGrams() float64 {
	w := s.WeightKg
	if w <= 0 {
		w = DefaultWeightKg
	}
	return w * GlycogenGramsPerKg
}

// RestingCarbGramsPerMinute is the carbohydrate share of resting metabolism
func (s Settings) RestingCarbGramsPerMinute() float64 {
	return s.BMR * RestingCarbShare / KcalPerGramCarb / MinutesPerDay
}

// RestingKcalPerMinute is the whole-body resting energy burn
func (s Settings) RestingKcalPerMinute() float64 {
	return s.BMR * RestingKcalFactor / MinutesPerDay
}

// Date is a calendar day without a zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// AddDays returns the date n days later
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// Start returns local midnight of the date in loc
func (d Date) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// DayRange is the half-open span [Start, End) of one local day
type DayRange struct {
	Start time.Time
	End   time.Time
}

// Range returns the local day span, 23 or 25 hours long across DST changes
func (d Date) Range(loc *time.Location) DayRange {
	start := d.Start(loc)
	return DayRange{Start: start, End: d.AddDays(1).Start(loc)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
