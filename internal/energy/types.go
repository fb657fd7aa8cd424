package energy

import "time"

// FoodIntakeEvent is a single logged food or drink
type FoodIntakeEvent struct {
	ID           string
	Name         string
	CarbsGrams   float64
	ProteinGrams float64
	FatGrams     float64
	CaloriesKcal float64
	FluidMl      float64
	LoggedAt     RawTime
	Profile      string // absorption profile ID; empty means classify by name
}

// MealBucket groups the items logged under one meal slot ("breakfast", "snack", ...)
type MealBucket struct {
	Name  string
	Items []FoodIntakeEvent
}

// NutritionRecord is one day of logged nutrition
type NutritionRecord struct {
	Date            Date
	Meals           []MealBucket
	CarbGoalGrams   float64
	TotalCarbsGrams float64 // flat daily total, used when no item carries a usable time
}

// WorkoutEvent is a completed or planned training session
type WorkoutEvent struct {
	ID              string
	Title           string
	Start           RawTime
	DurationSeconds int
	Intensity       float64 // fraction of threshold, 0-1
	Completed       bool
	TrainLow        bool
	Source          string // "manual", "strava", "fit"
}

// DurationMinutes returns the session length in minutes, never negative
func (w WorkoutEvent) DurationMinutes() float64 {
	if w.DurationSeconds <= 0 {
		return 0
	}
	return float64(w.DurationSeconds) / 60.0
}

// EventKind identifies what an annotation or unscheduled entry refers to
type EventKind string

const (
	EventMeal    EventKind = "meal"
	EventWorkout EventKind = "workout"
)

// EventAnnotation marks meals and workouts on a timeline point
type EventAnnotation struct {
	Kinds []EventKind
	Icon  string
	Label string
}

// EnergyPoint is one simulation step of the energy wave
type EnergyPoint struct {
	TimeLabel    string
	Timestamp    time.Time
	LevelPercent float64
	KcalBalance  float64
	CarbBalance  float64
	FluidDeficit float64 // ml
	IsFuture     bool
	Event        *EventAnnotation
}

// UnscheduledEvent is a logged item whose time could not be resolved.
// It is left out of time-based calculations.
type UnscheduledEvent struct {
	Kind   EventKind
	Name   string
	Slot   string
	Raw    string
	Reason string
}

// ChainedState carries a day's ending state into the next day
type ChainedState struct {
	Percentage   float64
	FluidDeficit float64
}

// ChainFrom builds the next day's starting state from a day's last point
func ChainFrom(p EnergyPoint) *ChainedState {
	return &ChainedState{
		Percentage:   p.LevelPercent,
		FluidDeficit: p.FluidDeficit,
	}
}

// Replenishment is the carbohydrate bonus term of the glycogen breakdown
type Replenishment struct {
	Value       float64
	ActualCarbs float64
	TargetCarbs float64
}

// DepletionEvent is one workout's drain on the tank
type DepletionEvent struct {
	Title       string
	Value       float64
	Intensity   float64
	DurationMin float64
}

// GlycogenBreakdown exposes every term behind a glycogen percentage
type GlycogenBreakdown struct {
	MidnightBaselinePercent float64
	Replenishment           Replenishment
	DepletionEvents         []DepletionEvent
	RestingMetabolismDrop   float64
}

// Total recomputes the rounded, clamped percentage from the breakdown terms
func (b GlycogenBreakdown) Total() float64 {
	total := b.MidnightBaselinePercent + b.Replenishment.Value - b.RestingMetabolismDrop
	for _, d := range b.DepletionEvents {
		total -= d.Value
	}
	return clamp(roundTo(total, 0), MinTankPercent, MaxTankPercent)
}

// WindowType classifies a fueling window
type WindowType string

const (
	WindowPreWorkout   WindowType = "PRE_WORKOUT"
	WindowIntraWorkout WindowType = "INTRA_WORKOUT"
	WindowPostWorkout  WindowType = "POST_WORKOUT"
	WindowTransition   WindowType = "TRANSITION"
	WindowDailyBase    WindowType = "DAILY_BASE"
)

// FuelingWindow is a time-bounded nutrition target
type FuelingWindow struct {
	Type           WindowType
	Start          time.Time
	End            time.Time
	TargetCarbs    float64
	TargetProtein  float64
	TargetFat      float64
	TargetFluidMl  float64
	TargetSodiumMg float64
	Description    string
	WorkoutIDs     []string
	WorkoutTitles  []string
	Foods          []FoodIntakeEvent
}

// Duration returns the window length
func (w FuelingWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls in [Start, End)
func (w FuelingWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
