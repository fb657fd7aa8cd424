package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fuelwave/internal/energy"
	"fuelwave/internal/logger"
	"fuelwave/internal/store"
)

// PlannerService assembles stored logs into model inputs and runs the
// glycogen, timeline and fueling-window calculations for the TUI
type PlannerService struct {
	store    *store.Store
	settings energy.Settings
	log      *logger.Logger
	now      func() time.Time
}

// NewPlannerService creates a new planner service
func NewPlannerService(st *store.Store, s energy.Settings, log *logger.Logger) *PlannerService {
	if log == nil {
		log = logger.Nop()
	}
	return &PlannerService{
		store:    st,
		settings: s.WithDefaults(),
		log:      log,
		now:      time.Now,
	}
}

// Settings returns the model settings in use
func (p *PlannerService) Settings() energy.Settings {
	return p.settings
}

// Today returns the current local date
func (p *PlannerService) Today() energy.Date {
	return energy.DateOf(p.now().In(p.settings.Location()))
}

// DayView is everything the day screens show for one date
type DayView struct {
	Date     energy.Date
	Now      time.Time
	Glycogen energy.GlycogenResult
	Timeline energy.DayTimeline
	Plan     energy.DayPlan
	Progress []energy.WindowProgress // one per Plan.Windows entry
	Chained  bool                    // started from the previous day's ending state
}

// Current returns the timeline point nearest to the view's clock
func (v *DayView) Current() (energy.EnergyPoint, bool) {
	return v.Timeline.Nearest(v.Now)
}

// ActiveWindow returns the index of the window containing the view's clock, or -1
func (v *DayView) ActiveWindow() int {
	for i, w := range v.Plan.Windows {
		if w.Contains(v.Now) {
			return i
		}
	}
	return -1
}

// DayInput loads the stored record and workouts of a date
func (p *PlannerService) DayInput(date energy.Date) (energy.DayInput, error) {
	key := date.String()

	day, err := p.store.GetNutritionDay(key)
	if err != nil {
		return energy.DayInput{}, fmt.Errorf("loading nutrition day %s: %w", key, err)
	}
	items, err := p.store.GetFoodItems(key)
	if err != nil {
		return energy.DayInput{}, fmt.Errorf("loading food items %s: %w", key, err)
	}
	stored, err := p.store.GetWorkoutsForDate(key)
	if err != nil {
		return energy.DayInput{}, fmt.Errorf("loading workouts %s: %w", key, err)
	}

	return energy.DayInput{
		Record:   nutritionRecord(date, day, items),
		Workouts: dayWorkouts(date, stored, p.settings.Location()),
	}, nil
}

// StartState returns the saved ending state of the day before date, or nil
// when that day was never computed
func (p *PlannerService) StartState(date energy.Date) (*energy.ChainedState, error) {
	st, err := p.store.GetDayState(date.AddDays(-1).String())
	if errors.Is(err, store.ErrDayStateNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading day state: %w", err)
	}
	return &energy.ChainedState{Percentage: st.Percentage, FluidDeficit: st.FluidDeficit}, nil
}

// Day computes one date. The previous day is recomputed first so that edits
// to yesterday's log carry into today's starting level.
func (p *PlannerService) Day(ctx context.Context, date energy.Date) (*DayView, error) {
	views, err := p.Forecast(ctx, date.AddDays(-1), 2)
	if err != nil {
		return nil, err
	}
	return views[1], nil
}

// Forecast computes days consecutive dates from start, chaining each day's
// ending level into the next, and saves every ending state
func (p *PlannerService) Forecast(ctx context.Context, start energy.Date, days int) ([]*DayView, error) {
	if days <= 0 {
		days = DefaultForecastDays
	}
	if days > MaxForecastDays {
		days = MaxForecastDays
	}

	inputs := make([]energy.DayInput, days)
	for i := range inputs {
		in, err := p.DayInput(start.AddDays(i))
		if err != nil {
			return nil, err
		}
		inputs[i] = in
	}

	seed, err := p.StartState(start)
	if err != nil {
		return nil, err
	}

	now := p.now()
	timelines := energy.Forecast(inputs, p.settings, seed, now)

	views := make([]*DayView, days)
	g, gctx := errgroup.WithContext(ctx)
	for i := range inputs {
		i := i
		views[i] = &DayView{
			Date:     inputs[i].Record.Date,
			Now:      now,
			Timeline: timelines[i],
			Chained:  i > 0 || seed != nil,
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in := inputs[i]
			v := views[i]
			v.Glycogen = energy.GlycogenState(in.Record, in.Workouts, p.settings, p.glycogenClock(in.Record.Date, now))
			v.Plan = energy.PlanDay(in.Record, in.Workouts, p.settings)
			v.Progress = make([]energy.WindowProgress, len(v.Plan.Windows))
			for j, w := range v.Plan.Windows {
				v.Progress[j] = energy.Progress(w)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, v := range views {
		if err := p.saveEndingState(v); err != nil {
			return nil, err
		}
		if n := len(v.Timeline.Unscheduled); n > 0 {
			p.log.Warn("unscheduled events", "date", v.Date.String(), "count", n)
		}
	}

	p.log.Debug("forecast computed", "start", start.String(), "days", days, "seeded", seed != nil)
	return views, nil
}

// glycogenClock picks the instant the tank snapshot is taken: now for today,
// the end of past days and midnight of future days
func (p *PlannerService) glycogenClock(date energy.Date, now time.Time) time.Time {
	day := date.Range(p.settings.Location())
	switch {
	case now.Before(day.Start):
		return day.Start
	case !now.Before(day.End):
		return day.End
	}
	return now
}

func (p *PlannerService) saveEndingState(v *DayView) error {
	last, ok := v.Timeline.Last()
	if !ok {
		return nil
	}
	err := p.store.SaveDayState(store.DayState{
		Date:         v.Date.String(),
		Percentage:   last.LevelPercent,
		FluidDeficit: last.FluidDeficit,
	})
	if err != nil {
		return fmt.Errorf("saving day state %s: %w", v.Date, err)
	}
	return nil
}

// LogFood stores a food item
func (p *PlannerService) LogFood(item store.FoodItem) (*store.FoodItem, error) {
	saved, err := p.store.AddFoodItem(item)
	if err != nil {
		return nil, err
	}
	p.log.Info("food logged", "date", saved.Date, "meal", saved.Meal, "name", saved.Name, "carbs", saved.Carbs)
	return saved, nil
}

// PlanWorkout stores a planned workout
func (p *PlannerService) PlanWorkout(w store.Workout) (string, error) {
	id, err := p.store.UpsertWorkout(w)
	if err != nil {
		return "", err
	}
	p.log.Info("workout planned", "date", w.Date, "title", w.Title, "start", w.Start)
	return id, nil
}

// SetCarbGoal stores the day's carbohydrate goal, keeping any flat total
func (p *PlannerService) SetCarbGoal(date energy.Date, grams float64) error {
	day, err := p.store.GetNutritionDay(date.String())
	if err != nil {
		return err
	}
	day.CarbGoal = grams
	return p.store.SaveNutritionDay(day)
}
