package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	tea "github.com/charmbracelet/bubbletea"

	"fuelwave/internal/auth"
	"fuelwave/internal/config"
	"fuelwave/internal/energy"
	"fuelwave/internal/logger"
	"fuelwave/internal/service"
	"fuelwave/internal/store"
	"fuelwave/internal/strava"
	"fuelwave/internal/tui"
)

type options struct {
	date        string
	days        int
	print       bool
	sync        bool
	noStrava    bool
	logMode     string
	carbGoal    float64
	importFIT   []string
	logFood     []string
	planWorkout []string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() options {
	var o options
	fs := pflag.CommandLine
	fs.StringVarP(&o.date, "date", "d", "", "day to show, YYYY-MM-DD (default today)")
	fs.IntVar(&o.days, "days", service.DefaultForecastDays, "number of days in the forecast")
	fs.BoolVarP(&o.print, "print", "p", false, "print the day summary instead of starting the TUI")
	fs.BoolVar(&o.sync, "sync", false, "sync completed workouts from Strava and exit")
	fs.BoolVar(&o.noStrava, "no-strava", false, "do not connect to Strava")
	fs.StringVar(&o.logMode, "log-mode", "", "log mode: dev or prod (overrides config)")
	fs.Float64Var(&o.carbGoal, "carb-goal", 0, "set the day's carbohydrate goal in grams")
	fs.StringArrayVar(&o.importFIT, "import-fit", nil, "import a FIT activity file (repeatable)")
	fs.StringArrayVar(&o.logFood, "log-food", nil, `log food as "meal,name,carbs[,time[,fluid_ml]]" (repeatable)`)
	fs.StringArrayVar(&o.planWorkout, "plan-workout", nil, `plan a workout as "title,start,minutes,intensity" (repeatable)`)
	pflag.Parse()
	return o
}

func run() error {
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("Set your weight, BMR, timezone and meal times.")
		fmt.Println("Strava credentials are optional: https://www.strava.com/settings/api")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	mode := cfg.Log.Mode
	if opts.logMode != "" {
		mode = opts.logMode
	}
	lg, err := logger.New(mode, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer lg.Sync()

	settings, err := cfg.Settings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	// Open database
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Strava is optional; FIT imports and manual logs work without it
	var lister service.ActivityLister
	if !opts.noStrava {
		if err := cfg.ValidateStrava(); err != nil {
			lg.Info("strava not configured", "reason", err)
		} else {
			client, err := connectStrava(ctx, db, cfg, lg)
			if err != nil {
				return err
			}
			lister = client
		}
	}

	// Create services
	planner := service.NewPlannerService(db, settings, lg)
	syncSvc := service.NewSyncService(lister, db, cfg.Zones(), cfg.Athlete.FTP, settings.Location(), lg)
	units := tui.NewUnits(cfg.Display)

	date := planner.Today()
	if opts.date != "" {
		if date, err = energy.ParseDate(opts.date); err != nil {
			return fmt.Errorf("--date: %w", err)
		}
	}

	changed, err := applyCommands(ctx, opts, date, planner, syncSvc)
	if err != nil {
		return err
	}

	if opts.print {
		return printSummary(ctx, planner, date, opts, units)
	}
	if changed {
		return nil
	}

	// Launch TUI
	app := tui.NewApp(planner, syncSvc, units, date, opts.days)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// applyCommands runs the one-shot flags and reports whether any ran
func applyCommands(ctx context.Context, opts options, date energy.Date, planner *service.PlannerService, syncSvc *service.SyncService) (bool, error) {
	changed := false

	if opts.carbGoal > 0 {
		if err := planner.SetCarbGoal(date, opts.carbGoal); err != nil {
			return changed, fmt.Errorf("setting carb goal: %w", err)
		}
		fmt.Printf("Carb goal for %s set to %.0f g\n", date, opts.carbGoal)
		changed = true
	}

	for _, entry := range opts.logFood {
		item, err := service.ParseFoodEntry(date, entry)
		if err != nil {
			return changed, err
		}
		if _, err := planner.LogFood(item); err != nil {
			return changed, fmt.Errorf("logging food: %w", err)
		}
		fmt.Printf("Logged %s (%.0f g carbs) for %s\n", item.Name, item.Carbs, item.Meal)
		changed = true
	}

	for _, entry := range opts.planWorkout {
		w, err := service.ParseWorkoutEntry(date, entry)
		if err != nil {
			return changed, err
		}
		if _, err := planner.PlanWorkout(w); err != nil {
			return changed, fmt.Errorf("planning workout: %w", err)
		}
		fmt.Printf("Planned %s at %s\n", w.Title, w.Start)
		changed = true
	}

	if len(opts.importFIT) > 0 {
		result := syncSvc.ImportFIT(opts.importFIT, nil)
		fmt.Printf("Imported %d workouts from %d files\n", result.WorkoutsStored, len(opts.importFIT))
		for _, err := range result.Errors {
			fmt.Printf("  %v\n", err)
		}
		changed = true
	}

	if opts.sync {
		result, err := syncSvc.SyncAll(ctx, nil)
		if err != nil {
			return changed, fmt.Errorf("strava sync: %w", err)
		}
		fmt.Printf("Synced %d workouts from Strava\n", result.WorkoutsStored)
		for _, err := range result.Errors {
			fmt.Printf("  %v\n", err)
		}
		changed = true
	}

	return changed, nil
}

func printSummary(ctx context.Context, planner *service.PlannerService, date energy.Date, opts options, units tui.Units) error {
	view, err := planner.Day(ctx, date)
	if err != nil {
		return fmt.Errorf("computing %s: %w", date, err)
	}
	if err := tui.PrintDay(os.Stdout, view, units); err != nil {
		return err
	}

	if !pflag.CommandLine.Changed("days") {
		return nil
	}
	views, err := planner.Forecast(ctx, date, opts.days)
	if err != nil {
		return fmt.Errorf("forecasting: %w", err)
	}
	fmt.Println()
	return tui.PrintForecast(os.Stdout, views, units)
}

// connectStrava returns a client backed by the stored token, running the
// OAuth flow first when there is none or it can no longer be refreshed
func connectStrava(ctx context.Context, db *store.Store, cfg *config.Config, lg *logger.Logger) (*strava.Client, error) {
	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
	})

	// Check for existing auth
	storedAuth, err := db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("No Strava authentication found. Starting OAuth flow...")
		if storedAuth, err = authenticate(ctx, db, oauthCfg); err != nil {
			return nil, fmt.Errorf("authentication: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking auth: %w", err)
	}

	onRefresh := func(newToken *oauth2.Token) error {
		lg.Debug("strava token refreshed", "expires", newToken.Expiry)
		return db.UpdateTokens(newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
	}
	tokenSource := auth.NewTokenSource(oauthCfg, storedToken(storedAuth), onRefresh)

	// Test token is valid by getting a fresh one
	if _, err := tokenSource.Token(); err != nil {
		lg.Warn("stored strava token rejected", "error", err)
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		if storedAuth, err = authenticate(ctx, db, oauthCfg); err != nil {
			return nil, fmt.Errorf("re-authentication: %w", err)
		}
		tokenSource = auth.NewTokenSource(oauthCfg, storedToken(storedAuth), onRefresh)
	}

	return strava.NewClient(tokenSource), nil
}

func storedToken(a *store.Auth) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		Expiry:       a.ExpiresAt,
	}
}

func authenticate(ctx context.Context, db *store.Store, oauthCfg *oauth2.Config) (*store.Auth, error) {
	result, err := auth.Authenticate(ctx, oauthCfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	// Store the tokens
	storedAuth := &store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}

	if err := db.SaveAuth(storedAuth); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}

	fmt.Println()
	fmt.Printf("Successfully authenticated as athlete %d!\n", result.AthleteID)
	return storedAuth, nil
}
