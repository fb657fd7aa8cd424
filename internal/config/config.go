package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fuelwave/internal/energy"
)

// Config represents the application configuration
type Config struct {
	Strava  StravaConfig      `json:"strava"`
	Athlete AthleteConfig     `json:"athlete"`
	Meals   []energy.MealSlot `json:"meals"`
	Display DisplayConfig     `json:"display"`
	Log     LogConfig         `json:"log"`

	// Optional YAML file replacing the built-in food classification rules
	ClassifierRules string `json:"classifier_rules,omitempty"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	RestingHR   float64 `json:"resting_hr"`
	MaxHR       float64 `json:"max_hr"`
	ThresholdHR float64 `json:"threshold_hr"`
	FTP         float64 `json:"ftp,omitempty"`

	BMR      float64 `json:"bmr"`
	WeightKg float64 `json:"weight_kg"`
	Timezone string  `json:"timezone"`

	GutCarbCeiling    float64 `json:"gut_carb_ceiling"`
	SweatRateLPerHour float64 `json:"sweat_rate_l_per_hour"`
	SodiumMgPerL      float64 `json:"sodium_mg_per_l"`
	PreWindowMinutes  int     `json:"pre_window_minutes"`
	PostWindowMinutes int     `json:"post_window_minutes"`
	TrainLow          bool    `json:"train_low"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	FluidUnit  string `json:"fluid_unit"`
	EnergyUnit string `json:"energy_unit"`
}

// LogConfig controls the application log
type LogConfig struct {
	Mode string `json:"mode"`
	File string `json:"file,omitempty"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			RestingHR:         50,
			MaxHR:             185,
			ThresholdHR:       165,
			BMR:               energy.DefaultBMR,
			WeightKg:          energy.DefaultWeightKg,
			Timezone:          "UTC",
			GutCarbCeiling:    energy.DefaultGutCarbCeiling,
			SweatRateLPerHour: energy.DefaultSweatRateLPerHour,
			SodiumMgPerL:      energy.DefaultSodiumMgPerL,
			PreWindowMinutes:  energy.DefaultPreWindowMinutes,
			PostWindowMinutes: energy.DefaultPostWindowMinutes,
		},
		Meals: energy.DefaultMealPattern(),
		Display: DisplayConfig{
			FluidUnit:  "ml",
			EnergyUnit: "kcal",
		},
		Log: LogConfig{Mode: "dev"},
	}
}

// Load reads the configuration from ~/.fuelwave/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills missing values from DefaultConfig
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	a := &c.Athlete
	if a.RestingHR == 0 {
		a.RestingHR = d.Athlete.RestingHR
	}
	if a.MaxHR == 0 {
		a.MaxHR = d.Athlete.MaxHR
	}
	if a.ThresholdHR == 0 {
		a.ThresholdHR = d.Athlete.ThresholdHR
	}
	if a.BMR == 0 {
		a.BMR = d.Athlete.BMR
	}
	if a.WeightKg == 0 {
		a.WeightKg = d.Athlete.WeightKg
	}
	if a.Timezone == "" {
		a.Timezone = d.Athlete.Timezone
	}
	if a.GutCarbCeiling == 0 {
		a.GutCarbCeiling = d.Athlete.GutCarbCeiling
	}
	if a.SweatRateLPerHour == 0 {
		a.SweatRateLPerHour = d.Athlete.SweatRateLPerHour
	}
	if a.SodiumMgPerL == 0 {
		a.SodiumMgPerL = d.Athlete.SodiumMgPerL
	}
	if a.PreWindowMinutes == 0 {
		a.PreWindowMinutes = d.Athlete.PreWindowMinutes
	}
	if a.PostWindowMinutes == 0 {
		a.PostWindowMinutes = d.Athlete.PostWindowMinutes
	}
	if len(c.Meals) == 0 {
		c.Meals = d.Meals
	}
	if c.Display.FluidUnit == "" {
		c.Display.FluidUnit = d.Display.FluidUnit
	}
	if c.Display.EnergyUnit == "" {
		c.Display.EnergyUnit = d.Display.EnergyUnit
	}
	if c.Log.Mode == "" {
		c.Log.Mode = d.Log.Mode
	}
}

// Save writes the configuration to ~/.fuelwave/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}

	return Save(&example)
}

// Validate checks the athlete, meal and display settings
func (c *Config) Validate() error {
	a := c.Athlete
	if a.WeightKg < 0 {
		return fmt.Errorf("athlete.weight_kg must be positive, got %v", a.WeightKg)
	}
	if a.BMR < 0 {
		return fmt.Errorf("athlete.bmr must be positive, got %v", a.BMR)
	}
	if a.Timezone != "" {
		if _, err := time.LoadLocation(a.Timezone); err != nil {
			return fmt.Errorf("athlete.timezone %q is not a known IANA zone", a.Timezone)
		}
	}

	// Validate threshold_hr < max_hr when both are set
	if a.ThresholdHR > 0 && a.MaxHR > 0 && a.ThresholdHR >= a.MaxHR {
		return fmt.Errorf("athlete.threshold_hr (%v) must be less than athlete.max_hr (%v)", a.ThresholdHR, a.MaxHR)
	}

	seen := make(map[string]bool)
	for i, m := range c.Meals {
		if m.Name == "" {
			return fmt.Errorf("meals[%d].name is required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("meals[%d].name %q is duplicated", i, m.Name)
		}
		seen[m.Name] = true
		if _, err := time.Parse("15:04", m.Time); err != nil {
			return fmt.Errorf("meals[%d].time must be HH:MM, got %q", i, m.Time)
		}
	}

	if c.Display.FluidUnit != "" && c.Display.FluidUnit != "ml" && c.Display.FluidUnit != "oz" {
		return fmt.Errorf("display.fluid_unit must be \"ml\" or \"oz\", got %q", c.Display.FluidUnit)
	}
	if c.Display.EnergyUnit != "" && c.Display.EnergyUnit != "kcal" && c.Display.EnergyUnit != "kJ" {
		return fmt.Errorf("display.energy_unit must be \"kcal\" or \"kJ\", got %q", c.Display.EnergyUnit)
	}

	return nil
}

// ValidateStrava checks that real Strava credentials are present
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// Settings converts the athlete section to model settings, loading the
// classifier rules file when one is configured.
func (c *Config) Settings() (energy.Settings, error) {
	a := c.Athlete
	s := energy.Settings{
		BMR:               a.BMR,
		WeightKg:          a.WeightKg,
		Timezone:          a.Timezone,
		MealPattern:       c.Meals,
		GutCarbCeiling:    a.GutCarbCeiling,
		SweatRateLPerHour: a.SweatRateLPerHour,
		SodiumMgPerL:      a.SodiumMgPerL,
		PreWindowMinutes:  a.PreWindowMinutes,
		PostWindowMinutes: a.PostWindowMinutes,
		TrainLow:          a.TrainLow,
	}

	if c.ClassifierRules != "" {
		f, err := os.Open(c.ClassifierRules)
		if err != nil {
			return s, fmt.Errorf("opening classifier rules: %w", err)
		}
		defer f.Close()

		classifier, err := energy.LoadClassifier(f)
		if err != nil {
			return s, fmt.Errorf("loading classifier rules %s: %w", c.ClassifierRules, err)
		}
		s.Classifier = &classifier
	}

	return s.WithDefaults(), nil
}

// Zones returns the heart-rate zones used to estimate workout intensity
func (c *Config) Zones() energy.HRZones {
	return energy.HRZones{
		RestingHR:   c.Athlete.RestingHR,
		MaxHR:       c.Athlete.MaxHR,
		ThresholdHR: c.Athlete.ThresholdHR,
	}
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fuelwave"), nil
}
