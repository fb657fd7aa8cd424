package service

import "time"

const (
	// HR validation thresholds
	MinValidHeartrate = 50
	MaxValidHeartrate = 220

	// Forecast horizon
	DefaultForecastDays = 3
	MaxForecastDays     = 14

	// A completed session starting this close to a planned one replaces it
	PlannedMatchWindow = 2 * time.Hour
)
