package strava

import "time"

// Activity represents a Strava activity summary from /athlete/activities
type Activity struct {
	ID                   int64     `json:"id"`
	Athlete              Athlete   `json:"athlete"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	SportType            string    `json:"sport_type"`
	StartDate            time.Time `json:"start_date"`
	StartDateLocal       time.Time `json:"start_date_local"`
	Timezone             string    `json:"timezone"` // "(GMT+01:00) Europe/Berlin"
	Distance             float64   `json:"distance"`     // meters
	MovingTime           int       `json:"moving_time"`  // seconds
	ElapsedTime          int       `json:"elapsed_time"` // seconds
	AverageHeartrate     float64   `json:"average_heartrate"`
	MaxHeartrate         float64   `json:"max_heartrate"`
	HasHeartrate         bool      `json:"has_heartrate"`
	AverageWatts         float64   `json:"average_watts"`
	WeightedAverageWatts float64   `json:"weighted_average_watts"`
	DeviceWatts          bool      `json:"device_watts"`
	Kilojoules           float64   `json:"kilojoules"`
	Trainer              bool      `json:"trainer"`
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Watts returns the best available power figure, preferring weighted
// average from a power meter. Estimated power is ignored.
func (a Activity) Watts() float64 {
	if !a.DeviceWatts {
		return 0
	}
	if a.WeightedAverageWatts > 0 {
		return a.WeightedAverageWatts
	}
	return a.AverageWatts
}

// Location extracts the IANA zone from Strava's "(GMT+01:00) Europe/Berlin"
// format. Unknown zones give UTC.
func (a Activity) Location() *time.Location {
	name := a.Timezone
	for i := 0; i < len(name); i++ {
		if name[i] == ' ' && i > 0 && name[i-1] == ')' {
			name = name[i+1:]
			break
		}
	}
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
