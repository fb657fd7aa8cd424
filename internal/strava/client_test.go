package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const activitiesJSON = `[
  {
    "id": 11,
    "athlete": {"id": 7},
    "name": "Lunch Ride",
    "type": "Ride",
    "sport_type": "Ride",
    "start_date": "2024-06-01T10:00:00Z",
    "start_date_local": "2024-06-01T12:00:00Z",
    "timezone": "(GMT+01:00) Europe/Berlin",
    "moving_time": 5400,
    "elapsed_time": 5700,
    "average_heartrate": 141.5,
    "has_heartrate": true,
    "average_watts": 190,
    "weighted_average_watts": 205,
    "device_watts": true
  }
]`

func TestGetActivities(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/athlete/activities" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("X-RateLimit-Usage", "3,30")
		w.Write([]byte(activitiesJSON))
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.Client(), srv.URL)
	after := time.Unix(1717200000, 0)

	activities, err := c.GetActivities(context.Background(), after, 2, 50)
	if err != nil {
		t.Fatalf("GetActivities() error = %v", err)
	}
	if gotQuery != "after=1717200000&page=2&per_page=50" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(activities) != 1 {
		t.Fatalf("got %d activities, want 1", len(activities))
	}

	a := activities[0]
	if a.ID != 11 || a.Athlete.ID != 7 || a.MovingTime != 5400 {
		t.Errorf("activity = %+v", a)
	}
	if a.Watts() != 205 {
		t.Errorf("Watts() = %v, want weighted 205", a.Watts())
	}

	short, daily := c.RateLimitStatus()
	if short != 97 || daily != 970 {
		t.Errorf("RateLimitStatus() = %d, %d, want 97, 970", short, daily)
	}
}

func TestGetActivitiesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Authorization Error"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.Client(), srv.URL)
	_, err := c.GetActivities(context.Background(), time.Time{}, 1, PerPage)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
}

func TestActivityWatts(t *testing.T) {
	tests := []struct {
		name string
		a    Activity
		want float64
	}{
		{"estimated power ignored", Activity{AverageWatts: 180}, 0},
		{"average without weighted", Activity{AverageWatts: 180, DeviceWatts: true}, 180},
		{"weighted preferred", Activity{AverageWatts: 180, WeightedAverageWatts: 200, DeviceWatts: true}, 200},
	}
	for _, tt := range tests {
		if got := tt.a.Watts(); got != tt.want {
			t.Errorf("%s: Watts() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestActivityLocation(t *testing.T) {
	if loc := (Activity{}).Location(); loc != time.UTC {
		t.Errorf("empty timezone = %v, want UTC", loc)
	}
	if loc := (Activity{Timezone: "(GMT+00:00) Nowhere/Special"}).Location(); loc != time.UTC {
		t.Errorf("unknown timezone = %v, want UTC", loc)
	}
	if _, err := time.LoadLocation("America/Denver"); err != nil {
		t.Skip("tzdata not available")
	}
	loc := (Activity{Timezone: "(GMT-07:00) America/Denver"}).Location()
	if loc.String() != "America/Denver" {
		t.Errorf("Location() = %v, want America/Denver", loc)
	}
}
