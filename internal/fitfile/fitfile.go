// Package fitfile reads completed sessions from FIT activity files.
package fitfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/tormoder/fit"
)

// ErrNoSessions is returned for activity files without a session message
var ErrNoSessions = errors.New("no sessions in activity file")

// Session is one recorded session of an activity file
type Session struct {
	Sport           string
	Start           time.Time
	DurationSeconds int
	AvgHeartRate    float64 // 0 when not recorded
	AvgWatts        float64 // normalized power when present
	ThresholdPower  float64 // FTP stored by the head unit, 0 when absent
}

// ReadFile decodes the sessions of the FIT file at path
func ReadFile(path string) ([]Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sessions, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return sessions, nil
}

// Decode reads an activity FIT stream and returns its sessions
func Decode(r io.Reader) ([]Session, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding fit: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("not an activity file: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return nil, ErrNoSessions
	}

	sessions := make([]Session, 0, len(activity.Sessions))
	for i, msg := range activity.Sessions {
		s, err := fromMsg(msg)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func fromMsg(m *fit.SessionMsg) (Session, error) {
	if m.StartTime.IsZero() || m.StartTime.Year() < 1990 {
		return Session{}, errors.New("missing start time")
	}

	duration := m.GetTotalTimerTimeScaled()
	if math.IsNaN(duration) || duration <= 0 {
		duration = m.GetTotalElapsedTimeScaled()
	}
	if math.IsNaN(duration) || duration <= 0 {
		return Session{}, errors.New("missing duration")
	}

	s := Session{
		Sport:           sportName(m.Sport),
		Start:           m.StartTime,
		DurationSeconds: int(math.Round(duration)),
	}
	if m.AvgHeartRate != 0 && m.AvgHeartRate != math.MaxUint8 {
		s.AvgHeartRate = float64(m.AvgHeartRate)
	}
	switch {
	case m.NormalizedPower != 0 && m.NormalizedPower != math.MaxUint16:
		s.AvgWatts = float64(m.NormalizedPower)
	case m.AvgPower != 0 && m.AvgPower != math.MaxUint16:
		s.AvgWatts = float64(m.AvgPower)
	}
	if m.ThresholdPower != 0 && m.ThresholdPower != math.MaxUint16 {
		s.ThresholdPower = float64(m.ThresholdPower)
	}
	return s, nil
}

func sportName(sport fit.Sport) string {
	switch sport {
	case fit.SportCycling:
		return "Ride"
	case fit.SportRunning:
		return "Run"
	case fit.SportSwimming:
		return "Swim"
	case fit.SportRowing:
		return "Row"
	case fit.SportCrossCountrySkiing:
		return "Nordic Ski"
	case fit.SportWalking, fit.SportHiking:
		return "Walk"
	}
	return "Workout"
}

// Title names the session the way it shows in the day view, with the start
// clock in loc
func (s Session) Title(loc *time.Location) string {
	return fmt.Sprintf("%s %s", s.Sport, s.Start.In(loc).Format("15:04"))
}
