package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fuelwave/internal/energy"
	"fuelwave/internal/fitfile"
	"fuelwave/internal/logger"
	"fuelwave/internal/store"
	"fuelwave/internal/strava"
)

// ErrNoStrava is returned by SyncAll when no Strava client is configured
var ErrNoStrava = errors.New("strava is not configured")

// ActivityLister is the part of the Strava client the sync needs
type ActivityLister interface {
	GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.Activity, error)
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

// SyncService imports completed workouts from Strava and FIT files
type SyncService struct {
	client ActivityLister
	store  *store.Store
	zones  energy.HRZones
	ftp    float64
	loc    *time.Location
	log    *logger.Logger
	now    func() time.Time
}

// NewSyncService creates a new sync service. client may be nil when Strava
// is not configured; FIT imports still work.
func NewSyncService(client ActivityLister, st *store.Store, zones energy.HRZones, ftp float64, loc *time.Location, log *logger.Logger) *SyncService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SyncService{
		client: client,
		store:  st,
		zones:  zones,
		ftp:    ftp,
		loc:    loc,
		log:    log,
		now:    time.Now,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase     string // "activities", "fit"
	Total     int
	Completed int
	Current   string
	Error     error
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	WorkoutsStored    int
	Skipped           int
	Errors            []error
}

// HasStrava reports whether a Strava client is configured
func (s *SyncService) HasStrava() bool {
	return s.client != nil
}

// SyncAll fetches activities newer than the last sync and stores them as
// completed workouts. progress is closed when SyncAll returns.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}
	result := &SyncResult{}
	if s.client == nil {
		return result, ErrNoStrava
	}

	after, err := s.store.GetSyncTime(store.SyncKeyLastActivity)
	if err != nil {
		return result, fmt.Errorf("reading sync state: %w", err)
	}
	startedAt := s.now()
	latest := after

	send(progress, SyncProgress{Phase: "activities"})

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		activities, err := s.client.GetActivities(ctx, after, page, strava.PerPage)
		if err != nil {
			return result, fmt.Errorf("fetching page %d: %w", page, err)
		}
		result.ActivitiesFetched += len(activities)

		for _, a := range activities {
			if a.MovingTime <= 0 && a.ElapsedTime <= 0 {
				result.Skipped++
				continue
			}
			w := workoutFromActivity(a, s.zones, s.ftp, s.loc)
			if _, err := s.store.UpsertWorkout(w); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.WorkoutsStored++
			if a.StartDate.After(latest) {
				latest = a.StartDate
			}
			send(progress, SyncProgress{
				Phase:     "activities",
				Total:     result.ActivitiesFetched,
				Completed: result.WorkoutsStored,
				Current:   a.Name,
			})
		}

		if len(activities) < strava.PerPage {
			break // Last page
		}
	}

	if latest.After(after) {
		if err := s.store.SetSyncTime(store.SyncKeyLastActivity, latest); err != nil {
			return result, fmt.Errorf("saving sync state: %w", err)
		}
	}
	if err := s.store.SetSyncTime(store.SyncKeyLastStravaSync, startedAt); err != nil {
		return result, fmt.Errorf("saving sync state: %w", err)
	}

	s.log.Info("strava sync finished",
		"fetched", result.ActivitiesFetched,
		"stored", result.WorkoutsStored,
		"errors", len(result.Errors))
	return result, nil
}

// ImportFIT stores every session of the FIT files at paths. A file that
// cannot be read is recorded in the result and the rest continue.
func (s *SyncService) ImportFIT(paths []string, progress chan<- SyncProgress) *SyncResult {
	if progress != nil {
		defer close(progress)
	}
	result := &SyncResult{}

	for i, path := range paths {
		send(progress, SyncProgress{Phase: "fit", Total: len(paths), Completed: i, Current: path})

		sessions, err := fitfile.ReadFile(path)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.ActivitiesFetched += len(sessions)

		for _, sess := range sessions {
			if _, err := s.store.UpsertWorkout(workoutFromSession(sess, s.zones, s.ftp, s.loc)); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("%s: storing session: %w", path, err))
				continue
			}
			result.WorkoutsStored++
		}
	}

	s.log.Info("fit import finished", "files", len(paths), "stored", result.WorkoutsStored, "errors", len(result.Errors))
	return result
}

// LastSync returns when Strava was last synced, zero if never
func (s *SyncService) LastSync() time.Time {
	t, err := s.store.GetSyncTime(store.SyncKeyLastStravaSync)
	if err != nil {
		s.log.Warn("reading last sync time", "error", err)
	}
	return t
}

// WorkoutCounts returns stored workouts per source
func (s *SyncService) WorkoutCounts() (map[string]int, error) {
	return s.store.CountWorkouts()
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	if s.client == nil {
		return 0, 0
	}
	return s.client.RateLimitStatus()
}

func send(progress chan<- SyncProgress, p SyncProgress) {
	if progress != nil {
		progress <- p
	}
}
