package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const workoutColumns = `id, source, external_id, date, title, start, duration_seconds,
	intensity, completed, train_low, average_heartrate, average_watts`

// UpsertWorkout inserts a workout or updates the one with the same source and
// external ID. It returns the stored row's ID.
func (s *Store) UpsertWorkout(w Workout) (string, error) {
	if w.Source == "" {
		w.Source = SourceManual
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.ExternalID == "" {
		w.ExternalID = w.ID
	}

	var id string
	err := s.db.QueryRow(`
		INSERT INTO workouts (`+workoutColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, external_id) DO UPDATE SET
			date = excluded.date,
			title = excluded.title,
			start = excluded.start,
			duration_seconds = excluded.duration_seconds,
			intensity = excluded.intensity,
			completed = excluded.completed,
			train_low = excluded.train_low,
			average_heartrate = excluded.average_heartrate,
			average_watts = excluded.average_watts,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`, w.ID, w.Source, w.ExternalID, w.Date, w.Title, w.Start, w.DurationSeconds,
		w.Intensity, boolToInt(w.Completed), boolToInt(w.TrainLow),
		w.AverageHeartrate, w.AverageWatts).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upserting workout %s/%s: %w", w.Source, w.ExternalID, err)
	}
	return id, nil
}

// GetWorkout retrieves a workout by ID
func (s *Store) GetWorkout(id string) (*Workout, error) {
	row := s.db.QueryRow(`SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)
	w, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// GetWorkoutsForDate returns the workouts of a day ordered by start
func (s *Store) GetWorkoutsForDate(date string) ([]Workout, error) {
	rows, err := s.db.Query(`
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE date = ?
		ORDER BY start, title
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// CountWorkouts returns the number of stored workouts per source
func (s *Store) CountWorkouts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT source, COUNT(*) FROM workouts GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	return counts, rows.Err()
}

// DeleteWorkout removes a workout
func (s *Store) DeleteWorkout(id string) error {
	result, err := s.db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row scanner) (*Workout, error) {
	var w Workout
	var completed, trainLow int64
	err := row.Scan(&w.ID, &w.Source, &w.ExternalID, &w.Date, &w.Title, &w.Start,
		&w.DurationSeconds, &w.Intensity, &completed, &trainLow,
		&w.AverageHeartrate, &w.AverageWatts)
	if err != nil {
		return nil, err
	}
	w.Completed = completed == 1
	w.TrainLow = trainLow == 1
	w.Title = strings.TrimSpace(w.Title)
	return &w, nil
}
