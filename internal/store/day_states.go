package store

import (
	"database/sql"
	"errors"
	"time"
)

// SaveDayState stores the ending state of a computed day
func (s *Store) SaveDayState(state DayState) error {
	_, err := s.db.Exec(`
		INSERT INTO day_states (date, percentage, fluid_deficit, computed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			percentage = excluded.percentage,
			fluid_deficit = excluded.fluid_deficit,
			computed_at = excluded.computed_at
	`, state.Date, state.Percentage, state.FluidDeficit, time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetDayState returns the saved ending state of a date
func (s *Store) GetDayState(date string) (*DayState, error) {
	return s.queryDayState(`
		SELECT date, percentage, fluid_deficit, computed_at
		FROM day_states
		WHERE date = ?
	`, date)
}

// GetLatestDayStateBefore returns the most recent saved state strictly before date
func (s *Store) GetLatestDayStateBefore(date string) (*DayState, error) {
	return s.queryDayState(`
		SELECT date, percentage, fluid_deficit, computed_at
		FROM day_states
		WHERE date < ?
		ORDER BY date DESC
		LIMIT 1
	`, date)
}

func (s *Store) queryDayState(query, date string) (*DayState, error) {
	var st DayState
	var computedAt string
	err := s.db.QueryRow(query, date).Scan(&st.Date, &st.Percentage, &st.FluidDeficit, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDayStateNotFound
	}
	if err != nil {
		return nil, err
	}
	st.ComputedAt, _ = time.Parse(time.RFC3339, computedAt)
	return &st, nil
}
