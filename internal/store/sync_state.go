package store

import (
	"database/sql"
	"errors"
	"strconv"
	"time"
)

// Sync state keys
const (
	SyncKeyLastStravaSync = "last_strava_sync"
	SyncKeyLastActivity   = "last_strava_activity_start"
)

// GetSyncState retrieves a sync state value by key
// Returns empty string if key doesn't exist
func (s *Store) GetSyncState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`
		SELECT value FROM sync_state WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSyncState sets a sync state value
func (s *Store) SetSyncState(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// GetSyncTime reads a unix-seconds sync state value. A missing key gives the zero time.
func (s *Store) GetSyncTime(key string) (time.Time, error) {
	v, err := s.GetSyncState(key)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}

// SetSyncTime stores t as unix seconds
func (s *Store) SetSyncTime(key string, t time.Time) error {
	return s.SetSyncState(key, strconv.FormatInt(t.Unix(), 10))
}
