package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Per-day nutrition goals and flat totals
		`CREATE TABLE IF NOT EXISTS nutrition_days (
			date TEXT PRIMARY KEY,
			carb_goal REAL NOT NULL DEFAULT 0,
			total_carbs REAL NOT NULL DEFAULT 0,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Logged food items. logged_at keeps the raw time string as entered.
		`CREATE TABLE IF NOT EXISTS food_items (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			meal TEXT NOT NULL,
			name TEXT NOT NULL,
			carbs REAL NOT NULL DEFAULT 0,
			protein REAL NOT NULL DEFAULT 0,
			fat REAL NOT NULL DEFAULT 0,
			calories REAL NOT NULL DEFAULT 0,
			fluid_ml REAL NOT NULL DEFAULT 0,
			logged_at TEXT NOT NULL DEFAULT '',
			profile TEXT NOT NULL DEFAULT '',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_food_items_date ON food_items(date)`,

		// Planned and completed workouts from every source
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			external_id TEXT NOT NULL,
			date TEXT NOT NULL,
			title TEXT NOT NULL,
			start TEXT NOT NULL DEFAULT '',
			duration_seconds INTEGER NOT NULL,
			intensity REAL NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			train_low INTEGER NOT NULL DEFAULT 0,
			average_heartrate REAL,
			average_watts REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (source, external_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_date ON workouts(date)`,

		// Tank level and fluid deficit at the end of each computed day
		`CREATE TABLE IF NOT EXISTS day_states (
			date TEXT PRIMARY KEY,
			percentage REAL NOT NULL,
			fluid_deficit REAL NOT NULL,
			computed_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
