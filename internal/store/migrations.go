package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Strava authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			strava_athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Athlete profile and the current power-duration model
		`CREATE TABLE IF NOT EXISTS athletes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			weight_kg REAL NOT NULL DEFAULT 0,
			cp REAL,
			w_prime REAL,
			cp_model TEXT,
			cp_r2 REAL,
			cp_updated_at TEXT,
			vo2max REAL,
			pvo2max REAL,
			tlim_seconds REAL,
			created_at TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Daily HRV readings (one per athlete per day, last write wins)
		`CREATE TABLE IF NOT EXISTS diary_entries (
			athlete_id TEXT NOT NULL,
			date TEXT NOT NULL,
			rmssd REAL NOT NULL,
			sdnn REAL NOT NULL,
			pnn50 REAL NOT NULL,
			cv REAL NOT NULL,
			mean_rr REAL NOT NULL,
			heart_rate REAL NOT NULL,
			artifact_pct REAL NOT NULL,
			beat_count INTEGER NOT NULL,
			is_valid INTEGER NOT NULL,
			status TEXT,
			recommendation TEXT,
			deviation_pct REAL,
			notes TEXT,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, date),
			FOREIGN KEY (athlete_id) REFERENCES athletes(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_diary_entries_date ON diary_entries(athlete_id, date DESC)`,

		// Baseline snapshot computed alongside each reading
		`CREATE TABLE IF NOT EXISTS trends (
			athlete_id TEXT NOT NULL,
			date TEXT NOT NULL,
			rmssd REAL NOT NULL,
			baseline_mean REAL NOT NULL,
			baseline_std REAL NOT NULL,
			baseline_count INTEGER NOT NULL,
			baseline_days INTEGER NOT NULL,
			status TEXT NOT NULL,
			computed_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, date),
			FOREIGN KEY (athlete_id) REFERENCES athletes(id) ON DELETE CASCADE
		)`,

		// Best power per duration (mean-maximal power curve)
		`CREATE TABLE IF NOT EXISTS power_efforts (
			athlete_id TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			power REAL NOT NULL,
			source TEXT NOT NULL,
			activity_id INTEGER,
			achieved_at TEXT NOT NULL,
			PRIMARY KEY (athlete_id, duration_seconds),
			FOREIGN KEY (athlete_id) REFERENCES athletes(id) ON DELETE CASCADE
		)`,

		// Strava rides with power (summary data from /athlete/activities)
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			athlete_id TEXT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			start_date TEXT NOT NULL,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			average_watts REAL,
			weighted_average_watts REAL,
			device_watts INTEGER NOT NULL,
			tss REAL,
			streams_synced INTEGER DEFAULT 0,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (athlete_id) REFERENCES athletes(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start_date ON activities(athlete_id, start_date)`,

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
