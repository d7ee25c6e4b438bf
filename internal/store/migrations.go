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

		// Analysed activities, one per source file or remote activity
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			source_ref TEXT NOT NULL,
			name TEXT NOT NULL,
			sport TEXT,
			start_date TEXT,
			duration INTEGER NOT NULL,
			beats INTEGER NOT NULL,
			power_samples INTEGER NOT NULL,
			notes TEXT,
			analyzed_at TEXT NOT NULL,
			UNIQUE (source, source_ref)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_analyzed_at ON activities(analyzed_at)`,

		// Alpha1 timeline (one row per emitted window)
		`CREATE TABLE IF NOT EXISTS dfa_points (
			activity_id TEXT NOT NULL,
			time_offset INTEGER NOT NULL,
			alpha1 REAL NOT NULL,
			fit_quality REAL NOT NULL,
			std_err REAL NOT NULL,
			tier TEXT NOT NULL,
			window_samples INTEGER NOT NULL,
			classification TEXT NOT NULL,
			PRIMARY KEY (activity_id, time_offset),
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS vt1_estimates (
			activity_id TEXT PRIMARY KEY,
			verdict TEXT NOT NULL,
			crossing_time INTEGER,
			alpha1 REAL,
			tier TEXT,
			power REAL,
			average_alpha1 REAL,
			average_class TEXT,
			usable_beats INTEGER NOT NULL,
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS mmp_samples (
			activity_id TEXT NOT NULL,
			duration INTEGER NOT NULL,
			power REAL NOT NULL,
			PRIMARY KEY (activity_id, duration),
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS cp_models (
			activity_id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			critical_power REAL NOT NULL,
			w_prime REAL NOT NULL,
			kind TEXT,
			fit_quality REAL,
			tier TEXT,
			fallback TEXT,
			linear_fallback TEXT,
			iterations INTEGER,
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS balance_summaries (
			activity_id TEXT PRIMARY KEY,
			critical_power REAL NOT NULL,
			w_prime REAL NOT NULL,
			min_balance REAL NOT NULL,
			min_at INTEGER NOT NULL,
			depleted_seconds INTEGER NOT NULL,
			final_balance REAL NOT NULL,
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
