package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			user_id INTEGER NOT NULL,
			username TEXT,
			email TEXT,
			token TEXT NOT NULL,
			expires_at INTEGER,
			saved_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS prompt_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			prompt TEXT NOT NULL,
			mood TEXT,
			genre TEXT,
			language TEXT,
			keywords TEXT,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_prompt_history_created ON prompt_history(created_at DESC);

		CREATE TABLE IF NOT EXISTS artwork_colors (
			url TEXT PRIMARY KEY,
			color TEXT NOT NULL,
			sampled_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS player_prefs (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			volume REAL NOT NULL DEFAULT 1.0,
			muted INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
