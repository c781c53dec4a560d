package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    channel TEXT NOT NULL,
    sub_channel TEXT,
    question TEXT NOT NULL,
    answer TEXT NOT NULL DEFAULT '',
    explanation TEXT NOT NULL DEFAULT '',
    diagram TEXT,
    source_url TEXT,
    companies TEXT,
    short_video_id TEXT,
    long_video_id TEXT,
    updated_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_questions_channel ON questions(channel);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "run reports",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS run_reports (
    id TEXT PRIMARY KEY,
    started_at TEXT DEFAULT (datetime('now')),
    finished_at TEXT,
    improved_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    skipped_count INTEGER DEFAULT 0,
    total_questions INTEGER DEFAULT 0,
    improved_ids TEXT
);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
