package database

import (
	"database/sql"
	"encoding/json"
)

// InsertRunReport records the outcome of one pipeline run.
func (db *DB) InsertRunReport(r RunReport) error {
	var idsJSON *string
	if len(r.ImprovedIDs) > 0 {
		data, err := json.Marshal(r.ImprovedIDs)
		if err != nil {
			return err
		}
		s := string(data)
		idsJSON = &s
	}

	_, err := db.conn.Exec(
		`INSERT INTO run_reports
		(id, started_at, finished_at, improved_count, failed_count, skipped_count,
		 total_questions, improved_ids)
		VALUES (?, COALESCE(?, datetime('now')), ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt, r.FinishedAt, r.ImprovedCount, r.FailedCount,
		r.SkippedCount, r.TotalQuestions, idsJSON,
	)
	return err
}

// GetLastRunReport returns the most recent run report, or nil when none exist.
func (db *DB) GetLastRunReport() (*RunReport, error) {
	row := db.conn.QueryRow(
		`SELECT id, started_at, finished_at, improved_count, failed_count,
			skipped_count, total_questions, improved_ids
		FROM run_reports ORDER BY started_at DESC LIMIT 1`,
	)

	var r RunReport
	var idsJSON *string
	if err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.ImprovedCount,
		&r.FailedCount, &r.SkippedCount, &r.TotalQuestions, &idsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if idsJSON != nil {
		if err := json.Unmarshal([]byte(*idsJSON), &r.ImprovedIDs); err != nil {
			r.ImprovedIDs = nil
		}
	}

	return &r, nil
}
