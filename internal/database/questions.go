package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const questionColumns = `id, channel, sub_channel, question, answer, explanation,
	diagram, source_url, companies, short_video_id, long_video_id, updated_at`

// UpsertQuestion inserts or fully replaces a question by ID. Re-running the
// same upsert produces no observable difference; there is no partial write.
func (db *DB) UpsertQuestion(q Question) error {
	if q.ID == "" {
		return fmt.Errorf("upsert question: empty id")
	}

	companies, err := marshalCompanies(q.Companies)
	if err != nil {
		return fmt.Errorf("upsert question %s: %w", q.ID, err)
	}

	_, err = db.conn.Exec(
		`INSERT INTO questions
		(id, channel, sub_channel, question, answer, explanation, diagram,
		 source_url, companies, short_video_id, long_video_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, datetime('now')))
		ON CONFLICT(id) DO UPDATE SET
			channel = excluded.channel,
			sub_channel = excluded.sub_channel,
			question = excluded.question,
			answer = excluded.answer,
			explanation = excluded.explanation,
			diagram = excluded.diagram,
			source_url = excluded.source_url,
			companies = excluded.companies,
			short_video_id = excluded.short_video_id,
			long_video_id = excluded.long_video_id,
			updated_at = excluded.updated_at`,
		q.ID, q.Channel, q.SubChannel, q.Question, q.Answer, q.Explanation,
		q.Diagram, q.SourceURL, companies, q.ShortVideoID, q.LongVideoID, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert question %s: %w", q.ID, err)
	}
	return nil
}

// GetQuestion returns a single question by ID, or nil when absent.
func (db *DB) GetQuestion(id string) (*Question, error) {
	row := db.conn.QueryRow(
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id,
	)
	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetCandidateQuestions returns up to n questions that look deficient,
// ranked by a coarse store-side deficiency score (worst first, ID ascending
// on ties). The caller re-checks each row with the issue detector; this
// query only has to be roughly right, never authoritative on severity.
func (db *DB) GetCandidateQuestions(n, answerMin, explanationMin int) ([]Question, error) {
	rows, err := db.conn.Query(
		`SELECT * FROM (
			SELECT `+questionColumns+`,
				(CASE WHEN length(answer) < ? THEN 2 ELSE 0 END) +
				(CASE WHEN length(explanation) < ? THEN 2 ELSE 0 END) +
				(CASE WHEN diagram IS NULL OR diagram = '' THEN 2 ELSE 0 END) +
				(CASE WHEN source_url IS NULL OR source_url = '' THEN 1 ELSE 0 END) +
				(CASE WHEN short_video_id IS NULL OR short_video_id = '' THEN 1 ELSE 0 END) +
				(CASE WHEN long_video_id IS NULL OR long_video_id = '' THEN 1 ELSE 0 END)
				AS deficiency
			FROM questions
		)
		WHERE deficiency > 0
		ORDER BY deficiency DESC, id ASC
		LIMIT ?`,
		answerMin, explanationMin, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		var companies *string
		var deficiency int
		if err := rows.Scan(&q.ID, &q.Channel, &q.SubChannel, &q.Question,
			&q.Answer, &q.Explanation, &q.Diagram, &q.SourceURL, &companies,
			&q.ShortVideoID, &q.LongVideoID, &q.UpdatedAt, &deficiency); err != nil {
			return nil, err
		}
		q.Companies = unmarshalCompanies(companies)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListQuestions returns all questions ordered by channel then ID.
func (db *DB) ListQuestions() ([]Question, error) {
	rows, err := db.conn.Query(
		`SELECT ` + questionColumns + ` FROM questions ORDER BY channel, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// CountQuestions returns the total number of questions in the store.
func (db *DB) CountQuestions() (int, error) {
	var n int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM questions").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting questions: %w", err)
	}
	return n, nil
}

// GetStats returns aggregate statistics about the store.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{ByChannel: make(map[string]int)}

	err := db.conn.QueryRow(
		`SELECT COUNT(*),
			SUM(CASE WHEN diagram IS NOT NULL AND diagram != '' THEN 1 ELSE 0 END),
			SUM(CASE WHEN source_url IS NOT NULL AND source_url != '' THEN 1 ELSE 0 END)
		FROM questions`,
	).Scan(&s.TotalQuestions, &nullableInt{&s.WithDiagram}, &nullableInt{&s.WithSource})
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.Query("SELECT channel, COUNT(*) FROM questions GROUP BY channel")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var channel string
		var count int
		if err := rows.Scan(&channel, &count); err != nil {
			return nil, err
		}
		s.ByChannel[channel] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.conn.QueryRow("SELECT COUNT(*) FROM run_reports").Scan(&s.Runs); err != nil {
		return nil, err
	}

	return s, nil
}

// NormalizeCompanies deduplicates and sorts a company list, dropping blanks.
// Company order carries no meaning, so a canonical form keeps upserts
// idempotent.
func NormalizeCompanies(companies []string) []string {
	seen := make(map[string]bool, len(companies))
	var out []string
	for _, c := range companies {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func marshalCompanies(companies []string) (*string, error) {
	normalized := NormalizeCompanies(companies)
	if len(normalized) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func unmarshalCompanies(raw *string) []string {
	if raw == nil || *raw == "" {
		return nil
	}
	var companies []string
	if err := json.Unmarshal([]byte(*raw), &companies); err != nil {
		return nil
	}
	return companies
}

func scanQuestions(rows *sql.Rows) ([]Question, error) {
	var questions []Question
	for rows.Next() {
		var q Question
		var companies *string
		if err := rows.Scan(&q.ID, &q.Channel, &q.SubChannel, &q.Question,
			&q.Answer, &q.Explanation, &q.Diagram, &q.SourceURL, &companies,
			&q.ShortVideoID, &q.LongVideoID, &q.UpdatedAt); err != nil {
			return nil, err
		}
		q.Companies = unmarshalCompanies(companies)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func scanQuestion(row *sql.Row) (*Question, error) {
	var q Question
	var companies *string
	if err := row.Scan(&q.ID, &q.Channel, &q.SubChannel, &q.Question,
		&q.Answer, &q.Explanation, &q.Diagram, &q.SourceURL, &companies,
		&q.ShortVideoID, &q.LongVideoID, &q.UpdatedAt); err != nil {
		return nil, err
	}
	q.Companies = unmarshalCompanies(companies)
	return &q, nil
}

// nullableInt scans a possibly-NULL aggregate into an int, defaulting to 0.
type nullableInt struct {
	dest *int
}

func (n *nullableInt) Scan(value any) error {
	if value == nil {
		*n.dest = 0
		return nil
	}
	switch v := value.(type) {
	case int64:
		*n.dest = int(v)
	case float64:
		*n.dest = int(v)
	default:
		return fmt.Errorf("unexpected aggregate type %T", value)
	}
	return nil
}
