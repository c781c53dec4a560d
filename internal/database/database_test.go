package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalQuestions != 0 {
		t.Errorf("expected 0 questions, got %d", stats.TotalQuestions)
	}

	db.UpsertQuestion(Question{
		ID:       "q1",
		Channel:  "system-design",
		Question: "What is sharding?",
		Answer:   "Splitting data across nodes.",
		Diagram:  ptr("graph TD\n  A --> B"),
	})
	db.UpsertQuestion(Question{
		ID:        "q2",
		Channel:   "databases",
		Question:  "What is an index?",
		Answer:    "A lookup structure.",
		SourceURL: ptr("https://example.com/indexes"),
	})

	stats, err = db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalQuestions != 2 {
		t.Errorf("expected 2 questions, got %d", stats.TotalQuestions)
	}
	if stats.WithDiagram != 1 {
		t.Errorf("expected 1 with diagram, got %d", stats.WithDiagram)
	}
	if stats.WithSource != 1 {
		t.Errorf("expected 1 with source, got %d", stats.WithSource)
	}
	if stats.ByChannel["system-design"] != 1 || stats.ByChannel["databases"] != 1 {
		t.Errorf("unexpected channel counts: %v", stats.ByChannel)
	}
}
