package database

import (
	"reflect"
	"testing"
)

func TestRunReportRoundTrip(t *testing.T) {
	db := openTestDB(t)

	report := RunReport{
		ID:             "run-1",
		StartedAt:      ptr("2026-08-01 10:00:00"),
		FinishedAt:     ptr("2026-08-01 10:05:00"),
		ImprovedCount:  3,
		FailedCount:    1,
		SkippedCount:   2,
		TotalQuestions: 40,
		ImprovedIDs:    []string{"q1", "q2", "q3"},
	}
	if err := db.InsertRunReport(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.GetLastRunReport()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected report, got nil")
	}
	if !reflect.DeepEqual(*got, report) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", *got, report)
	}
}

func TestGetLastRunReportEmpty(t *testing.T) {
	db := openTestDB(t)
	got, err := db.GetLastRunReport()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil on empty table, got %+v", got)
	}
}

func TestGetLastRunReportPicksLatest(t *testing.T) {
	db := openTestDB(t)

	db.InsertRunReport(RunReport{ID: "old", StartedAt: ptr("2026-08-01 10:00:00")})
	db.InsertRunReport(RunReport{ID: "new", StartedAt: ptr("2026-08-02 10:00:00"), ImprovedCount: 5})

	got, err := db.GetLastRunReport()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "new" {
		t.Errorf("expected latest run 'new', got %q", got.ID)
	}
	if got.ImprovedCount != 5 {
		t.Errorf("expected improved count 5, got %d", got.ImprovedCount)
	}
}
