package enrich

import (
	"reflect"
	"testing"
	"time"

	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/database"
)

func ptr(s string) *string { return &s }

func originalQuestion() database.Question {
	return database.Question{
		ID:           "algo-0001",
		Channel:      "algorithms",
		Question:     "What is a heap?",
		Answer:       "old answer",
		Explanation:  "old explanation",
		Diagram:      ptr("old diagram source text"),
		SourceURL:    ptr("https://example.com/old"),
		Companies:    []string{"Acme", "Globex"},
		ShortVideoID: ptr("oldshort"),
		LongVideoID:  ptr("oldlong"),
		UpdatedAt:    ptr("2026-01-01 00:00:00"),
	}
}

func TestMergeOverwritesNonEmptyFields(t *testing.T) {
	c := Candidate{
		Question:    "How does a binary heap keep its shape invariant?",
		Answer:      "new answer",
		Explanation: "new explanation",
		Diagram:     "graph TD; root-->left; root-->right",
		SourceURL:   "https://example.com/new",
		Companies:   []string{"Initech", "Umbrella"},
	}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	merged := Merge(originalQuestion(), c, database.VideoRefs{}, now)

	if merged.Answer != "new answer" || merged.Explanation != "new explanation" {
		t.Error("candidate text fields not applied")
	}
	if merged.Diagram == nil || *merged.Diagram != "graph TD; root-->left; root-->right" {
		t.Error("candidate diagram not applied")
	}
	if merged.SourceURL == nil || *merged.SourceURL != "https://example.com/new" {
		t.Error("candidate source_url not applied")
	}
	if merged.UpdatedAt == nil || *merged.UpdatedAt != "2026-08-31 12:00:00" {
		t.Errorf("expected merge timestamp, got %v", merged.UpdatedAt)
	}
}

func TestMergeNeverReplacesNonEmptyWithEmpty(t *testing.T) {
	original := originalQuestion()
	c := Candidate{Answer: "new answer", Explanation: "new explanation"}

	merged := Merge(original, c, database.VideoRefs{}, time.Now())

	if merged.Question != original.Question {
		t.Error("empty candidate question must keep the original")
	}
	if merged.Diagram == nil || *merged.Diagram != *original.Diagram {
		t.Error("empty candidate diagram must keep the original")
	}
	if merged.SourceURL == nil || *merged.SourceURL != *original.SourceURL {
		t.Error("empty candidate source_url must keep the original")
	}
	if !reflect.DeepEqual(merged.Companies, original.Companies) {
		t.Errorf("empty candidate companies must keep the original, got %v", merged.Companies)
	}
	if merged.ShortVideoID == nil || *merged.ShortVideoID != "oldshort" {
		t.Error("unverified refs must keep the original video")
	}
}

func TestMergeAppliesVerifiedRefs(t *testing.T) {
	c := Candidate{Answer: "a", Explanation: "e"}
	refs := database.VideoRefs{ShortID: "newshort", LongID: "newlong"}

	merged := Merge(originalQuestion(), c, refs, time.Now())

	if merged.ShortVideoID == nil || *merged.ShortVideoID != "newshort" {
		t.Error("verified short ref not applied")
	}
	if merged.LongVideoID == nil || *merged.LongVideoID != "newlong" {
		t.Error("verified long ref not applied")
	}
}

func TestMergeNormalizesCompanies(t *testing.T) {
	c := Candidate{
		Answer:      "a",
		Explanation: "e",
		Companies:   []string{"Globex", "acme", "Acme", " ", "Globex"},
	}

	merged := Merge(originalQuestion(), c, database.VideoRefs{}, time.Now())

	want := []string{"Globex", "acme"}
	if !reflect.DeepEqual(merged.Companies, want) {
		t.Errorf("expected normalized companies %v, got %v", want, merged.Companies)
	}
}

func TestMergeDoesNotMutateOriginal(t *testing.T) {
	original := originalQuestion()
	c := Candidate{Answer: "changed", Explanation: "changed"}

	Merge(original, c, database.VideoRefs{ShortID: "x"}, time.Now())

	if original.Answer != "old answer" {
		t.Error("Merge mutated the original answer")
	}
	if *original.ShortVideoID != "oldshort" {
		t.Error("Merge mutated the original refs")
	}
}

func TestMergeIsPure(t *testing.T) {
	c := Candidate{Answer: "a", Explanation: "e", Companies: []string{"Acme", "Initech"}}
	now := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)

	first := Merge(originalQuestion(), c, database.VideoRefs{LongID: "v"}, now)
	second := Merge(originalQuestion(), c, database.VideoRefs{LongID: "v"}, now)

	if !reflect.DeepEqual(first, second) {
		t.Error("Merge is not deterministic for identical inputs")
	}
}
