package quality

import (
	"reflect"
	"strings"
	"testing"

	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/config"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/database"
)

func testThresholds() config.Quality {
	return config.Quality{
		AnswerMinChars:      150,
		AnswerMaxChars:      500,
		ExplanationMinChars: 200,
		DiagramMinChars:     20,
		MinCompanies:        2,
	}
}

func ptr(s string) *string { return &s }

// completeQuestion returns a question with no detectable issues.
func completeQuestion(id string) database.Question {
	return database.Question{
		ID:           id,
		Channel:      "system-design",
		Question:     "How does consistent hashing distribute load?",
		Answer:       strings.Repeat("a", 200),
		Explanation:  "In an interview, start from the ring. " + strings.Repeat("e", 250),
		Diagram:      ptr("graph TD; A-->B; B-->C; C-->D"),
		SourceURL:    ptr("https://example.com/consistent-hashing"),
		Companies:    []string{"Acme", "Globex"},
		ShortVideoID: ptr("abc123short"),
		LongVideoID:  ptr("abc123long"),
	}
}

func TestDetectCleanQuestion(t *testing.T) {
	issues := Detect(completeQuestion("q-1"), testThresholds())
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	q := completeQuestion("q-1")
	q.Answer = "too short"
	q.Diagram = nil

	first := Detect(q, testThresholds())
	second := Detect(q, testThresholds())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("detect not deterministic: %v vs %v", first, second)
	}
}

func TestDetectShortAnswer(t *testing.T) {
	q := completeQuestion("q-1")
	q.Answer = strings.Repeat("a", 60)

	issues := Detect(q, testThresholds())
	if !issues.Has(ShortAnswer) {
		t.Errorf("expected short_answer, got %v", issues)
	}
	if issues.Has(LongAnswer) {
		t.Error("short answer must not also be long")
	}
}

func TestDetectLongAnswer(t *testing.T) {
	q := completeQuestion("q-1")
	q.Answer = strings.Repeat("a", 700)

	issues := Detect(q, testThresholds())
	if !issues.Has(LongAnswer) {
		t.Errorf("expected long_answer, got %v", issues)
	}
}

func TestDetectShortExplanation(t *testing.T) {
	q := completeQuestion("q-1")
	q.Explanation = "interview cheat: too short"

	issues := Detect(q, testThresholds())
	if !issues.Has(ShortExplanation) {
		t.Errorf("expected short_explanation, got %v", issues)
	}
}

func TestDetectMissingDiagram(t *testing.T) {
	q := completeQuestion("q-1")
	q.Diagram = nil
	issues := Detect(q, testThresholds())
	if !issues.Has(NoDiagram) {
		t.Errorf("expected no_diagram for nil diagram, got %v", issues)
	}

	q.Diagram = ptr("A-->B")
	issues = Detect(q, testThresholds())
	if !issues.Has(NoDiagram) {
		t.Errorf("expected no_diagram for tiny diagram, got %v", issues)
	}
}

func TestDetectTruncatedExplanation(t *testing.T) {
	q := completeQuestion("q-1")
	q.Explanation = "In an interview, explain. " + strings.Repeat("e", 250) + "..."

	issues := Detect(q, testThresholds())
	if !issues.Has(Truncated) {
		t.Errorf("expected truncated, got %v", issues)
	}
}

func TestDetectMissingQuestionMark(t *testing.T) {
	q := completeQuestion("q-1")
	q.Question = "Explain consistent hashing"

	issues := Detect(q, testThresholds())
	if !issues.Has(NoQuestionMark) {
		t.Errorf("expected no_question_mark, got %v", issues)
	}
}

func TestDetectMissingReferences(t *testing.T) {
	q := completeQuestion("q-1")
	q.SourceURL = nil
	q.ShortVideoID = ptr("")
	q.LongVideoID = nil
	q.Companies = []string{"Acme"}

	issues := Detect(q, testThresholds())
	for _, want := range []Issue{NoSourceURL, NoShortVideo, NoLongVideo, NoCompanies} {
		if !issues.Has(want) {
			t.Errorf("expected %s, got %v", want, issues)
		}
	}
}

func TestDetectMissingInterviewContext(t *testing.T) {
	q := completeQuestion("q-1")
	q.Explanation = strings.Repeat("plain definition text. ", 20)

	issues := Detect(q, testThresholds())
	if !issues.Has(MissingInterviewContext) {
		t.Errorf("expected missing_interview_context, got %v", issues)
	}
}

func TestDetectRespectsThresholds(t *testing.T) {
	q := completeQuestion("q-1")
	q.Answer = strings.Repeat("a", 100)

	loose := testThresholds()
	loose.AnswerMinChars = 50

	if Detect(q, loose).Has(ShortAnswer) {
		t.Error("answer above the configured minimum must not be flagged")
	}
	if !Detect(q, testThresholds()).Has(ShortAnswer) {
		t.Error("answer below the configured minimum must be flagged")
	}
}
