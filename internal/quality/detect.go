package quality

import (
	"strings"

	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/config"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/database"
)

// Issue is a named deficiency detected on a question.
type Issue string

const (
	ShortAnswer             Issue = "short_answer"
	LongAnswer              Issue = "long_answer"
	ShortExplanation        Issue = "short_explanation"
	NoDiagram               Issue = "no_diagram"
	Truncated               Issue = "truncated"
	NoQuestionMark          Issue = "no_question_mark"
	NoSourceURL             Issue = "no_source_url"
	NoShortVideo            Issue = "no_short_video"
	NoLongVideo             Issue = "no_long_video"
	NoCompanies             Issue = "no_companies"
	MissingInterviewContext Issue = "missing_interview_context"
)

// IssueSet is the set of deficiencies detected on a question. It has no
// lifecycle of its own: it is recomputed from the record every time and
// never cached across runs.
type IssueSet []Issue

// Has reports whether the set contains the given issue.
func (s IssueSet) Has(issue Issue) bool {
	for _, i := range s {
		if i == issue {
			return true
		}
	}
	return false
}

// Strings returns the issue codes as plain strings.
func (s IssueSet) Strings() []string {
	out := make([]string, len(s))
	for i, issue := range s {
		out[i] = string(issue)
	}
	return out
}

// truncationMarkers are fragments that indicate an explanation was cut off
// mid-generation.
var truncationMarkers = []string{"...", "…", "[truncated]"}

// contextMarkers are keywords and section headings that signal an
// explanation frames the topic for interviews rather than only defining it.
var contextMarkers = []string{
	"interview",
	"follow-up",
	"follow up",
	"when asked",
	"## why this matters",
}

// Detect computes the IssueSet for a question against the given thresholds.
// Pure and deterministic: same question, same thresholds, same result, in a
// fixed rule order.
func Detect(q database.Question, t config.Quality) IssueSet {
	var issues IssueSet

	answer := strings.TrimSpace(q.Answer)
	if len(answer) < t.AnswerMinChars {
		issues = append(issues, ShortAnswer)
	} else if len(answer) > t.AnswerMaxChars {
		issues = append(issues, LongAnswer)
	}

	explanation := strings.TrimSpace(q.Explanation)
	if len(explanation) < t.ExplanationMinChars {
		issues = append(issues, ShortExplanation)
	}

	if q.Diagram == nil || len(strings.TrimSpace(*q.Diagram)) < t.DiagramMinChars {
		issues = append(issues, NoDiagram)
	}

	if hasTruncationMarker(explanation) {
		issues = append(issues, Truncated)
	}

	if !strings.HasSuffix(strings.TrimSpace(q.Question), "?") {
		issues = append(issues, NoQuestionMark)
	}

	if q.SourceURL == nil || strings.TrimSpace(*q.SourceURL) == "" {
		issues = append(issues, NoSourceURL)
	}

	if q.ShortVideoID == nil || strings.TrimSpace(*q.ShortVideoID) == "" {
		issues = append(issues, NoShortVideo)
	}
	if q.LongVideoID == nil || strings.TrimSpace(*q.LongVideoID) == "" {
		issues = append(issues, NoLongVideo)
	}

	if len(q.Companies) < t.MinCompanies {
		issues = append(issues, NoCompanies)
	}

	if !hasInterviewContext(explanation) {
		issues = append(issues, MissingInterviewContext)
	}

	return issues
}

func hasTruncationMarker(explanation string) bool {
	for _, marker := range truncationMarkers {
		if strings.HasSuffix(explanation, marker) {
			return true
		}
	}
	return strings.Contains(explanation, "[truncated]")
}

func hasInterviewContext(explanation string) bool {
	lower := strings.ToLower(explanation)
	for _, marker := range contextMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
