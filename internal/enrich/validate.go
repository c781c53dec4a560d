package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/config"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/llm"
)

// Candidate is the untrusted payload proposed by the generation service. It
// exists only until validated; a rejected candidate is discarded whole and
// no field of it is ever merged.
type Candidate struct {
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Explanation  string   `json:"explanation"`
	Diagram      string   `json:"diagram"`
	SourceURL    string   `json:"source_url"`
	Companies    []string `json:"companies"`
	ShortVideoID string   `json:"short_video_id"`
	LongVideoID  string   `json:"long_video_id"`
}

// ValidationError reports why a candidate was rejected. Stage is either
// "structural" or "content".
type ValidationError struct {
	Stage  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation: %s", e.Stage, e.Reason)
}

func structuralErr(reason string) *ValidationError {
	return &ValidationError{Stage: "structural", Reason: reason}
}

func contentErr(reason string) *ValidationError {
	return &ValidationError{Stage: "content", Reason: reason}
}

// Validate parses a raw generation response and checks it against the
// content rules. All-or-nothing: any failure rejects the entire candidate.
func Validate(raw string, t config.Quality) (*Candidate, error) {
	text := llm.StripFences(raw)
	if text == "" {
		return nil, structuralErr("empty_response")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var c Candidate
	if err := dec.Decode(&c); err != nil {
		return nil, structuralErr("malformed_json")
	}

	c.Question = strings.TrimSpace(c.Question)
	c.Answer = strings.TrimSpace(c.Answer)
	c.Explanation = strings.TrimSpace(c.Explanation)
	c.Diagram = strings.TrimSpace(stripInnerFence(c.Diagram))

	if c.Answer == "" {
		return nil, structuralErr("missing_answer")
	}
	if c.Explanation == "" {
		return nil, structuralErr("missing_explanation")
	}
	if c.Diagram == "" {
		return nil, structuralErr("missing_diagram")
	}

	if len(c.Answer) < t.AnswerMinChars {
		return nil, contentErr("answer_too_short")
	}
	if len(c.Answer) > t.AnswerMaxChars {
		return nil, contentErr("answer_too_long")
	}
	if c.Question != "" && !strings.HasSuffix(c.Question, "?") {
		return nil, contentErr("question_not_a_question")
	}

	return &c, nil
}

// stripInnerFence drops a markdown fence the model sometimes puts around the
// diagram value despite instructions.
func stripInnerFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	return llm.StripFences(s)
}
