package enrich

import (
	"fmt"
	"strings"

	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/config"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/database"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/quality"
)

// maxPromptIssues caps how many problems one prompt names. Asking the model
// to fix everything at once produces worse output than a focused request.
const maxPromptIssues = 4

// Input fields are truncated before embedding so the prompt stays inside the
// provider's input limits regardless of how bloated the stored record is.
const (
	maxQuestionChars    = 500
	maxAnswerChars      = 1200
	maxExplanationChars = 2500
	maxDiagramChars     = 800
)

const enrichPrompt = `You are improving one flashcard for an interview prep app. The card teaches a single concept; answers are read on a phone screen.

Fix ONLY these problems, in order of importance:
%s

The card (channel: %s):
Question: %s
Answer: %s
Explanation: %s
Diagram (mermaid): %s

Rules:
- The answer must be %d-%d characters of plain text.
- The explanation must frame the concept the way an interviewer probes it.
- The diagram must be valid mermaid, no code fences inside the value.
- The question must read as a direct question ending with "?".
- Keep everything that is already good; do not rewrite for style.

Respond with ONLY this JSON, no prose before or after:
{
    "question": "the question text",
    "answer": "the concise answer",
    "explanation": "the long-form explanation, markdown allowed",
    "diagram": "mermaid diagram source",
    "source_url": "https://... or empty string",
    "companies": ["Company1", "Company2"],
    "short_video_id": "youtube id or empty string",
    "long_video_id": "youtube id or empty string"
}`

// issueInstructions maps each detectable issue to the instruction the model
// receives for it.
var issueInstructions = map[quality.Issue]string{
	quality.ShortAnswer:             "The answer is too short to be useful; expand it.",
	quality.LongAnswer:              "The answer is too long for a flashcard; tighten it.",
	quality.ShortExplanation:        "The explanation is too thin; deepen it with concrete detail.",
	quality.NoDiagram:               "The diagram is missing or trivial; write a mermaid diagram that captures the concept.",
	quality.Truncated:               "The explanation is cut off mid-thought; complete it.",
	quality.NoQuestionMark:          "The question is phrased as a statement; rephrase it as a question.",
	quality.NoSourceURL:             "Add a source_url pointing to an authoritative reference.",
	quality.NoShortVideo:            "Suggest a short_video_id if you know a fitting one, else leave it empty.",
	quality.NoLongVideo:             "Suggest a long_video_id if you know a fitting one, else leave it empty.",
	quality.NoCompanies:             "List at least two companies known to ask about this topic.",
	quality.MissingInterviewContext: "Add how this comes up in interviews and what follow-ups to expect.",
}

// BuildPrompt renders the enrichment instruction for one question. Issues
// are named worst-first and capped at maxPromptIssues; long input fields are
// truncated before embedding.
func BuildPrompt(q database.Question, issues quality.IssueSet, t config.Quality) string {
	sorted := quality.SortBySeverity(issues)
	if len(sorted) > maxPromptIssues {
		sorted = sorted[:maxPromptIssues]
	}

	var problems []string
	for i, issue := range sorted {
		instruction, ok := issueInstructions[issue]
		if !ok {
			continue
		}
		problems = append(problems, fmt.Sprintf("%d. %s", i+1, instruction))
	}

	diagram := ""
	if q.Diagram != nil {
		diagram = *q.Diagram
	}
	if diagram == "" {
		diagram = "(none)"
	}

	return fmt.Sprintf(enrichPrompt,
		strings.Join(problems, "\n"),
		q.Channel,
		truncate(q.Question, maxQuestionChars),
		truncate(q.Answer, maxAnswerChars),
		truncate(q.Explanation, maxExplanationChars),
		truncate(diagram, maxDiagramChars),
		t.AnswerMinChars,
		t.AnswerMaxChars,
	)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
