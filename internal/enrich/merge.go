package enrich

import (
	"strings"
	"time"

	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/database"
)

// Merge combines a validated candidate with the original question. Every
// non-empty candidate field overwrites the original; empty fields keep the
// original's value, so a candidate that omits companies or references never
// erases them. UpdatedAt is set from the supplied clock. Pure given its
// inputs.
func Merge(original database.Question, c Candidate, refs database.VideoRefs, now time.Time) database.Question {
	merged := original

	if c.Question != "" {
		merged.Question = c.Question
	}
	if c.Answer != "" {
		merged.Answer = c.Answer
	}
	if c.Explanation != "" {
		merged.Explanation = c.Explanation
	}
	if c.Diagram != "" {
		merged.Diagram = strPtr(c.Diagram)
	}
	if strings.TrimSpace(c.SourceURL) != "" {
		merged.SourceURL = strPtr(strings.TrimSpace(c.SourceURL))
	}
	if normalized := database.NormalizeCompanies(c.Companies); len(normalized) > 0 {
		merged.Companies = normalized
	}

	if refs.ShortID != "" {
		merged.ShortVideoID = strPtr(refs.ShortID)
	}
	if refs.LongID != "" {
		merged.LongVideoID = strPtr(refs.LongID)
	}

	merged.UpdatedAt = strPtr(now.UTC().Format("2006-01-02 15:04:05"))
	return merged
}

func strPtr(s string) *string { return &s }
