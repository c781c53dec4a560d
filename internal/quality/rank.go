package quality

import (
	"sort"

	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/config"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/database"
)

// weights orders issues by how much they degrade a question. Structural
// problems (unusable answer, missing diagram) outrank cosmetic ones.
var weights = map[Issue]int{
	ShortAnswer:             5,
	Truncated:               5,
	ShortExplanation:        4,
	NoDiagram:               4,
	LongAnswer:              3,
	NoQuestionMark:          3,
	MissingInterviewContext: 2,
	NoSourceURL:             1,
	NoShortVideo:            1,
	NoLongVideo:             1,
	NoCompanies:             1,
}

// Weight returns the severity weight of a single issue.
func Weight(issue Issue) int {
	return weights[issue]
}

// Score is the weighted sum over an IssueSet.
func Score(set IssueSet) int {
	total := 0
	for _, issue := range set {
		total += weights[issue]
	}
	return total
}

// Ranked pairs a question with its detected issues and severity score.
type Ranked struct {
	Question database.Question
	Issues   IssueSet
	Score    int
}

// Rank detects issues on each candidate and orders them by severity score
// descending, question ID ascending on ties. The order is total and stable:
// identical inputs always produce identical output.
func Rank(candidates []database.Question, t config.Quality) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for _, q := range candidates {
		issues := Detect(q, t)
		ranked = append(ranked, Ranked{Question: q, Issues: issues, Score: Score(issues)})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Question.ID < ranked[j].Question.ID
	})

	return ranked
}

// SortBySeverity orders an IssueSet worst-first, preserving detection order
// between issues of equal weight. Used to pick which issues a prompt names.
func SortBySeverity(set IssueSet) IssueSet {
	out := make(IssueSet, len(set))
	copy(out, set)
	sort.SliceStable(out, func(i, j int) bool {
		return weights[out[i]] > weights[out[j]]
	})
	return out
}
