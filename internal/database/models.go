package database

// Question is the persisted unit of interview content the pipeline improves.
// ID is immutable once created; every other field is replaced only through a
// successful pipeline run.
type Question struct {
	ID           string
	Channel      string
	SubChannel   *string
	Question     string
	Answer       string
	Explanation  string
	Diagram      *string
	SourceURL    *string
	Companies    []string
	ShortVideoID *string
	LongVideoID  *string
	UpdatedAt    *string
}

// VideoRefs is the pair of video references attached to a question.
type VideoRefs struct {
	ShortID string
	LongID  string
}

// Refs returns the question's current video references, empty strings for
// missing slots.
func (q *Question) Refs() VideoRefs {
	r := VideoRefs{}
	if q.ShortVideoID != nil {
		r.ShortID = *q.ShortVideoID
	}
	if q.LongVideoID != nil {
		r.LongID = *q.LongVideoID
	}
	return r
}

// RunReport holds metadata about one pipeline run.
type RunReport struct {
	ID             string
	StartedAt      *string
	FinishedAt     *string
	ImprovedCount  int
	FailedCount    int
	SkippedCount   int
	TotalQuestions int
	ImprovedIDs    []string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalQuestions int
	ByChannel      map[string]int
	WithDiagram    int
	WithSource     int
	Runs           int
}
