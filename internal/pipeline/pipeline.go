package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/config"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/database"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/enrich"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/llm"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/quality"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/refcheck"
)

// generator is the retrying generation client.
type generator interface {
	Call(ctx context.Context, prompt string) (string, error)
}

// referenceChecker verifies external references with graceful fallback.
type referenceChecker interface {
	VerifyVideos(ctx context.Context, proposed, existing database.VideoRefs) database.VideoRefs
	VerifySource(ctx context.Context, url string) bool
}

// Failure records one question that could not be improved.
type Failure struct {
	ID     string
	Reason string
}

// Result holds the outcome of one pipeline run.
type Result struct {
	RunID          string
	Improved       []string
	Failures       []Failure
	Skipped        []string
	TotalQuestions int
}

// workItem is the ephemeral unit of one improvement attempt: a snapshot of
// the question and its issues at selection time. Discarded when the attempt
// concludes; nothing about a failure carries into the next run.
type workItem struct {
	question database.Question
	issues   quality.IssueSet
}

// Pipeline drives the select -> generate -> validate -> verify -> merge ->
// persist loop for a batch of deficient questions.
type Pipeline struct {
	cfg     *config.Config
	db      *database.DB
	gen     generator
	checker referenceChecker
	now     func() time.Time
}

// New creates a pipeline with the configured provider and reference checker.
// Returns an error when no generation provider is available.
func New(cfg *config.Config, db *database.DB) (*Pipeline, error) {
	gen := cfg.Generation
	provider := llm.CreateProvider(gen.Provider, gen.Model, gen.OllamaURL, gen.OpenAIModel, gen.APIKeyEnv)
	if provider == nil {
		return nil, fmt.Errorf("no generation provider available")
	}

	caller := llm.NewCaller(
		provider,
		gen.MaxAttempts,
		time.Duration(gen.BackoffBaseMS)*time.Millisecond,
		time.Duration(gen.BackoffCapMS)*time.Millisecond,
		time.Duration(gen.CallTimeoutSec)*time.Second,
		gen.MaxTokens,
	)

	checker := refcheck.NewChecker(time.Duration(cfg.References.TimeoutSec) * time.Second)

	return &Pipeline{
		cfg:     cfg,
		db:      db,
		gen:     caller,
		checker: checker,
		now:     time.Now,
	}, nil
}

// Run processes up to limit questions. Per-item failures are recorded and
// the batch continues; only a store read failure aborts the run. When the
// batch deadline expires, unstarted items are reported as skipped.
func (p *Pipeline) Run(ctx context.Context, limit int) (*Result, error) {
	if limit <= 0 {
		limit = p.cfg.Batch.Limit
	}
	if deadline := p.cfg.Batch.DeadlineMin; deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(deadline)*time.Minute)
		defer cancel()
	}

	total, err := p.db.CountQuestions()
	if err != nil {
		return nil, fmt.Errorf("counting questions: %w", err)
	}

	worklist, err := p.selectWork(limit)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString(), TotalQuestions: total}
	log.Printf("run %s: %d of %d questions selected for improvement", result.RunID, len(worklist), total)

	p.processAll(ctx, worklist, result)

	p.recordRun(result)
	if err := p.writeSummary(result); err != nil {
		log.Printf("Error writing summary file: %v", err)
	}
	logSummary(result)

	return result, nil
}

// selectWork reads oversampled store-ranked candidates, re-ranks them by
// severity, and drops rows a second detector pass finds clean. The store's
// ranking decides which rows we see; the local detect is a defensive filter,
// not a competing source of truth.
func (p *Pipeline) selectWork(limit int) ([]workItem, error) {
	oversample := p.cfg.Batch.Oversample
	if oversample < 1 {
		oversample = 1
	}

	candidates, err := p.db.GetCandidateQuestions(
		limit*oversample,
		p.cfg.Quality.AnswerMinChars,
		p.cfg.Quality.ExplanationMinChars,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting candidates: %w", err)
	}

	ranked := quality.Rank(candidates, p.cfg.Quality)

	var worklist []workItem
	for _, r := range ranked {
		if r.Score == 0 {
			continue
		}
		worklist = append(worklist, workItem{question: r.Question, issues: r.Issues})
		if len(worklist) == limit {
			break
		}
	}
	return worklist, nil
}

// processAll runs the worklist either sequentially or through a bounded
// worker pool. Each worker owns its item end-to-end; appending to the
// result is the single synchronized merge point.
func (p *Pipeline) processAll(ctx context.Context, worklist []workItem, result *Result) {
	workers := p.cfg.Batch.Workers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(workers)

	for i, item := range worklist {
		if ctx.Err() != nil {
			for _, rest := range worklist[i:] {
				result.Skipped = append(result.Skipped, rest.question.ID)
			}
			log.Printf("batch deadline reached, skipping %d unstarted item(s)", len(worklist)-i)
			break
		}

		item := item
		g.Go(func() error {
			failure := p.processItem(ctx, item)
			mu.Lock()
			if failure == nil {
				result.Improved = append(result.Improved, item.question.ID)
			} else {
				result.Failures = append(result.Failures, *failure)
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
}

// processItem takes one question through a single linear pass:
// prompt -> generate -> validate -> verify references -> merge -> persist.
// A nil return means the question was improved and persisted.
func (p *Pipeline) processItem(ctx context.Context, item workItem) *Failure {
	q := item.question
	log.Printf("improving %s (severity %d): %v", q.ID, quality.Score(item.issues), item.issues.Strings())

	prompt := enrich.BuildPrompt(q, item.issues, p.cfg.Quality)

	raw, err := p.gen.Call(ctx, prompt)
	if err != nil {
		return &Failure{ID: q.ID, Reason: failureReason(err)}
	}

	candidate, err := enrich.Validate(raw, p.cfg.Quality)
	if err != nil {
		log.Printf("rejected response for %s: %v", q.ID, err)
		return &Failure{ID: q.ID, Reason: failureReason(err)}
	}

	if candidate.SourceURL != "" && !p.checker.VerifySource(ctx, candidate.SourceURL) {
		log.Printf("source %q for %s did not verify, keeping existing", candidate.SourceURL, q.ID)
		candidate.SourceURL = ""
	}

	proposed := database.VideoRefs{ShortID: candidate.ShortVideoID, LongID: candidate.LongVideoID}
	refs := p.checker.VerifyVideos(ctx, proposed, q.Refs())

	merged := enrich.Merge(q, *candidate, refs, p.now())

	if err := p.db.UpsertQuestion(merged); err != nil {
		log.Printf("Error persisting %s: %v", q.ID, err)
		return &Failure{ID: q.ID, Reason: "store_error"}
	}

	log.Printf("improved %s", q.ID)
	return nil
}

// failureReason extracts the short classified reason from a pipeline error.
func failureReason(err error) string {
	var callErr *llm.CallError
	if errors.As(err, &callErr) {
		return callErr.Reason
	}
	var valErr *enrich.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Reason
	}
	return err.Error()
}

func (p *Pipeline) recordRun(r *Result) {
	finished := p.now().UTC().Format("2006-01-02 15:04:05")
	report := database.RunReport{
		ID:             r.RunID,
		FinishedAt:     &finished,
		ImprovedCount:  len(r.Improved),
		FailedCount:    len(r.Failures),
		SkippedCount:   len(r.Skipped),
		TotalQuestions: r.TotalQuestions,
		ImprovedIDs:    r.Improved,
	}
	if err := p.db.InsertRunReport(report); err != nil {
		log.Printf("Error recording run report: %v", err)
	}
}
