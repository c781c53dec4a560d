package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// summaryLines renders the machine-readable key/value summary consumed by
// the automation that schedules runs.
func summaryLines(r *Result) []string {
	return []string{
		fmt.Sprintf("improved_count=%d", len(r.Improved)),
		fmt.Sprintf("failed_count=%d", len(r.Failures)),
		fmt.Sprintf("skipped_count=%d", len(r.Skipped)),
		fmt.Sprintf("total_questions=%d", r.TotalQuestions),
		fmt.Sprintf("improved_ids=%s", strings.Join(r.Improved, ",")),
	}
}

// writeSummary writes the key/value summary where automation can read it:
// $GITHUB_OUTPUT when set (appended, the file is shared with other steps),
// otherwise the configured summary path, otherwise <data_dir>/last_run.txt.
func (p *Pipeline) writeSummary(r *Result) error {
	content := strings.Join(summaryLines(r), "\n") + "\n"

	if ghOutput := os.Getenv("GITHUB_OUTPUT"); ghOutput != "" {
		f, err := os.OpenFile(ghOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening GITHUB_OUTPUT: %w", err)
		}
		defer f.Close()
		if _, err := f.WriteString(content); err != nil {
			return fmt.Errorf("writing GITHUB_OUTPUT: %w", err)
		}
		return nil
	}

	path := p.cfg.Output.SummaryPath
	if path == "" {
		path = filepath.Join(p.cfg.GetDataDir(), "last_run.txt")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating summary directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// logSummary always reports the run outcome to the log, so the result is
// visible even when the summary file cannot be written.
func logSummary(r *Result) {
	for _, line := range summaryLines(r) {
		log.Println(line)
	}
	for _, f := range r.Failures {
		log.Printf("failed %s: %s", f.ID, f.Reason)
	}
	for _, id := range r.Skipped {
		log.Printf("skipped %s: batch deadline reached", id)
	}
}
