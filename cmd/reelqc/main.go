package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/config"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/database"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/pipeline"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/quality"
	"github.com/satishkumar-dhule/reel-interview-code-sub009/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "reelqc",
	Short:   "Interview question quality pipeline",
	Long:    "reelqc detects deficient interview prep questions, regenerates their weak fields through an LLM, validates the result, and commits idempotent updates.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(improveCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("reelqc", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/reelqc/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the LLM provider and quality thresholds.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show content store and last run status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Questions:")
		fmt.Printf("  Total: %d\n", stats.TotalQuestions)
		fmt.Printf("  With diagram: %d\n", stats.WithDiagram)
		fmt.Printf("  With source: %d\n", stats.WithSource)

		if len(stats.ByChannel) > 0 {
			fmt.Println("\nBy channel:")
			channels := make([]string, 0, len(stats.ByChannel))
			for ch := range stats.ByChannel {
				channels = append(channels, ch)
			}
			sort.Strings(channels)
			for _, ch := range channels {
				fmt.Printf("  %s: %d\n", ch, stats.ByChannel[ch])
			}
		}

		fmt.Printf("\nPipeline runs: %d\n", stats.Runs)
		last, err := db.GetLastRunReport()
		if err != nil {
			return err
		}
		if last != nil {
			fmt.Printf("Last run (%s):\n", deref(last.FinishedAt))
			fmt.Printf("  Improved: %d\n", last.ImprovedCount)
			fmt.Printf("  Failed: %d\n", last.FailedCount)
			fmt.Printf("  Skipped: %d\n", last.SkippedCount)
		}
		return nil
	},
}

// --- improve command ---

var improveLimit int

var improveCmd = &cobra.Command{
	Use:   "improve",
	Short: "Run the quality pipeline on the worst questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		limit := resolveLimit(improveLimit)

		pipe, err := pipeline.New(cfg, db)
		if err != nil {
			return err
		}

		result, err := pipe.Run(context.Background(), limit)
		if err != nil {
			return err
		}

		fmt.Println("\nRun complete:")
		fmt.Printf("  Improved: %d\n", len(result.Improved))
		fmt.Printf("  Failed: %d\n", len(result.Failures))
		fmt.Printf("  Skipped: %d\n", len(result.Skipped))
		for _, f := range result.Failures {
			fmt.Printf("    %s: %s\n", f.ID, f.Reason)
		}
		return nil
	},
}

// resolveLimit picks the per-run item limit: flag > REELQC_LIMIT > config.
func resolveLimit(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv("REELQC_LIMIT"); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 {
			return n
		}
		log.Printf("ignoring invalid REELQC_LIMIT=%q", env)
	}
	return cfg.Batch.Limit
}

func init() {
	improveCmd.Flags().IntVarP(&improveLimit, "limit", "n", 0, "Questions to improve this run (default from config)")
}

// --- detect command ---

var detectCmd = &cobra.Command{
	Use:   "detect [question-id]",
	Short: "Show detected issues for one question or the ranked worklist",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if len(args) == 1 {
			q, err := db.GetQuestion(args[0])
			if err != nil {
				return err
			}
			if q == nil {
				return fmt.Errorf("question %s not found", args[0])
			}
			issues := quality.Detect(*q, cfg.Quality)
			fmt.Printf("%s (severity %d)\n", q.ID, quality.Score(issues))
			if len(issues) == 0 {
				fmt.Println("  no issues")
			}
			for _, issue := range quality.SortBySeverity(issues) {
				fmt.Printf("  %-28s weight %d\n", issue, quality.Weight(issue))
			}
			return nil
		}

		candidates, err := db.GetCandidateQuestions(
			cfg.Batch.Limit*cfg.Batch.Oversample,
			cfg.Quality.AnswerMinChars,
			cfg.Quality.ExplanationMinChars,
		)
		if err != nil {
			return err
		}

		ranked := quality.Rank(candidates, cfg.Quality)
		if len(ranked) == 0 {
			fmt.Println("No deficient questions found.")
			return nil
		}
		fmt.Printf("%d candidate(s), worst first:\n", len(ranked))
		for _, r := range ranked {
			fmt.Printf("  %-24s severity %2d  %v\n", r.Question.ID, r.Score, r.Issues.Strings())
		}
		return nil
	},
}

// --- import command ---

// importedQuestion is the JSON shape of the app's content export.
type importedQuestion struct {
	ID           string   `json:"id"`
	Channel      string   `json:"channel"`
	SubChannel   string   `json:"sub_channel"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Explanation  string   `json:"explanation"`
	Diagram      string   `json:"diagram"`
	SourceURL    string   `json:"source_url"`
	Companies    []string `json:"companies"`
	ShortVideoID string   `json:"short_video_id"`
	LongVideoID  string   `json:"long_video_id"`
}

var importCmd = &cobra.Command{
	Use:   "import [file.json]",
	Short: "Import questions from a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}

		var imported []importedQuestion
		if err := json.Unmarshal(data, &imported); err != nil {
			return fmt.Errorf("parsing import file: %w", err)
		}

		count := 0
		for _, iq := range imported {
			if iq.Question == "" || iq.Channel == "" {
				log.Printf("skipping entry with empty question or channel")
				continue
			}
			id := iq.ID
			if id == "" {
				id = uuid.NewString()
			}
			q := database.Question{
				ID:           id,
				Channel:      iq.Channel,
				SubChannel:   optional(iq.SubChannel),
				Question:     iq.Question,
				Answer:       iq.Answer,
				Explanation:  iq.Explanation,
				Diagram:      optional(iq.Diagram),
				SourceURL:    optional(iq.SourceURL),
				Companies:    iq.Companies,
				ShortVideoID: optional(iq.ShortVideoID),
				LongVideoID:  optional(iq.LongVideoID),
			}
			if err := db.UpsertQuestion(q); err != nil {
				return fmt.Errorf("importing %s: %w", id, err)
			}
			count++
		}

		fmt.Printf("Imported %d question(s)\n", count)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local question viewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, cfg, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "reelqc.db")
	return database.Open(dbPath)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
