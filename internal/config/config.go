package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Generation Generation `yaml:"generation"`
	Quality    Quality    `yaml:"quality"`
	Batch      Batch      `yaml:"batch"`
	References References `yaml:"references"`
	Output     Output     `yaml:"output"`
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
}

type Generation struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	OllamaURL      string `yaml:"ollama_url"`
	OpenAIModel    string `yaml:"openai_model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	MaxTokens      int    `yaml:"max_tokens"`
	MaxAttempts    int    `yaml:"max_attempts"`
	BackoffBaseMS  int    `yaml:"backoff_base_ms"`
	BackoffCapMS   int    `yaml:"backoff_cap_ms"`
	CallTimeoutSec int    `yaml:"call_timeout_seconds"`
}

// Quality holds the issue-detection thresholds. They are threaded into the
// detector explicitly so tests can vary them per case.
type Quality struct {
	AnswerMinChars      int `yaml:"answer_min_chars"`
	AnswerMaxChars      int `yaml:"answer_max_chars"`
	ExplanationMinChars int `yaml:"explanation_min_chars"`
	DiagramMinChars     int `yaml:"diagram_min_chars"`
	MinCompanies        int `yaml:"min_companies"`
}

type Batch struct {
	Limit       int `yaml:"limit"`
	Oversample  int `yaml:"oversample"`
	Workers     int `yaml:"workers"`
	DeadlineMin int `yaml:"deadline_minutes"`
}

type References struct {
	TimeoutSec int `yaml:"timeout_seconds"`
}

type Output struct {
	DataDir     string `yaml:"data_dir"`
	SummaryPath string `yaml:"summary_path"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for reelqc.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "reelqc")
}

// DataDir returns the XDG data directory for reelqc.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "reelqc")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/reelqc/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'reelqc init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Generation: Generation{
			Provider:       "ollama",
			Model:          "qwen2.5:7b",
			OllamaURL:      "http://localhost:11434",
			OpenAIModel:    "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			MaxTokens:      1024,
			MaxAttempts:    3,
			BackoffBaseMS:  1000,
			BackoffCapMS:   10000,
			CallTimeoutSec: 60,
		},
		Quality: Quality{
			AnswerMinChars:      150,
			AnswerMaxChars:      500,
			ExplanationMinChars: 200,
			DiagramMinChars:     20,
			MinCompanies:        2,
		},
		Batch: Batch{
			Limit:       5,
			Oversample:  2,
			Workers:     1,
			DeadlineMin: 20,
		},
		References: References{TimeoutSec: 10},
		Server:     Server{Port: 8000},
		Logging:    Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
