package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"dealflow/internal/startup"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	LogDir      string `toml:"log_dir"`
	DealNoteDir string `toml:"deal_note_dir"`
}

// LLM contains the OpenRouter-compatible connection used for extraction,
// estimation, verification, interviews and synthesis.
type LLM struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// PublicData selects the public enrichment source used in verification.
type PublicData struct {
	Mode           string `toml:"mode"` // synthetic, http or disabled
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Scoring contains the investor preference weights.
type Scoring struct {
	FounderWeight         float64 `toml:"founder_weight"`
	MarketWeight          float64 `toml:"market_weight"`
	DifferentiationWeight float64 `toml:"differentiation_weight"`
	TractionWeight        float64 `toml:"traction_weight"`
	RiskTolerance         string  `toml:"risk_tolerance"`
}

// Interview contains follow-up interview scheduling settings.
type Interview struct {
	Enabled        bool   `toml:"enabled"`
	MeetingBaseURL string `toml:"meeting_base_url"`
	SlotDays       int    `toml:"slot_days"`
	Timezone       string `toml:"timezone"`
}

// Pipeline contains evaluation runner settings.
type Pipeline struct {
	PhaseTimeoutSeconds int  `toml:"phase_timeout_seconds"`
	SkipInterview       bool `toml:"skip_interview"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Evaluation     bool   `toml:"evaluation"`
	Batch          bool   `toml:"batch"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dealflow.
//
// Configuration sections:
//   - Paths: evaluation store, logs and exported deal notes
//   - LLM: text generation connection
//   - PublicData: verification enrichment source
//   - Scoring: investor preference weights
//   - Interview: follow-up scheduling
//   - Pipeline: phase timeouts
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	LLM           LLM           `toml:"llm"`
	PublicData    PublicData    `toml:"public_data"`
	Scoring       Scoring       `toml:"scoring"`
	Interview     Interview     `toml:"interview"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dealflow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, log and deal note directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.DealNoteDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StorePath returns the location of the evaluation database.
func (c *Config) StorePath() string {
	return filepath.Join(c.Paths.DataDir, "evaluations.db")
}

// BatchLockPath returns the lock file guarding concurrent batch runs.
func (c *Config) BatchLockPath() string {
	return filepath.Join(c.Paths.DataDir, "batch.lock")
}

// Preferences returns the configured investor preferences.
func (c *Config) Preferences() startup.InvestorPreferences {
	return startup.InvestorPreferences{
		FounderWeight:         c.Scoring.FounderWeight,
		MarketWeight:          c.Scoring.MarketWeight,
		DifferentiationWeight: c.Scoring.DifferentiationWeight,
		TractionWeight:        c.Scoring.TractionWeight,
		RiskTolerance:         c.Scoring.RiskTolerance,
	}
}

// PhaseTimeout returns the per-collaborator call budget.
func (c *Config) PhaseTimeout() time.Duration {
	return time.Duration(c.Pipeline.PhaseTimeoutSeconds) * time.Second
}

// InterviewLocation resolves the configured interview timezone, falling back
// to the local zone when it cannot be loaded.
func (c *Config) InterviewLocation() *time.Location {
	if tz := strings.TrimSpace(c.Interview.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved text generation settings.
type LLMConfig struct {
	Enabled        bool
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Enabled:        c.LLM.Enabled,
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
