package testsupport

import (
	"path/filepath"
	"testing"

	"dealflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Text generation is disabled and public data is synthetic, so nothing
// reaches the network unless an option says so.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.DealNoteDir = filepath.Join(base, "deal-notes")
	cfgVal.LLM.Enabled = false
	cfgVal.LLM.APIKey = ""
	cfgVal.PublicData.Mode = config.PublicDataSynthetic
	cfgVal.Pipeline.PhaseTimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithLLM enables text generation against baseURL.
func WithLLM(baseURL, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.Enabled = true
		b.cfg.LLM.BaseURL = baseURL
		b.cfg.LLM.APIKey = apiKey
	}
}

// WithPublicData switches the public data source to mode, using baseURL for
// the http mode.
func WithPublicData(mode, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.PublicData.Mode = mode
		b.cfg.PublicData.BaseURL = baseURL
	}
}

// WithNtfyTopic points notifications at topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithWeights overrides the investor preference weights.
func WithWeights(founder, market, differentiation, traction float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scoring.FounderWeight = founder
		b.cfg.Scoring.MarketWeight = market
		b.cfg.Scoring.DifferentiationWeight = differentiation
		b.cfg.Scoring.TractionWeight = traction
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
