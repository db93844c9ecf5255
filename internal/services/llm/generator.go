package llm

import (
	"context"
	"strings"

	"dealflow/internal/config"
	"dealflow/internal/services"
)

// SystemPrompt frames every generation request. Callers describe the JSON
// shape they need in the user prompt.
const SystemPrompt = "You are a venture capital analyst assistant. Respond with a single JSON object only, with no prose and no markdown."

// TextGenerator is the text generation capability injected into estimators,
// comparators, extractors, interviewers and the memo refiner.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Disabled is the generator used when no model is configured. Every call
// reports services.ErrUnavailable so callers take their fallback path.
type Disabled struct{}

// Generate always fails with services.ErrUnavailable.
func (d Disabled) Generate(context.Context, string) (string, error) {
	return "", d.unavailable()
}

func (Disabled) unavailable() error {
	return services.Wrap(services.ErrUnavailable, "", "generate", "text generation disabled", nil)
}

// IsDisabled reports whether gen is nil or the Disabled generator.
func IsDisabled(gen TextGenerator) bool {
	if gen == nil {
		return true
	}
	_, ok := gen.(Disabled)
	return ok
}

// New returns an OpenRouter client for cfg, or Disabled when generation is
// turned off or no API key is available.
func New(cfg config.LLMConfig, opts ...Option) TextGenerator {
	if !cfg.Enabled || strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}
	}
	return NewClient(Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, opts...)
}
