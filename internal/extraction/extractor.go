package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"dealflow/internal/logging"
	"dealflow/internal/services"
	"dealflow/internal/services/llm"
	"dealflow/internal/startup"
)

const phaseName = "extraction"

// maxTextBytes bounds the free text sent to the model.
const maxTextBytes = 48 * 1024

// Source identifies which input an evaluation was extracted from.
type Source string

const (
	SourceFile  Source = "file"
	SourceVideo Source = "video"
	SourceForm  Source = "form"
)

// Input is the raw pitch material of one evaluation. Exactly one source is
// used: the file, else the video URL, else the form.
type Input struct {
	FilePath string         `json:"file,omitempty" yaml:"file,omitempty"`
	VideoURL string         `json:"video_url,omitempty" yaml:"video_url,omitempty"`
	Form     map[string]any `json:"form,omitempty" yaml:"form,omitempty"`
}

// Source reports which source Extract will read.
func (in Input) Source() Source {
	switch {
	case strings.TrimSpace(in.FilePath) != "":
		return SourceFile
	case strings.TrimSpace(in.VideoURL) != "":
		return SourceVideo
	default:
		return SourceForm
	}
}

// Label is a short human description of the input.
func (in Input) Label() string {
	switch in.Source() {
	case SourceFile:
		return filepath.Base(in.FilePath)
	case SourceVideo:
		return in.VideoURL
	default:
		return "form"
	}
}

// Extractor reads documents and videos.
type Extractor interface {
	FromFile(ctx context.Context, path string) (startup.Extracted, error)
	FromVideo(ctx context.Context, videoURL string) (startup.Extracted, error)
}

// Extract reads in with ex according to the source priority.
func Extract(ctx context.Context, ex Extractor, in Input) (startup.Extracted, Source, error) {
	source := in.Source()
	switch source {
	case SourceFile:
		out, err := ex.FromFile(ctx, strings.TrimSpace(in.FilePath))
		return out, source, err
	case SourceVideo:
		out, err := ex.FromVideo(ctx, strings.TrimSpace(in.VideoURL))
		return out, source, err
	default:
		out, err := startup.ParseExtracted(in.Form)
		if err != nil {
			return startup.Extracted{}, source, services.Wrap(services.ErrValidation, phaseName, "parse form", "form data is not a JSON object", err)
		}
		return out, source, nil
	}
}

// DocumentExtractor is the default Extractor.
type DocumentExtractor struct {
	gen     llm.TextGenerator
	timeout time.Duration
	logger  *slog.Logger
}

// New returns a DocumentExtractor. gen is only used for text and video.
func New(gen llm.TextGenerator, timeout time.Duration, logger *slog.Logger) *DocumentExtractor {
	if gen == nil {
		gen = llm.Disabled{}
	}
	return &DocumentExtractor{gen: gen, timeout: timeout, logger: logging.NewComponentLogger(logger, "extractor")}
}

// FromFile decodes a pitch document by extension.
func (e *DocumentExtractor) FromFile(ctx context.Context, path string) (startup.Extracted, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return startup.Extracted{}, services.Wrap(services.ErrNotFound, phaseName, "read file", "pitch document not found: "+path, err)
		}
		return startup.Extracted{}, services.Wrap(services.ErrValidation, phaseName, "read file", "pitch document unreadable", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	logging.WithContext(ctx, e.logger).Debug("extracting document",
		logging.String("path", path),
		logging.String("format", strings.TrimPrefix(ext, ".")),
		logging.Int("bytes", len(data)),
	)

	switch ext {
	case ".json":
		out, err := startup.DecodeExtracted(data)
		if err != nil {
			return startup.Extracted{}, services.Wrap(services.ErrValidation, phaseName, "decode json", "pitch document is not a JSON object", err)
		}
		return out, nil
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".txt", ".md", ".markdown":
		return e.fromText(ctx, string(data))
	case ".pdf":
		return startup.Extracted{}, services.Wrap(services.ErrValidation, phaseName, "read file", "PDF documents are not supported; convert to text, JSON or YAML", nil)
	default:
		return startup.Extracted{}, services.Wrap(services.ErrValidation, phaseName, "read file", fmt.Sprintf("unsupported document type %q", ext), nil)
	}
}

// FromVideo asks the model to extract the pitch from a video URL.
func (e *DocumentExtractor) FromVideo(ctx context.Context, videoURL string) (startup.Extracted, error) {
	parsed, err := url.Parse(videoURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return startup.Extracted{}, services.Wrap(services.ErrValidation, phaseName, "parse video url", "video url must be an absolute http(s) URL", err)
	}
	prompt := "Extract the startup pitch presented in the video at " + videoURL + ".\n" + schemaHint
	return e.generate(ctx, "extract video", prompt)
}

func (e *DocumentExtractor) fromText(ctx context.Context, text string) (startup.Extracted, error) {
	if strings.TrimSpace(text) == "" {
		return startup.Extracted{}, services.Wrap(services.ErrValidation, phaseName, "extract text", "pitch document is empty", nil)
	}
	text = truncateUTF8(text, maxTextBytes)
	prompt := "Extract the startup pitch from this document.\n" + schemaHint + "\nDocument:\n" + text
	return e.generate(ctx, "extract text", prompt)
}

func (e *DocumentExtractor) generate(ctx context.Context, op, prompt string) (startup.Extracted, error) {
	if llm.IsDisabled(e.gen) {
		return startup.Extracted{}, services.Wrap(services.ErrUnavailable, phaseName, op, "text generation is required for this input", nil)
	}
	raw, err := llm.GenerateJSON[map[string]any](ctx, e.gen, e.timeout, prompt)
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return startup.Extracted{}, services.Wrap(marker, phaseName, op, "model extraction failed", err)
	}
	out, err := startup.ParseExtracted(raw)
	if err != nil {
		return startup.Extracted{}, services.Wrap(services.ErrExternalTool, phaseName, op, "model returned unusable extraction", err)
	}
	return out, nil
}

func decodeYAML(data []byte) (startup.Extracted, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return startup.Extracted{}, services.Wrap(services.ErrValidation, phaseName, "decode yaml", "pitch document is not a YAML mapping", err)
	}
	out, err := startup.ParseExtracted(raw)
	if err != nil {
		return startup.Extracted{}, services.Wrap(services.ErrValidation, phaseName, "decode yaml", "pitch document has unsupported values", err)
	}
	return out, nil
}

const schemaHint = `Respond with one JSON object using these keys when known: company_name, problem_statement, solution, differentiator, market_size (USD number), market_growth_rate (fraction), competition_level (low|medium|high), key_players (strings), revenue, revenue_growth (fraction), employees, cac, ltv, churn_rate (fraction), burn_rate, funding_stage, funding_amount, founders (objects with name, background, experience_years, previous_exits, domain_expertise). Omit unknown keys.`

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
