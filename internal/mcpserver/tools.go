package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"dealflow/internal/extraction"
	"dealflow/internal/logging"
	"dealflow/internal/pipeline"
	"dealflow/internal/scoring"
	"dealflow/internal/services"
	"dealflow/internal/store"
)

const defaultListLimit = 20

// --- Input types ---

type EvaluateInput struct {
	File     string         `json:"file,omitempty" jsonschema:"Path to a pitch document (.json, .yaml, .txt, .md) readable by the server"`
	VideoURL string         `json:"video_url,omitempty" jsonschema:"Absolute http(s) URL of a pitch video"`
	Form     map[string]any `json:"form,omitempty" jsonschema:"Structured pitch fields such as company_name, founders, market_size, revenue"`
	NoSave   bool           `json:"no_save,omitempty" jsonschema:"Skip storing the evaluation and writing the deal note"`
}

type ListInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: completed, failed or needs_review"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of evaluations to return (default 20)"`
}

type DealNoteInput struct {
	ID string `json:"id" jsonschema:"Evaluation ID or unique ID prefix"`
}

type ScoreInput struct {
	Metrics               map[string]float64 `json:"metrics" jsonschema:"Metric values keyed by name, e.g. founder_market_fit, market_size, revenue, ltv, cac"`
	FounderWeight         *float64           `json:"founder_weight,omitempty" jsonschema:"Founder segment weight (default from configuration)"`
	MarketWeight          *float64           `json:"market_weight,omitempty" jsonschema:"Market segment weight"`
	DifferentiationWeight *float64           `json:"differentiation_weight,omitempty" jsonschema:"Differentiation segment weight"`
	TractionWeight        *float64           `json:"traction_weight,omitempty" jsonschema:"Traction segment weight"`
}

// --- Output types ---

type evaluateOutput struct {
	Result       pipeline.Result `json:"result"`
	Status       store.Status    `json:"status"`
	Saved        bool            `json:"saved"`
	DealNotePath string          `json:"deal_note_path,omitempty"`
}

type evaluationSummary struct {
	ID             string       `json:"id"`
	Company        string       `json:"company"`
	Status         store.Status `json:"status"`
	Score          float64      `json:"score"`
	Recommendation string       `json:"recommendation,omitempty"`
	RiskLevel      string       `json:"risk_level,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

type scoreOutput struct {
	scoring.Analysis
	Completeness float64 `json:"completeness"`
}

// --- Handlers ---

func (s *Server) evaluateStartup(ctx context.Context, _ *sdkmcp.CallToolRequest, input EvaluateInput) (*sdkmcp.CallToolResult, any, error) {
	in := extraction.Input{
		FilePath: strings.TrimSpace(input.File),
		VideoURL: strings.TrimSpace(input.VideoURL),
		Form:     input.Form,
	}
	if in.FilePath == "" && in.VideoURL == "" && len(in.Form) == 0 {
		return toolError("One of file, video_url or form is required"), nil, nil
	}

	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("mcp tool call",
		logging.String("tool", "evaluate_startup"),
		logging.String("source", string(in.Source())),
	)

	res := s.runner.Evaluate(ctx, in)
	out := evaluateOutput{Result: res, Status: res.Status()}
	if !input.NoSave && s.recorder != nil {
		saved, err := s.recorder.Save(ctx, res)
		if err != nil {
			logging.WarnWithContext(logger, "failed to record evaluation", "record_failed",
				logging.Error(err),
				logging.String(logging.FieldEvaluationID, res.EvaluationID),
			)
			return toolError("Evaluation %s finished but could not be stored: %v", res.EvaluationID, err), nil, nil
		}
		out.Saved = s.store != nil
		out.DealNotePath = saved.DealNotePath
	}
	return toolJSON(out)
}

func (s *Server) listEvaluations(ctx context.Context, _ *sdkmcp.CallToolRequest, input ListInput) (*sdkmcp.CallToolResult, any, error) {
	if s.store == nil {
		return toolError("Evaluation store is not available"), nil, nil
	}
	opts := store.ListOptions{Limit: input.Limit}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	if strings.TrimSpace(input.Status) != "" {
		status, ok := store.ParseStatus(input.Status)
		if !ok {
			return toolError("Unknown status %q (use completed, failed or needs_review)", input.Status), nil, nil
		}
		opts.Status = status
	}

	evaluations, err := s.store.List(ctx, opts)
	if err != nil {
		return toolError("Failed to list evaluations: %v", err), nil, nil
	}
	summaries := make([]evaluationSummary, 0, len(evaluations))
	for _, ev := range evaluations {
		summaries = append(summaries, evaluationSummary{
			ID:             ev.ID,
			Company:        ev.Company,
			Status:         ev.Status,
			Score:          ev.Score,
			Recommendation: ev.Recommendation,
			RiskLevel:      ev.RiskLevel,
			CreatedAt:      ev.CreatedAt,
		})
	}
	return toolJSON(map[string]any{"evaluations": summaries, "count": len(summaries)})
}

func (s *Server) getDealNote(ctx context.Context, _ *sdkmcp.CallToolRequest, input DealNoteInput) (*sdkmcp.CallToolResult, any, error) {
	if s.store == nil {
		return toolError("Evaluation store is not available"), nil, nil
	}
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return toolError("Evaluation id is required"), nil, nil
	}
	ev, err := s.store.Resolve(ctx, id)
	switch {
	case errors.Is(err, store.ErrAmbiguousID):
		return toolError("Evaluation id %q matches several evaluations; use more characters", id), nil, nil
	case err != nil:
		return toolError("Failed to load evaluation: %v", err), nil, nil
	case ev == nil:
		return toolError("Evaluation %q not found", id), nil, nil
	case strings.TrimSpace(ev.DealNote) == "":
		return toolError("Evaluation %s has no deal note (status %s)", ev.ID, ev.Status), nil, nil
	}
	return toolText(ev.DealNote), nil, nil
}

func (s *Server) scoreMetrics(_ context.Context, _ *sdkmcp.CallToolRequest, input ScoreInput) (*sdkmcp.CallToolResult, any, error) {
	if len(input.Metrics) == 0 {
		return toolError("metrics must contain at least one value"), nil, nil
	}
	prefs := s.prefs
	for _, w := range []struct {
		value  *float64
		target *float64
	}{
		{input.FounderWeight, &prefs.FounderWeight},
		{input.MarketWeight, &prefs.MarketWeight},
		{input.DifferentiationWeight, &prefs.DifferentiationWeight},
		{input.TractionWeight, &prefs.TractionWeight},
	} {
		if w.value == nil {
			continue
		}
		if *w.value < 0 {
			return toolError("segment weights must not be negative"), nil, nil
		}
		*w.target = *w.value
	}

	metrics := scoring.Metrics(input.Metrics)
	result := scoring.Combine(metrics, prefs)
	return toolJSON(scoreOutput{
		Analysis:     scoring.Analyze(result, metrics, prefs, scoring.Signals{}),
		Completeness: scoring.Completeness(metrics),
	})
}

// --- Helpers ---

func toolText(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return toolText(string(data)), nil, nil
}
