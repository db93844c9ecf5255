package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dealflow/internal/logging"
	"dealflow/internal/services"
	"dealflow/internal/services/llm"
	"dealflow/internal/startup"
)

// Assessment is one scored dimension of an interview.
type Assessment struct {
	Score float64  `json:"score"`
	Notes []string `json:"notes"`
}

// Analysis is the structured outcome of an interview.
type Analysis struct {
	FounderCredibility  Assessment `json:"founder_credibility"`
	MarketUnderstanding Assessment `json:"market_understanding"`
	ExecutionCapability Assessment `json:"execution_capability"`
	RequiresFollowUp    bool       `json:"requires_follow_up"`
	FollowUpTopics      []string   `json:"follow_up_topics"`
	Transcript          string     `json:"transcript"`
}

// Average is the mean of the three assessment scores.
func (a Analysis) Average() float64 {
	return (a.FounderCredibility.Score + a.MarketUnderstanding.Score + a.ExecutionCapability.Score) / 3
}

func (a Analysis) valid() bool {
	for _, s := range []float64{a.FounderCredibility.Score, a.MarketUnderstanding.Score, a.ExecutionCapability.Score} {
		if s < 0 || s > 10 {
			return false
		}
	}
	return true
}

// Interviewer conducts a founder interview.
type Interviewer interface {
	Conduct(ctx context.Context, profile startup.Profile, agenda []string) (Analysis, error)
}

// LLMInterviewer simulates the interview with the text generator.
type LLMInterviewer struct {
	gen     llm.TextGenerator
	timeout time.Duration
	logger  *slog.Logger
}

// NewInterviewer returns an Interviewer backed by gen.
func NewInterviewer(gen llm.TextGenerator, timeout time.Duration, logger *slog.Logger) *LLMInterviewer {
	if gen == nil {
		gen = llm.Disabled{}
	}
	return &LLMInterviewer{gen: gen, timeout: timeout, logger: logging.NewComponentLogger(logger, "interviewer")}
}

// Conduct runs the interview. It fails with services.ErrUnavailable when
// generation is disabled and services.ErrExternalTool when the model output
// is unusable.
func (i *LLMInterviewer) Conduct(ctx context.Context, profile startup.Profile, agenda []string) (Analysis, error) {
	if llm.IsDisabled(i.gen) {
		return Analysis{}, services.Wrap(services.ErrUnavailable, "interview", "conduct", "text generation disabled", nil)
	}

	analysis, err := llm.GenerateJSON[Analysis](ctx, i.gen, i.timeout, interviewPrompt(profile, agenda))
	if err != nil {
		return Analysis{}, services.Wrap(services.ErrExternalTool, "interview", "conduct", "interview generation failed", err)
	}
	if !analysis.valid() {
		return Analysis{}, services.Wrap(services.ErrExternalTool, "interview", "conduct", "interview scores out of range", nil)
	}

	logging.WithContext(ctx, i.logger).Info("interview analysed",
		logging.String("company", profile.CompanyName),
		logging.Float64("average_score", analysis.Average()),
		logging.Bool("requires_follow_up", analysis.RequiresFollowUp),
	)
	return analysis, nil
}

func interviewPrompt(profile startup.Profile, agenda []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Simulate a founder interview for %s and assess it.\n", profile.CompanyName)
	fmt.Fprintf(&b, "Founders: %s\n", strings.Join(profile.FounderNames(), ", "))
	fmt.Fprintf(&b, "Problem: %s\nSolution: %s\n", profile.ProblemStatement, profile.Solution)
	b.WriteString("Agenda:\n")
	for _, item := range agenda {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	b.WriteString(`Respond as {"founder_credibility": {"score": <0-10>, "notes": [strings]}, "market_understanding": {"score": <0-10>, "notes": [strings]}, "execution_capability": {"score": <0-10>, "notes": [strings]}, "requires_follow_up": <bool>, "follow_up_topics": [strings], "transcript": "<short transcript>"}`)
	return b.String()
}
