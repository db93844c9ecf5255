package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dealflow/internal/logging"
	"dealflow/internal/services/llm"
	"dealflow/internal/startup"
)

// Differentiation holds the differentiation sub-scores of a profile.
type Differentiation struct {
	Score           float64 `json:"differentiator_score"`
	SolutionClarity float64 `json:"solution_clarity"`
	ProblemClarity  float64 `json:"problem_clarity"`
}

// Estimator produces the judgement-based inputs of the score: founder-market
// fit and differentiation strength.
type Estimator interface {
	FounderFit(ctx context.Context, founder startup.Founder, problem string, market startup.MarketAnalysis) float64
	Differentiation(ctx context.Context, profile startup.Profile) Differentiation
}

// Fallback is the deterministic Estimator. It never calls out.
type Fallback struct{}

// FounderFit applies FallbackFounderFit.
func (Fallback) FounderFit(_ context.Context, founder startup.Founder, problem string, _ startup.MarketAnalysis) float64 {
	return FallbackFounderFit(founder.ExperienceYears, founder.DomainExpertise, problem)
}

// Differentiation scores the differentiator keywords with neutral clarity.
func (Fallback) Differentiation(_ context.Context, profile startup.Profile) Differentiation {
	return Differentiation{
		Score:           DifferentiatorScore(profile.UniqueDifferentiator),
		SolutionClarity: neutral,
		ProblemClarity:  neutral,
	}
}

// DifferentiatorScore grades differentiator text by keyword.
func DifferentiatorScore(text string) float64 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "patent"), strings.Contains(lower, "proprietary"):
		return 8
	case strings.Contains(lower, "unique"), strings.Contains(lower, "first"):
		return 7
	default:
		return 5
	}
}

// FallbackFounderFit is 5 + 0.3 per year of experience, plus 2 when the
// founder's domain appears in the problem statement, capped at 10. An empty
// domain never matches.
func FallbackFounderFit(experienceYears int, domain, problem string) float64 {
	fit := 5 + float64(experienceYears)*0.3
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain != "" && strings.Contains(strings.ToLower(problem), domain) {
		fit += 2
	}
	return clip(fit)
}

// AIEstimator asks the text generator first and falls back to Fallback when
// the generator is disabled, fails, returns malformed JSON or an out of range
// value.
type AIEstimator struct {
	gen      llm.TextGenerator
	fallback Fallback
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAIEstimator wraps gen. A nil gen behaves like llm.Disabled.
func NewAIEstimator(gen llm.TextGenerator, timeout time.Duration, logger *slog.Logger) *AIEstimator {
	if gen == nil {
		gen = llm.Disabled{}
	}
	return &AIEstimator{
		gen:     gen,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "estimator"),
	}
}

type fitResponse struct {
	Score *float64 `json:"founder_market_fit_score"`
}

// FounderFit returns the model's fit score, or the deterministic value.
func (e *AIEstimator) FounderFit(ctx context.Context, founder startup.Founder, problem string, market startup.MarketAnalysis) float64 {
	prompt := fmt.Sprintf(`Rate the founder-market fit of this founder for the problem on a 0-10 scale.
Founder: %s
Background: %s
Experience: %d years, %d previous exits
Domain expertise: %s
Problem: %s
Market: size %.0f, growth %.2f, competition %s
Respond as {"founder_market_fit_score": <number 0-10>}`,
		founder.Name, founder.Background, founder.ExperienceYears, founder.PreviousExits,
		founder.DomainExpertise, problem, market.MarketSize, market.GrowthRate, market.CompetitionLevel)

	if resp, ok := attempt[fitResponse](ctx, e, "founder_fit", prompt); ok && resp.Score != nil && inRange(*resp.Score) {
		return *resp.Score
	}
	return e.fallback.FounderFit(ctx, founder, problem, market)
}

type differentiationResponse struct {
	Score           *float64 `json:"differentiator_score"`
	SolutionClarity *float64 `json:"solution_clarity"`
	ProblemClarity  *float64 `json:"problem_clarity"`
}

// Differentiation returns model sub-scores, or the deterministic values when
// any of them is missing or out of range.
func (e *AIEstimator) Differentiation(ctx context.Context, profile startup.Profile) Differentiation {
	prompt := fmt.Sprintf(`Score this startup's differentiation on 0-10 scales.
Differentiator: %s
Solution: %s
Problem: %s
Respond as {"differentiator_score": <0-10>, "solution_clarity": <0-10>, "problem_clarity": <0-10>}`,
		profile.UniqueDifferentiator, profile.Solution, profile.ProblemStatement)

	resp, ok := attempt[differentiationResponse](ctx, e, "differentiation", prompt)
	if ok && resp.Score != nil && resp.SolutionClarity != nil && resp.ProblemClarity != nil &&
		inRange(*resp.Score) && inRange(*resp.SolutionClarity) && inRange(*resp.ProblemClarity) {
		return Differentiation{Score: *resp.Score, SolutionClarity: *resp.SolutionClarity, ProblemClarity: *resp.ProblemClarity}
	}
	return e.fallback.Differentiation(ctx, profile)
}

func attempt[T any](ctx context.Context, e *AIEstimator, decision, prompt string) (T, bool) {
	if llm.IsDisabled(e.gen) {
		var zero T
		return zero, false
	}
	out, err := llm.GenerateJSON[T](ctx, e.gen, e.timeout, prompt)
	if err != nil {
		logging.WithContext(ctx, e.logger).Debug("ai estimate failed, using fallback",
			logging.Args(logging.DecisionAttrs(decision, "fallback", err.Error())...)...)
		return out, false
	}
	return out, true
}

func inRange(v float64) bool {
	return v >= 0 && v <= 10
}
