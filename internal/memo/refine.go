package memo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dealflow/internal/interview"
	"dealflow/internal/logging"
	"dealflow/internal/scoring"
	"dealflow/internal/services/llm"
	"dealflow/internal/startup"
	"dealflow/internal/textutil"
)

const (
	maxAdjustment      = 2.0
	fallbackConfidence = 7.0
	baselineConfidence = 5.0

	// duplicateSimilarity is the fingerprint similarity above which two
	// bullets are treated as the same point.
	duplicateSimilarity = 0.8
)

// Synthesis is the combined reading of every evidence source.
type Synthesis struct {
	VerifiedStrengths   []string `json:"verified_strengths"`
	VerifiedConcerns    []string `json:"verified_concerns"`
	NewInsights         []string `json:"new_insights"`
	RiskFactorsUpdated  []string `json:"risk_factors_updated"`
	MarketValidation    string   `json:"market_validation"`
	FounderAssessment   string   `json:"founder_assessment"`
	CompetitivePosition string   `json:"competitive_position"`
	InvestmentThesis    string   `json:"investment_thesis"`
	ScoreAdjustment     float64  `json:"recommended_score_adjustment"`
	ConfidenceLevel     float64  `json:"confidence_level"`
	Source              string   `json:"source"`
}

// FallbackSynthesis is the neutral synthesis used when no model is
// available: no score change and confidence 7.
func FallbackSynthesis() Synthesis {
	return Synthesis{
		VerifiedStrengths:   []string{"Market opportunity"},
		VerifiedConcerns:    []string{"Competition risk"},
		NewInsights:         []string{"Additional market validation needed"},
		RiskFactorsUpdated:  []string{"Market timing risk"},
		MarketValidation:    "confirmed",
		FounderAssessment:   "maintained",
		CompetitivePosition: "same",
		InvestmentThesis:    "unchanged",
		ScoreAdjustment:     0,
		ConfidenceLevel:     fallbackConfidence,
		Source:              "fallback",
	}
}

// Report compares the original and refined memos.
type Report struct {
	OriginalScore         float64  `json:"original_score"`
	RefinedScore          float64  `json:"refined_score"`
	ScoreChange           float64  `json:"score_change"`
	ConfidenceLevel       float64  `json:"confidence_level"`
	ConfidenceDelta       float64  `json:"confidence_delta"`
	RecommendationChanged bool     `json:"recommendation_changed"`
	Changes               []string `json:"changes"`
	NewInsights           []string `json:"new_insights"`
}

// Markdown renders the report.
func (r Report) Markdown(original, refined startup.Memo) string {
	var b strings.Builder
	b.WriteString("# Investment Memo Refinement Report\n\n## Summary of Changes\n")
	for _, change := range r.Changes {
		fmt.Fprintf(&b, "- %s\n", change)
	}
	sign := ""
	if r.ScoreChange > 0 {
		sign = "+"
	}
	fmt.Fprintf(&b, "\n## Score Evolution\n- **Original Score**: %.1f\n- **Refined Score**: %.1f\n- **Change**: %s%.1f\n",
		r.OriginalScore, r.RefinedScore, sign, r.ScoreChange)
	if len(r.NewInsights) > 0 {
		b.WriteString("\n## Key Insights Added\n")
		for _, insight := range r.NewInsights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
	}
	fmt.Fprintf(&b, "\n## Updated Risk Assessment\n- **Risk Level**: %s\n", refined.Risk.Level)
	if len(refined.Risk.Factors) > 0 {
		fmt.Fprintf(&b, "- **Primary Risks**: %s\n", strings.Join(refined.Risk.Factors, ", "))
	}
	fmt.Fprintf(&b, "\n## Recommendation\n**%s**\n", refined.Recommendation)
	if r.RecommendationChanged {
		fmt.Fprintf(&b, "\n_Previously: %s_\n", original.Recommendation)
	}
	return b.String()
}

// Refinement is the outcome of refining a memo.
type Refinement struct {
	Memo      startup.Memo `json:"refined_memo"`
	Synthesis Synthesis    `json:"synthesis"`
	Report    Report       `json:"comparison_report"`
	Markdown  string       `json:"comparison_report_markdown"`
}

// Evidence is everything refinement can draw on besides the memo itself.
type Evidence struct {
	PublicData map[string]any
	Interview  *interview.Analysis
}

// Refiner produces refined memos.
type Refiner struct {
	gen     llm.TextGenerator
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewRefiner returns a Refiner backed by gen.
func NewRefiner(gen llm.TextGenerator, timeout time.Duration, logger *slog.Logger) *Refiner {
	if gen == nil {
		gen = llm.Disabled{}
	}
	return &Refiner{gen: gen, timeout: timeout, logger: logging.NewComponentLogger(logger, "refiner"), now: time.Now}
}

// Refine adjusts original by the synthesis. The adjustment is bounded to
// ±2 and the refined score to [0,10]; the recommendation is recomputed from
// the refined score and the original risk level.
func (r *Refiner) Refine(ctx context.Context, original startup.Memo, evidence Evidence) Refinement {
	synthesis := r.synthesize(ctx, original, evidence)
	adjustment := max(-maxAdjustment, min(maxAdjustment, synthesis.ScoreAdjustment))

	refined := original.Clone()
	refined.InvestmentScore = scoring.Clip(original.InvestmentScore + adjustment)
	refined.Recommendation = Recommend(refined.InvestmentScore, refined.Risk.Level)
	if synthesis.Source != "fallback" {
		refined.Strengths = mergeUnique(refined.Strengths, synthesis.VerifiedStrengths)
		refined.Concerns = mergeUnique(refined.Concerns, synthesis.VerifiedConcerns)
	}
	if r.now != nil {
		refined.GeneratedAt = r.now().UTC()
	}

	report := Report{
		OriginalScore:         original.InvestmentScore,
		RefinedScore:          refined.InvestmentScore,
		ScoreChange:           refined.InvestmentScore - original.InvestmentScore,
		ConfidenceLevel:       synthesis.ConfidenceLevel,
		ConfidenceDelta:       synthesis.ConfidenceLevel - baselineConfidence,
		RecommendationChanged: refined.Recommendation != original.Recommendation,
		NewInsights:           append([]string{}, synthesis.NewInsights...),
		Changes: []string{
			fmt.Sprintf("Score: %.1f → %.1f", original.InvestmentScore, refined.InvestmentScore),
			fmt.Sprintf("Confidence: %.1f/10", synthesis.ConfidenceLevel),
			"Added public data verification",
		},
	}
	if evidence.Interview != nil {
		report.Changes = append(report.Changes, "Incorporated interview insights")
	}

	return Refinement{
		Memo:      refined,
		Synthesis: synthesis,
		Report:    report,
		Markdown:  report.Markdown(original, refined),
	}
}

func (r *Refiner) synthesize(ctx context.Context, original startup.Memo, evidence Evidence) Synthesis {
	if r == nil || llm.IsDisabled(r.gen) {
		return FallbackSynthesis()
	}
	out, err := llm.GenerateJSON[Synthesis](ctx, r.gen, r.timeout, synthesisPrompt(original, evidence))
	if err == nil && (out.ConfidenceLevel < 0 || out.ConfidenceLevel > 10) {
		err = fmt.Errorf("confidence_level %.1f out of range", out.ConfidenceLevel)
	}
	if err != nil {
		logging.WithContext(ctx, r.logger).Debug("ai synthesis unusable, using neutral synthesis",
			logging.Args(logging.DecisionAttrs("synthesis", "fallback", err.Error())...)...)
		return FallbackSynthesis()
	}
	out.Source = "ai"
	return out
}

func synthesisPrompt(original startup.Memo, evidence Evidence) string {
	public, _ := json.Marshal(evidence.PublicData)
	interviewJSON := []byte("{}")
	if evidence.Interview != nil {
		interviewJSON, _ = json.Marshal(evidence.Interview)
	}
	return fmt.Sprintf(`Synthesize investment insights from multiple sources.
Original memo: score %.1f, recommendation %q, strengths %q, concerns %q
Public data: %s
Interview: %s
Respond as {"verified_strengths": [strings], "verified_concerns": [strings], "new_insights": [strings], "risk_factors_updated": [strings], "market_validation": "confirmed|questioned|rejected", "founder_assessment": "upgraded|maintained|downgraded", "competitive_position": "stronger|same|weaker", "investment_thesis": "strengthened|unchanged|weakened", "recommended_score_adjustment": <number -2..2>, "confidence_level": <number 0-10>}`,
		original.InvestmentScore, original.Recommendation, original.Strengths, original.Concerns, public, interviewJSON)
}

func mergeUnique(base, extra []string) []string {
	out := append([]string{}, base...)
	for _, item := range extra {
		if item = strings.TrimSpace(item); item != "" && !textutil.NearDuplicate(out, item, duplicateSimilarity) {
			out = append(out, item)
		}
	}
	return out
}
