package memo

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dealflow/internal/services/publicdata"
	"dealflow/internal/startup"
	"dealflow/internal/verification"
)

// Draft recommendations.
const (
	DraftPass     = "PASS - Significant verification concerns"
	DraftStrong   = "STRONG INTEREST - Proceed to detailed analysis"
	DraftModerate = "MODERATE INTEREST - Requires deeper investigation"
	DraftWeak     = "WEAK INTEREST - High risk factors identified"
)

// DraftFindings summarises the verification verdicts.
type DraftFindings struct {
	MarketValidation     string `json:"market_validation"`
	FounderCredibility   string `json:"founder_credibility"`
	CompetitiveLandscape string `json:"competitive_landscape"`
}

// Draft is the preliminary memo produced before full analysis.
type Draft struct {
	CompanyName      string        `json:"company_name"`
	PreliminaryScore float64       `json:"preliminary_score"`
	Recommendation   string        `json:"recommendation"`
	ExecutiveSummary string        `json:"executive_summary"`
	KeyFindings      DraftFindings `json:"key_findings"`
	Strengths        []string      `json:"strengths"`
	Concerns         []string      `json:"concerns"`
	NextSteps        []string      `json:"next_steps"`
}

// BuildDraft scores market, founder and competition verdicts and averages
// them into the preliminary score.
func BuildDraft(p startup.Profile, publicData map[string]any, r verification.Result) Draft {
	market := 5.0
	if !verification.Discrepancy(r.MarketSizeAccuracy) {
		market = 7.0
	}
	founder := 6.0
	if r.FounderCredibility == verification.CredibilityVerified || r.FounderCredibility == "high" {
		founder = 8.0
	}
	competitors := len(publicdata.Competitors(publicData))
	competition := 4.0
	if competitors <= 3 {
		competition = 6.0
	}
	score := (market + founder + competition) / 3

	printer := message.NewPrinter(language.English)
	strengths := []string{"Market opportunity identified", "Founding team in place"}
	if p.Market.MarketSize > 0 {
		strengths[0] = printer.Sprintf("Market opportunity: $%d", int64(p.Market.MarketSize))
	}
	if n := len(p.Founders); n > 0 {
		strengths[1] = fmt.Sprintf("Team of %d %s", n, plural(n, "founder"))
	}

	return Draft{
		CompanyName:      p.CompanyName,
		PreliminaryScore: math.Round(score*10) / 10,
		Recommendation:   DraftRecommendation(score, r),
		ExecutiveSummary: "Initial analysis based on pitch materials and public data verification.",
		KeyFindings: DraftFindings{
			MarketValidation:     r.MarketSizeAccuracy,
			FounderCredibility:   r.FounderCredibility,
			CompetitiveLandscape: fmt.Sprintf("%d competitors identified", competitors),
		},
		Strengths: strengths,
		Concerns:  append(append([]string{}, r.RedFlags...), "Requires detailed analysis"),
		NextSteps: []string{"Conduct founder interview", "Detailed market analysis", "Financial due diligence"},
	}
}

// DraftRecommendation applies the preliminary tiers. Heavy verification
// concerns override the score.
func DraftRecommendation(score float64, r verification.Result) string {
	switch {
	case len(r.RedFlags) > 2 || r.ConfidenceScore < 4:
		return DraftPass
	case score >= 7:
		return DraftStrong
	case score >= 5:
		return DraftModerate
	default:
		return DraftWeak
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
