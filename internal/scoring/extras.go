package scoring

import "dealflow/internal/startup"

// Decision is the curation outcome.
type Decision string

const (
	DecisionPass   Decision = "pass"
	DecisionHold   Decision = "hold"
	DecisionReject Decision = "reject"
)

// Signals carries the verification outputs the extras consult. A nil
// Verification means no verification ran.
type Signals struct {
	Verification   *float64
	MarketAccuracy string
	RevenueStatus  string
}

func (s Signals) verification(fallback float64) float64 {
	if s.Verification == nil {
		return fallback
	}
	return *s.Verification
}

// Alignment describes how the startup performs in the investor's focus areas.
type Alignment struct {
	Score      float64  `json:"alignment_score"`
	FocusAreas []string `json:"investor_focus_areas"`
	Fit        string   `json:"recommendation_fit"`
}

// Analysis bundles the combined score with the curation extras.
type Analysis struct {
	Result            Result    `json:"result"`
	Confidence        float64   `json:"confidence"`
	RiskFlags         []string  `json:"risk_flags"`
	Decision          Decision  `json:"decision"`
	RequiresInterview bool      `json:"requires_interview"`
	Alignment         Alignment `json:"investor_alignment"`
}

// Analyze derives every extra from a combined result.
func Analyze(result Result, m Metrics, prefs startup.InvestorPreferences, sig Signals) Analysis {
	return Analysis{
		Result:            result,
		Confidence:        Confidence(m, sig),
		RiskFlags:         RiskFlags(sig),
		Decision:          CurationDecision(result.Overall, sig),
		RequiresInterview: RequiresInterview(result, sig),
		Alignment:         InvestorAlignment(result, prefs),
	}
}

// Completeness is 10 × the share of known metrics that are present and
// non-zero.
func Completeness(m Metrics) float64 {
	var complete int
	for _, key := range MetricKeys {
		if v, ok := m[key]; ok && v != 0 {
			complete++
		}
	}
	return float64(complete) / float64(len(MetricKeys)) * 10
}

// Confidence is (verification·0.6 + completeness·0.4)/10 in [0,1]. Missing
// verification counts as 5.
func Confidence(m Metrics, sig Signals) float64 {
	c := (sig.verification(neutral)*0.6 + Completeness(m)*0.4) / 10
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// RiskFlags lists machine-readable verification flags.
func RiskFlags(sig Signals) []string {
	flags := []string{}
	if sig.MarketAccuracy == "inflated" {
		flags = append(flags, "inflated_market_claims")
	}
	if sig.RevenueStatus == "unverified" {
		flags = append(flags, "unverified_revenue")
	}
	return flags
}

// CurationDecision buckets the overall score.
func CurationDecision(overall float64, sig Signals) Decision {
	switch {
	case overall < 4:
		return DecisionReject
	case sig.verification(10) < 3:
		return DecisionHold
	case overall >= 7:
		return DecisionPass
	case overall >= 5.5:
		return DecisionHold
	default:
		return DecisionReject
	}
}

// RequiresInterview reports whether a follow-up interview would clarify the
// evaluation: a borderline overall score, widely spread segments or weak
// verification.
func RequiresInterview(result Result, sig Signals) bool {
	if result.Overall >= 5 && result.Overall <= 7 {
		return true
	}
	if len(result.Segments) > 0 {
		lo, hi := result.Segments[0].Base, result.Segments[0].Base
		for _, s := range result.Segments[1:] {
			lo = min(lo, s.Base)
			hi = max(hi, s.Base)
		}
		if hi-lo > 4 {
			return true
		}
	}
	return sig.verification(10) < 6
}

// InvestorAlignment scores the segments whose weight is within 80% of the
// largest weight.
func InvestorAlignment(result Result, prefs startup.InvestorPreferences) Alignment {
	weights := prefs.Weights()
	maxWeight := weights[0]
	for _, w := range weights[1:] {
		maxWeight = max(maxWeight, w)
	}
	out := Alignment{FocusAreas: []string{}}
	for i, name := range Segments {
		if weights[i] >= maxWeight*0.8 {
			out.FocusAreas = append(out.FocusAreas, string(name))
			out.Score += result.Segment(name).Base * weights[i]
		}
	}
	switch {
	case out.Score > 7:
		out.Fit = "high"
	case out.Score > 5:
		out.Fit = "medium"
	default:
		out.Fit = "low"
	}
	return out
}
