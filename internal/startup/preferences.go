package startup

import "strings"

// DefaultSegmentWeight is the platform weight of each of the four segments.
const DefaultSegmentWeight = 0.25

// InvestorPreferences weights the four scoring segments. The pipeline only
// reads it.
type InvestorPreferences struct {
	FounderWeight         float64 `json:"founder_weight" yaml:"founder_weight"`
	MarketWeight          float64 `json:"market_weight" yaml:"market_weight"`
	DifferentiationWeight float64 `json:"differentiation_weight" yaml:"differentiation_weight"`
	TractionWeight        float64 `json:"traction_weight" yaml:"traction_weight"`
	RiskTolerance         string  `json:"risk_tolerance" yaml:"risk_tolerance"`
}

// DefaultPreferences returns equal weights with medium risk tolerance.
func DefaultPreferences() InvestorPreferences {
	return InvestorPreferences{
		FounderWeight:         DefaultSegmentWeight,
		MarketWeight:          DefaultSegmentWeight,
		DifferentiationWeight: DefaultSegmentWeight,
		TractionWeight:        DefaultSegmentWeight,
		RiskTolerance:         "medium",
	}
}

// Weights returns the raw weights in segment order founder, market,
// differentiation, traction.
func (p InvestorPreferences) Weights() [4]float64 {
	return [4]float64{p.FounderWeight, p.MarketWeight, p.DifferentiationWeight, p.TractionWeight}
}

// Normalized returns the weights rescaled to sum to 1. Negative weights count
// as zero; when nothing positive remains the result is equal weights.
func (p InvestorPreferences) Normalized() [4]float64 {
	raw := p.Weights()
	var total float64
	for i, w := range raw {
		if w < 0 {
			raw[i] = 0
			continue
		}
		total += w
	}
	if total <= 0 {
		return [4]float64{0.25, 0.25, 0.25, 0.25}
	}
	for i := range raw {
		raw[i] /= total
	}
	return raw
}

// Tolerance returns the normalized risk tolerance (low, medium or high).
func (p InvestorPreferences) Tolerance() string {
	switch t := strings.ToLower(strings.TrimSpace(p.RiskTolerance)); t {
	case "low", "high":
		return t
	default:
		return "medium"
	}
}
