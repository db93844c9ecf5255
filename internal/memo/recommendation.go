package memo

import "dealflow/internal/startup"

// Recommendation tiers, strongest first.
const (
	StrongBuy = "STRONG BUY - High potential with manageable risks"
	Buy       = "BUY - Good opportunity with acceptable risk profile"
	Hold      = "HOLD - Monitor progress, consider follow-on rounds"
	Pass      = "PASS - Significant concerns outweigh potential"
)

// Recommend picks the tier for a score and risk level.
func Recommend(score float64, risk startup.RiskLevel) string {
	switch {
	case score >= 8.0 && risk == startup.RiskLow:
		return StrongBuy
	case score >= 6.5 && (risk == startup.RiskLow || risk == startup.RiskMedium):
		return Buy
	case score >= 5.0:
		return Hold
	default:
		return Pass
	}
}

// Rank orders recommendations from Pass (0) to StrongBuy (3). Unknown text
// ranks -1.
func Rank(recommendation string) int {
	switch recommendation {
	case Pass:
		return 0
	case Hold:
		return 1
	case Buy:
		return 2
	case StrongBuy:
		return 3
	default:
		return -1
	}
}
