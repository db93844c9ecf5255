package memo

import "dealflow/internal/startup"

type riskRule struct {
	factor     string
	mitigation string
	applies    func(startup.Profile) bool
}

var riskRules = []riskRule{
	{
		factor:     "High competition in market",
		mitigation: "Focus on unique value proposition and customer retention",
		applies: func(p startup.Profile) bool {
			return p.Market.CompetitionLevel == startup.CompetitionHigh
		},
	},
	{
		factor:     "High customer churn rate",
		mitigation: "Implement customer success programs and product improvements",
		applies: func(p startup.Profile) bool {
			return p.Metrics.ChurnRate != nil && *p.Metrics.ChurnRate > 0.1
		},
	},
	{
		factor:     "No revenue traction",
		mitigation: "Develop clear monetization strategy and sales pipeline",
		applies: func(p startup.Profile) bool {
			return !p.Metrics.HasRevenue()
		},
	},
	{
		factor:     "Negative revenue growth",
		mitigation: "Revisit pricing and retention to restore growth",
		applies: func(p startup.Profile) bool {
			return p.Metrics.RevenueGrowth != nil && *p.Metrics.RevenueGrowth < 0
		},
	},
	{
		factor:     "Limited market size",
		mitigation: "Validate expansion into adjacent markets",
		applies: func(p startup.Profile) bool {
			return p.Market.MarketSize > 0 && p.Market.MarketSize < 1e9
		},
	},
}

// AssessRisk lists the risk factors present in p with one mitigation each.
func AssessRisk(p startup.Profile) startup.RiskAssessment {
	out := startup.RiskAssessment{Factors: []string{}, Mitigations: []string{}}
	for _, rule := range riskRules {
		if rule.applies(p) {
			out.Factors = append(out.Factors, rule.factor)
			out.Mitigations = append(out.Mitigations, rule.mitigation)
		}
	}
	out.Level = RiskLevelFor(len(out.Factors))
	return out
}

// RiskLevelFor maps a factor count to a level: more than three is high, more
// than one is medium.
func RiskLevelFor(factors int) startup.RiskLevel {
	switch {
	case factors > 3:
		return startup.RiskHigh
	case factors > 1:
		return startup.RiskMedium
	default:
		return startup.RiskLow
	}
}
