package scoring

import (
	"context"

	"dealflow/internal/startup"
)

// MetricsFromProfile flattens a profile into the metric map read by Combine.
// Absent business metrics stay absent so their formulas use neutral values.
func MetricsFromProfile(p startup.Profile, diff Differentiation) Metrics {
	m := Metrics{
		MetricFounderFit:      p.AverageFounderFit(),
		MetricDomainExpertise: neutral,
		MetricMarketSize:      p.Market.MarketSize,
		MetricMarketGrowth:    p.Market.GrowthRate,
		MetricCompetition:     CompetitionScore(p.Market.CompetitionLevel),
		MetricDifferentiator:  diff.Score,
		MetricSolutionClarity: diff.SolutionClarity,
		MetricProblemClarity:  diff.ProblemClarity,
	}

	var maxYears, exits int
	for _, f := range p.Founders {
		if f.ExperienceYears > maxYears {
			maxYears = f.ExperienceYears
		}
		exits += f.PreviousExits
		if f.DomainExpertise != "" {
			m[MetricDomainExpertise] = 6
		}
	}
	m[MetricExperienceYears] = float64(maxYears)
	m[MetricPreviousExits] = float64(exits)

	metrics := p.Metrics
	if metrics.Revenue != nil {
		m[MetricRevenue] = *metrics.Revenue
	}
	if metrics.RevenueGrowth != nil {
		m[MetricRevenueGrowth] = *metrics.RevenueGrowth
	}
	if metrics.ChurnRate != nil {
		m[MetricChurnRate] = *metrics.ChurnRate
	}
	if metrics.LTV != nil {
		m[MetricLTV] = *metrics.LTV
	}
	if metrics.CAC != nil {
		m[MetricCAC] = *metrics.CAC
	}
	if metrics.Employees != nil {
		m[MetricEmployees] = float64(*metrics.Employees)
	}
	return m
}

// ScoreProfile estimates differentiation and combines the profile's metrics.
func ScoreProfile(ctx context.Context, est Estimator, p startup.Profile, prefs startup.InvestorPreferences) (Result, Metrics) {
	if est == nil {
		est = Fallback{}
	}
	m := MetricsFromProfile(p, est.Differentiation(ctx, p))
	return Combine(m, prefs), m
}
