package scoring

import (
	"fmt"
	"math"

	"dealflow/internal/startup"
)

// Segment names a scored segment.
type Segment string

const (
	SegmentFounder         Segment = "founder"
	SegmentMarket          Segment = "market"
	SegmentDifferentiation Segment = "differentiation"
	SegmentTraction        Segment = "traction"
)

// Segments lists the segments in weight order.
var Segments = [4]Segment{SegmentFounder, SegmentMarket, SegmentDifferentiation, SegmentTraction}

// Metric keys read by the segment formulas.
const (
	MetricFounderFit      = "founder_market_fit"
	MetricExperienceYears = "founder_experience_years"
	MetricPreviousExits   = "founder_previous_exits"
	MetricDomainExpertise = "founder_domain_expertise"
	MetricMarketSize      = "market_size"
	MetricMarketGrowth    = "market_growth_rate"
	MetricCompetition     = "competition_score"
	MetricDifferentiator  = "differentiator_score"
	MetricSolutionClarity = "solution_clarity"
	MetricProblemClarity  = "problem_clarity"
	MetricRevenue         = "revenue"
	MetricRevenueGrowth   = "revenue_growth"
	MetricChurnRate       = "churn_rate"
	MetricLTV             = "ltv"
	MetricCAC             = "cac"
	MetricEmployees       = "employees"
)

// MetricKeys is every key the formulas consult, used for completeness.
var MetricKeys = []string{
	MetricFounderFit, MetricExperienceYears, MetricPreviousExits, MetricDomainExpertise,
	MetricMarketSize, MetricMarketGrowth, MetricCompetition,
	MetricDifferentiator, MetricSolutionClarity, MetricProblemClarity,
	MetricRevenue, MetricRevenueGrowth, MetricChurnRate, MetricLTV, MetricCAC, MetricEmployees,
}

const neutral = 5.0

// Metrics holds numeric inputs keyed by the Metric constants. Missing keys
// take the neutral default of their formula.
type Metrics map[string]float64

func (m Metrics) get(key string, fallback float64) float64 {
	if v, ok := m[key]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return fallback
}

func (m Metrics) has(key string) bool {
	_, ok := m[key]
	return ok
}

// SegmentScore is the score of one segment.
type SegmentScore struct {
	Segment  Segment  `json:"segment"`
	Base     float64  `json:"base_score"`
	Weighted float64  `json:"weighted_score"`
	Evidence []string `json:"evidence_points"`
}

// Result is the combined output for all four segments.
type Result struct {
	Segments []SegmentScore `json:"segments"`
	Overall  float64        `json:"overall_score"`
}

// Segment returns the score for name, or a zero value when absent.
func (r Result) Segment(name Segment) SegmentScore {
	for _, s := range r.Segments {
		if s.Segment == name {
			return s
		}
	}
	return SegmentScore{Segment: name}
}

// Breakdown converts the segment scores into memo records.
func (r Result) Breakdown() []startup.SegmentBreakdown {
	out := make([]startup.SegmentBreakdown, 0, len(r.Segments))
	for _, s := range r.Segments {
		out = append(out, startup.SegmentBreakdown{
			Segment:  string(s.Segment),
			Base:     s.Base,
			Weighted: s.Weighted,
			Evidence: append([]string(nil), s.Evidence...),
		})
	}
	return out
}

// Combine scores every segment and folds the weighted scores into the
// overall score.
//
// A segment's weighted score is base × (weight / 0.25) clipped to [0,10], so
// an investor who doubles a weight can push a segment past 10 before the
// clip. The overall score then uses the weights normalized to sum to 1.
func Combine(m Metrics, prefs startup.InvestorPreferences) Result {
	raw := prefs.Weights()
	norm := prefs.Normalized()
	scorers := [4]func(Metrics) (float64, []string){
		FounderSegment, MarketSegment, DifferentiationSegment, TractionSegment,
	}

	result := Result{Segments: make([]SegmentScore, 0, len(Segments))}
	var overall float64
	for i, name := range Segments {
		base, evidence := scorers[i](m)
		base = clip(base)
		weight := raw[i]
		if weight < 0 {
			weight = 0
		}
		if sumPositive(raw) <= 0 {
			weight = startup.DefaultSegmentWeight
		}
		weighted := clip(base * (weight / startup.DefaultSegmentWeight))
		overall += weighted * norm[i]
		result.Segments = append(result.Segments, SegmentScore{
			Segment:  name,
			Base:     base,
			Weighted: weighted,
			Evidence: evidence,
		})
	}
	result.Overall = clip(overall)
	return result
}

// FounderSegment scores the founding team.
func FounderSegment(m Metrics) (float64, []string) {
	fit := clip(m.get(MetricFounderFit, neutral))
	years := clip(m.get(MetricExperienceYears, 0))
	exits := clip(m.get(MetricPreviousExits, 0) * 5)
	domain := clip(m.get(MetricDomainExpertise, neutral))

	score := fit*0.4 + years*0.3 + exits*0.15 + domain*0.15
	evidence := []string{
		fmt.Sprintf("Founder-market fit %.1f/10", fit),
		fmt.Sprintf("%s of experience", pluralize(m.get(MetricExperienceYears, 0), "year")),
		pluralize(m.get(MetricPreviousExits, 0), "previous exit"),
	}
	return score, evidence
}

// MarketSegment scores market size, growth and competition.
func MarketSegment(m Metrics) (float64, []string) {
	size := m.get(MetricMarketSize, 0)
	growth := m.get(MetricMarketGrowth, 0)
	sizeScore := clip(size / 1e9)
	growthScore := clip(growth * 50)
	competition := clip(m.get(MetricCompetition, CompetitionScore(startup.CompetitionMedium)))

	score := sizeScore*0.4 + growthScore*0.3 + competition*0.3
	evidence := []string{
		fmt.Sprintf("Market size $%.1fB", size/1e9),
		fmt.Sprintf("Market growth %.1f%%", growth*100),
		fmt.Sprintf("Competition score %.0f/10", competition),
	}
	return score, evidence
}

// DifferentiationSegment scores the differentiator and the clarity of the
// problem and solution.
func DifferentiationSegment(m Metrics) (float64, []string) {
	keyword := clip(m.get(MetricDifferentiator, neutral))
	solution := clip(m.get(MetricSolutionClarity, neutral))
	problem := clip(m.get(MetricProblemClarity, neutral))

	score := keyword*0.6 + solution*0.2 + problem*0.2
	evidence := []string{
		fmt.Sprintf("Differentiator strength %.1f/10", keyword),
		fmt.Sprintf("Solution clarity %.1f/10", solution),
		fmt.Sprintf("Problem clarity %.1f/10", problem),
	}
	return score, evidence
}

// TractionSegment scores revenue, growth, retention, unit economics and team.
func TractionSegment(m Metrics) (float64, []string) {
	revenue := m.get(MetricRevenue, 0)
	growth := m.get(MetricRevenueGrowth, 0)
	revenueScore := clip(revenue / 1e6)
	growthScore := clip(growth * 10)

	evidence := make([]string, 0, 5)
	if revenue > 0 {
		evidence = append(evidence, fmt.Sprintf("Revenue $%.0f", revenue))
	} else {
		evidence = append(evidence, "Pre-revenue")
	}
	if m.has(MetricRevenueGrowth) {
		evidence = append(evidence, fmt.Sprintf("Revenue growth %.1f%%", growth*100))
	}

	retention := neutral
	if m.has(MetricChurnRate) {
		churn := m.get(MetricChurnRate, 0)
		retention = clip((1 - churn) * 10)
		evidence = append(evidence, fmt.Sprintf("Churn %.1f%%", churn*100))
	}

	unit := neutral
	ltv, cac := m.get(MetricLTV, 0), m.get(MetricCAC, 0)
	if m.has(MetricLTV) && m.has(MetricCAC) && cac > 0 {
		ratio := ltv / cac
		unit = clip(ratio * 10 / 3)
		evidence = append(evidence, fmt.Sprintf("LTV/CAC %.1f", ratio))
	}

	team := neutral
	if m.has(MetricEmployees) {
		employees := m.get(MetricEmployees, 0)
		team = clip(employees / 10)
		evidence = append(evidence, pluralize(employees, "employee"))
	}

	score := revenueScore*0.15 + growthScore*0.35 + retention*0.3 + unit*0.1 + team*0.1
	return score, evidence
}

// CompetitionScore maps a competition level to its market sub-score.
func CompetitionScore(level startup.CompetitionLevel) float64 {
	switch level {
	case startup.CompetitionLow:
		return 9
	case startup.CompetitionHigh:
		return 3
	default:
		return 6
	}
}

func clip(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 10:
		return 10
	default:
		return v
	}
}

// Clip bounds v to the [0,10] score range.
func Clip(v float64) float64 { return clip(v) }

func sumPositive(values [4]float64) float64 {
	var total float64
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	return total
}

func pluralize(count float64, noun string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	if count == math.Trunc(count) {
		return fmt.Sprintf("%.0f %ss", count, noun)
	}
	return fmt.Sprintf("%.1f %ss", count, noun)
}
