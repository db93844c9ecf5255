package startup

import (
	"strings"
	"time"
)

// CompetitionLevel is the categorical intensity of competition in a market.
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "low"
	CompetitionMedium CompetitionLevel = "medium"
	CompetitionHigh   CompetitionLevel = "high"
)

// ParseCompetitionLevel normalizes free text into a CompetitionLevel. Unknown
// values report false.
func ParseCompetitionLevel(value string) (CompetitionLevel, bool) {
	switch normalizeToken(value) {
	case "low":
		return CompetitionLow, true
	case "medium", "moderate", "mid":
		return CompetitionMedium, true
	case "high", "intense", "very_high":
		return CompetitionHigh, true
	default:
		return "", false
	}
}

// RiskLevel is the overall risk classification of a startup.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Founder is a single member of the founding team. Values are fixed once the
// profile is mapped.
type Founder struct {
	Name            string  `json:"name"`
	Background      string  `json:"background"`
	ExperienceYears int     `json:"experience_years"`
	PreviousExits   int     `json:"previous_exits"`
	DomainExpertise string  `json:"domain_expertise"`
	MarketFitScore  float64 `json:"founder_market_fit_score"`
}

// MarketAnalysis describes the market the startup addresses.
type MarketAnalysis struct {
	MarketSize       float64          `json:"market_size"`
	GrowthRate       float64          `json:"growth_rate"`
	CompetitionLevel CompetitionLevel `json:"competition_level"`
	KeyPlayers       []string         `json:"key_players"`
	Maturity         string           `json:"market_maturity"`
}

// BusinessMetrics holds optional traction figures. Pre-revenue startups lack
// most of them, so every field is nullable.
type BusinessMetrics struct {
	Revenue       *float64 `json:"revenue"`
	RevenueGrowth *float64 `json:"revenue_growth"`
	Employees     *int     `json:"employees"`
	CAC           *float64 `json:"cac"`
	LTV           *float64 `json:"ltv"`
	ChurnRate     *float64 `json:"churn_rate"`
	BurnRate      *float64 `json:"burn_rate"`
}

// HasRevenue reports whether a positive revenue figure is present.
func (m BusinessMetrics) HasRevenue() bool {
	return m.Revenue != nil && *m.Revenue > 0
}

// Profile is the validated, strongly typed view of a startup. Founders is
// never empty.
type Profile struct {
	CompanyName          string          `json:"company_name"`
	Founders             []Founder       `json:"founders"`
	ProblemStatement     string          `json:"problem_statement"`
	Solution             string          `json:"solution"`
	UniqueDifferentiator string          `json:"unique_differentiator"`
	Market               MarketAnalysis  `json:"market_analysis"`
	Metrics              BusinessMetrics `json:"business_metrics"`
	FundingStage         string          `json:"funding_stage"`
	FundingAmount        *float64        `json:"funding_amount,omitempty"`
}

// FounderNames lists founder names in profile order.
func (p Profile) FounderNames() []string {
	names := make([]string, 0, len(p.Founders))
	for _, f := range p.Founders {
		names = append(names, f.Name)
	}
	return names
}

// AverageFounderFit returns the mean founder-market-fit score, or 0 for an
// empty team.
func (p Profile) AverageFounderFit() float64 {
	if len(p.Founders) == 0 {
		return 0
	}
	var total float64
	for _, f := range p.Founders {
		total += f.MarketFitScore
	}
	return total / float64(len(p.Founders))
}

// Clone returns a deep copy so callers can never alias slices or metric
// pointers of a finished profile.
func (p Profile) Clone() Profile {
	out := p
	out.Founders = append([]Founder(nil), p.Founders...)
	out.Market.KeyPlayers = append([]string(nil), p.Market.KeyPlayers...)
	out.Metrics = BusinessMetrics{
		Revenue:       cloneFloat(p.Metrics.Revenue),
		RevenueGrowth: cloneFloat(p.Metrics.RevenueGrowth),
		Employees:     cloneInt(p.Metrics.Employees),
		CAC:           cloneFloat(p.Metrics.CAC),
		LTV:           cloneFloat(p.Metrics.LTV),
		ChurnRate:     cloneFloat(p.Metrics.ChurnRate),
		BurnRate:      cloneFloat(p.Metrics.BurnRate),
	}
	out.FundingAmount = cloneFloat(p.FundingAmount)
	return out
}

// RiskAssessment is derived from profile thresholds.
type RiskAssessment struct {
	Level       RiskLevel `json:"risk_level"`
	Factors     []string  `json:"risk_factors"`
	Mitigations []string  `json:"mitigation_strategies"`
}

// SegmentBreakdown records one scored segment of the memo.
type SegmentBreakdown struct {
	Segment  string   `json:"segment"`
	Base     float64  `json:"base_score"`
	Weighted float64  `json:"weighted_score"`
	Evidence []string `json:"evidence_points"`
}

// Memo is the terminal artifact of an evaluation. It is assembled once and
// handed out by value.
type Memo struct {
	Profile           Profile            `json:"startup_profile"`
	InvestmentScore   float64            `json:"investment_score"`
	Risk              RiskAssessment     `json:"risk_assessment"`
	Recommendation    string             `json:"recommendation"`
	Strengths         []string           `json:"key_strengths"`
	Concerns          []string           `json:"key_concerns"`
	Segments          []SegmentBreakdown `json:"segments,omitempty"`
	VerificationFlags []string           `json:"verification_red_flags,omitempty"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// Clone returns a deep copy of the memo.
func (m Memo) Clone() Memo {
	out := m
	out.Profile = m.Profile.Clone()
	out.Risk.Factors = append([]string(nil), m.Risk.Factors...)
	out.Risk.Mitigations = append([]string(nil), m.Risk.Mitigations...)
	out.Strengths = append([]string(nil), m.Strengths...)
	out.Concerns = append([]string(nil), m.Concerns...)
	out.VerificationFlags = append([]string(nil), m.VerificationFlags...)
	if m.Segments != nil {
		out.Segments = make([]SegmentBreakdown, len(m.Segments))
		for i, s := range m.Segments {
			s.Evidence = append([]string(nil), s.Evidence...)
			out.Segments[i] = s
		}
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func normalizeToken(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	return strings.ReplaceAll(strings.ReplaceAll(v, "-", "_"), " ", "_")
}
