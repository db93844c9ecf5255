package mapping

import (
	"context"
	"log/slog"

	"dealflow/internal/logging"
	"dealflow/internal/scoring"
	"dealflow/internal/startup"
)

// Profile defaults applied when a field is absent.
const (
	DefaultCompany      = "Unknown Company"
	DefaultProblem      = "Problem not identified"
	DefaultSolution     = "Solution not identified"
	DefaultFundingStage = "Seed"

	DefaultFounderName       = "Unknown Founder"
	DefaultFounderBackground = "Background not specified"
	DefaultExperienceYears   = 5
	DefaultDomain            = "Business"

	DefaultGrowthRate    = 0.15
	DefaultMaturity      = "Growing"
	DefaultRevenueGrowth = 0.2

	fallbackDifferentiator = "Unique market positioning"
	differentiatorPrefix   = "Innovative approach: "
	differentiatorRunes    = 100
)

// DefaultKeyPlayers is used when no competitor names were extracted.
var DefaultKeyPlayers = []string{"Competitor A", "Competitor B"}

// PlaceholderFounder stands in for a team that was not described.
func PlaceholderFounder() startup.Founder {
	return startup.Founder{
		Name:            "Founder",
		Background:      "Industry expert",
		ExperienceYears: DefaultExperienceYears,
		PreviousExits:   0,
		DomainExpertise: DefaultDomain,
		MarketFitScore:  6.0,
	}
}

// Mapper builds profiles. The zero value uses the deterministic estimator.
type Mapper struct {
	estimator scoring.Estimator
	logger    *slog.Logger
}

// New returns a Mapper that scores founder fit with est. A nil est falls
// back to scoring.Fallback.
func New(est scoring.Estimator, logger *slog.Logger) *Mapper {
	if est == nil {
		est = scoring.Fallback{}
	}
	return &Mapper{
		estimator: est,
		logger:    logging.NewComponentLogger(logger, "mapper"),
	}
}

// Map resolves every profile field from in.
func (m *Mapper) Map(ctx context.Context, in startup.Extracted) startup.Profile {
	est := m.estimatorOrFallback()
	market := resolveMarket(in)
	metrics := resolveMetrics(in)
	problem := in.ProblemStatement.Or(DefaultProblem)

	founders := make([]startup.Founder, 0, len(in.Founders))
	for _, raw := range in.Founders {
		founder := resolveFounder(raw)
		founder.MarketFitScore = scoring.Clip(est.FounderFit(ctx, founder, problem, market))
		founders = append(founders, founder)
	}
	if len(founders) == 0 {
		founders = append(founders, PlaceholderFounder())
	}

	profile := startup.Profile{
		CompanyName:          in.CompanyName.Or(DefaultCompany),
		Founders:             founders,
		ProblemStatement:     problem,
		Solution:             in.Solution.Or(DefaultSolution),
		UniqueDifferentiator: resolveDifferentiator(in),
		Market:               market,
		Metrics:              metrics,
		FundingStage:         in.FundingStage.Or(DefaultFundingStage),
		FundingAmount:        in.FundingAmount.Ptr(),
	}

	if m != nil && m.logger != nil {
		logging.WithContext(ctx, m.logger).Debug("profile mapped",
			logging.String("company", profile.CompanyName),
			logging.Int("founders", len(profile.Founders)),
			logging.Bool("placeholder_founder", len(in.Founders) == 0),
		)
	}
	return profile
}

func (m *Mapper) estimatorOrFallback() scoring.Estimator {
	if m == nil || m.estimator == nil {
		return scoring.Fallback{}
	}
	return m.estimator
}

func resolveFounder(raw startup.ExtractedFounder) startup.Founder {
	return startup.Founder{
		Name:            raw.Name.Or(DefaultFounderName),
		Background:      raw.Background.Or(DefaultFounderBackground),
		ExperienceYears: raw.ExperienceYears.Or(DefaultExperienceYears),
		PreviousExits:   raw.PreviousExits.Or(0),
		DomainExpertise: raw.DomainExpertise.Or(DefaultDomain),
	}
}

// resolveDifferentiator prefers an explicit differentiator and otherwise
// derives one from the submitted solution text.
func resolveDifferentiator(in startup.Extracted) string {
	if v, ok := firstString(in.Differentiator, in.UniqueDifferentiator); ok {
		return v
	}
	if in.Solution.Set {
		runes := []rune(in.Solution.Value)
		if len(runes) > differentiatorRunes {
			runes = runes[:differentiatorRunes]
		}
		return differentiatorPrefix + string(runes)
	}
	return fallbackDifferentiator
}

func resolveMarket(in startup.Extracted) startup.MarketAnalysis {
	nested := in.MarketOrEmpty()

	competition := startup.CompetitionMedium
	if raw, ok := firstString(in.CompetitionLevel, nested.CompetitionLevel); ok {
		if level, valid := startup.ParseCompetitionLevel(raw); valid {
			competition = level
		}
	}

	players := firstList(in.KeyPlayers, in.Competitors, nested.KeyPlayers)
	if len(players) == 0 {
		players = append([]string(nil), DefaultKeyPlayers...)
	}

	size := firstNumber(in.MarketSize, nested.MarketSize).Or(0)
	if size < 0 {
		size = 0
	}

	maturity, ok := firstString(in.MarketMaturity, nested.Maturity)
	if !ok {
		maturity = DefaultMaturity
	}

	return startup.MarketAnalysis{
		MarketSize:       size,
		GrowthRate:       firstNumber(in.MarketGrowthRate, nested.GrowthRate).Or(DefaultGrowthRate),
		CompetitionLevel: competition,
		KeyPlayers:       players,
		Maturity:         maturity,
	}
}

func resolveMetrics(in startup.Extracted) startup.BusinessMetrics {
	nested := in.MetricsOrEmpty()

	out := startup.BusinessMetrics{
		Revenue:       firstNumber(in.Revenue, nested.Revenue).Ptr(),
		RevenueGrowth: firstNumber(in.RevenueGrowth, nested.RevenueGrowth).Ptr(),
		Employees:     firstInt(in.Employees, nested.Employees).Ptr(),
		CAC:           firstNumber(in.CAC, nested.CAC).Ptr(),
		LTV:           firstNumber(in.LTV, nested.LTV).Ptr(),
		ChurnRate:     firstNumber(in.ChurnRate, nested.ChurnRate).Ptr(),
		BurnRate:      firstNumber(in.BurnRate, nested.BurnRate).Ptr(),
	}
	if out.RevenueGrowth == nil && out.Revenue != nil && *out.Revenue > 0 {
		out.RevenueGrowth = startup.Float(DefaultRevenueGrowth)
	}
	return out
}

func firstString(values ...startup.OptString) (string, bool) {
	for _, v := range values {
		if v.Set {
			return v.Value, true
		}
	}
	return "", false
}

func firstNumber(values ...startup.OptNumber) startup.OptNumber {
	for _, v := range values {
		if v.Set {
			return v
		}
	}
	return startup.OptNumber{}
}

func firstInt(values ...startup.OptInt) startup.OptInt {
	for _, v := range values {
		if v.Set {
			return v
		}
	}
	return startup.OptInt{}
}

func firstList(values ...startup.StringList) []string {
	for _, v := range values {
		if len(v) > 0 {
			return append([]string(nil), v...)
		}
	}
	return nil
}
