package mapping_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dealflow/internal/mapping"
	"dealflow/internal/scoring"
	"dealflow/internal/services/llm"
	"dealflow/internal/startup"
	"dealflow/internal/testsupport"
)

func TestMapEmptySubmissionUsesDefaults(t *testing.T) {
	m := mapping.New(nil, nil)
	profile := m.Map(context.Background(), testsupport.MustExtract(t, testsupport.ScenarioC()))

	if profile.CompanyName != "Unknown Company" {
		t.Fatalf("unexpected company %q", profile.CompanyName)
	}
	if profile.ProblemStatement != "Problem not identified" || profile.Solution != "Solution not identified" {
		t.Fatalf("unexpected problem/solution %q / %q", profile.ProblemStatement, profile.Solution)
	}
	if profile.FundingStage != "Seed" || profile.FundingAmount != nil {
		t.Fatalf("unexpected funding %q %v", profile.FundingStage, profile.FundingAmount)
	}
	if diff := cmp.Diff([]startup.Founder{mapping.PlaceholderFounder()}, profile.Founders); diff != "" {
		t.Fatalf("founders mismatch (-want +got):\n%s", diff)
	}
	if profile.UniqueDifferentiator != "Unique market positioning" {
		t.Fatalf("unexpected differentiator %q", profile.UniqueDifferentiator)
	}

	wantMarket := startup.MarketAnalysis{
		MarketSize:       0,
		GrowthRate:       0.15,
		CompetitionLevel: startup.CompetitionMedium,
		KeyPlayers:       []string{"Competitor A", "Competitor B"},
		Maturity:         "Growing",
	}
	if diff := cmp.Diff(wantMarket, profile.Market); diff != "" {
		t.Fatalf("market mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(startup.BusinessMetrics{}, profile.Metrics); diff != "" {
		t.Fatalf("expected all metrics absent (-want +got):\n%s", diff)
	}
}

func TestMapScenarioAFounder(t *testing.T) {
	profile := mapping.New(scoring.Fallback{}, nil).Map(context.Background(), testsupport.MustExtract(t, testsupport.ScenarioA()))
	if len(profile.Founders) != 1 {
		t.Fatalf("expected one founder, got %d", len(profile.Founders))
	}
	f := profile.Founders[0]
	want := startup.Founder{
		Name:            "Unknown Founder",
		Background:      "Background not specified",
		ExperienceYears: 12,
		PreviousExits:   1,
		DomainExpertise: "Business",
		MarketFitScore:  scoring.FallbackFounderFit(12, "Business", "Problem not identified"),
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("founder mismatch (-want +got):\n%s", diff)
	}
	if profile.Market.MarketSize != 50e9 {
		t.Fatalf("unexpected market size %v", profile.Market.MarketSize)
	}
	if profile.Metrics.Revenue != nil {
		t.Fatalf("expected revenue absent, got %v", *profile.Metrics.Revenue)
	}
	if profile.Metrics.RevenueGrowth == nil || *profile.Metrics.RevenueGrowth != 0.8 {
		t.Fatalf("expected explicit revenue growth 0.8, got %v", profile.Metrics.RevenueGrowth)
	}
}

func TestMapKeepsExplicitZeroValues(t *testing.T) {
	raw := map[string]any{
		"revenue": 0,
		"founders": []any{
			map[string]any{"name": "Zed", "experience_years": 0, "previous_exits": 0},
		},
	}
	profile := mapping.New(nil, nil).Map(context.Background(), testsupport.MustExtract(t, raw))
	if got := profile.Founders[0].ExperienceYears; got != 0 {
		t.Fatalf("expected explicit 0 years kept, got %d", got)
	}
	if profile.Metrics.Revenue == nil || *profile.Metrics.Revenue != 0 {
		t.Fatalf("expected explicit zero revenue, got %v", profile.Metrics.Revenue)
	}
	if profile.Metrics.RevenueGrowth != nil {
		t.Fatalf("expected no default growth for zero revenue, got %v", *profile.Metrics.RevenueGrowth)
	}
}

func TestMapNonFiniteNumbersFallBackToDefaults(t *testing.T) {
	raw := map[string]any{
		"market_size": "NaN",
		"revenue":     "Inf",
		"founders": []any{
			map[string]any{"name": "Ada", "experience_years": 1e20},
		},
	}
	profile := mapping.New(scoring.Fallback{}, nil).Map(context.Background(), testsupport.MustExtract(t, raw))
	if profile.Market.MarketSize != 0 {
		t.Fatalf("market size = %v, want 0", profile.Market.MarketSize)
	}
	if profile.Metrics.Revenue != nil {
		t.Fatalf("revenue = %v, want absent", *profile.Metrics.Revenue)
	}
	if got := profile.Founders[0].ExperienceYears; got != mapping.DefaultExperienceYears {
		t.Fatalf("experience years = %d, want default %d", got, mapping.DefaultExperienceYears)
	}
	if _, err := json.Marshal(profile); err != nil {
		t.Fatalf("profile must stay serializable: %v", err)
	}
}

func TestMapResolvesNestedSections(t *testing.T) {
	raw := map[string]any{
		"market_size": "not a number",
		"market_analysis": map[string]any{
			"market_size":       "$3,000,000,000",
			"growth_rate":       0.4,
			"competition_level": "Intense",
			"key_players":       "Globex, Initech",
			"market_maturity":   "Emerging",
		},
		"business_metrics": map[string]any{
			"revenue":    250000,
			"employees":  "12",
			"churn_rate": 0.07,
		},
		"employees": 30,
	}
	profile := mapping.New(nil, nil).Map(context.Background(), testsupport.MustExtract(t, raw))

	wantMarket := startup.MarketAnalysis{
		MarketSize:       3e9,
		GrowthRate:       0.4,
		CompetitionLevel: startup.CompetitionHigh,
		KeyPlayers:       []string{"Globex", "Initech"},
		Maturity:         "Emerging",
	}
	if diff := cmp.Diff(wantMarket, profile.Market); diff != "" {
		t.Fatalf("market mismatch (-want +got):\n%s", diff)
	}
	if got := profile.Metrics.Employees; got == nil || *got != 30 {
		t.Fatalf("expected top-level employees to win, got %v", got)
	}
	if got := profile.Metrics.RevenueGrowth; got == nil || *got != 0.2 {
		t.Fatalf("expected default revenue growth for revenue > 0, got %v", got)
	}
	if got := profile.Metrics.ChurnRate; got == nil || *got != 0.07 {
		t.Fatalf("unexpected churn %v", got)
	}
}

func TestMapDifferentiatorResolution(t *testing.T) {
	long := strings.Repeat("é", 150)
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"explicit", map[string]any{"differentiator": "Patented", "unique_differentiator": "other"}, "Patented"},
		{"unique field", map[string]any{"differentiator": "", "unique_differentiator": "First mover"}, "First mover"},
		{"from solution", map[string]any{"solution": "Robots"}, "Innovative approach: Robots"},
		{"truncated by rune", map[string]any{"solution": long}, "Innovative approach: " + strings.Repeat("é", 100)},
		{"fallback", map[string]any{}, "Unique market positioning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := mapping.New(nil, nil).Map(context.Background(), testsupport.MustExtract(t, tt.raw))
			if profile.UniqueDifferentiator != tt.want {
				t.Fatalf("differentiator = %q, want %q", profile.UniqueDifferentiator, tt.want)
			}
		})
	}
}

func TestMapIsIdempotentWithoutAI(t *testing.T) {
	est := scoring.NewAIEstimator(llm.Disabled{}, time.Second, nil)
	m := mapping.New(est, nil)
	in := testsupport.MustExtract(t, testsupport.DetailedPitch())

	first := m.Map(context.Background(), in)
	second := m.Map(context.Background(), in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("mapping is not idempotent (-first +second):\n%s", diff)
	}
	if len(first.Founders) != 2 {
		t.Fatalf("expected two founders, got %d", len(first.Founders))
	}
	if first.Founders[0].MarketFitScore != scoring.FallbackFounderFit(11, "logistics", first.ProblemStatement) {
		t.Fatalf("unexpected fit %v", first.Founders[0].MarketFitScore)
	}
}

func TestMapUsesEstimatorForFit(t *testing.T) {
	gen := &testsupport.StubGenerator{Responses: []string{`{"founder_market_fit_score": 9.5}`}}
	m := mapping.New(scoring.NewAIEstimator(gen, time.Second, nil), nil)
	profile := m.Map(context.Background(), testsupport.MustExtract(t, testsupport.DetailedPitch()))
	for _, f := range profile.Founders {
		if f.MarketFitScore != 9.5 {
			t.Fatalf("expected model fit 9.5 for %s, got %v", f.Name, f.MarketFitScore)
		}
	}
	if gen.Calls() != 2 {
		t.Fatalf("expected one call per founder, got %d", gen.Calls())
	}
	if !strings.Contains(gen.Prompts()[0], "Ada Park") {
		t.Fatalf("expected founder name in prompt, got %q", gen.Prompts()[0])
	}
}

func TestMapAlwaysHasFounders(t *testing.T) {
	inputs := []map[string]any{
		{"founders": []any{}},
		{"founders": "nobody"},
		{"founders": []any{"not an object", 4}},
	}
	for i, raw := range inputs {
		profile := mapping.New(nil, nil).Map(context.Background(), testsupport.MustExtract(t, raw))
		if len(profile.Founders) < 1 {
			t.Fatalf("input %d: expected at least one founder", i)
		}
	}
}
