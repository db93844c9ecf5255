package memo_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dealflow/internal/interview"
	"dealflow/internal/mapping"
	"dealflow/internal/memo"
	"dealflow/internal/scoring"
	"dealflow/internal/services/publicdata"
	"dealflow/internal/startup"
	"dealflow/internal/testsupport"
	"dealflow/internal/verification"
)

var fixedNow = time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

func assembleScenario(t *testing.T, raw map[string]any) startup.Memo {
	t.Helper()
	ctx := context.Background()
	profile := mapping.New(scoring.Fallback{}, nil).Map(ctx, testsupport.MustExtract(t, raw))
	result, _ := scoring.ScoreProfile(ctx, scoring.Fallback{}, profile, startup.DefaultPreferences())
	return memo.Assemble(profile, result, nil, fixedNow)
}

func TestScenarioABuy(t *testing.T) {
	m := assembleScenario(t, testsupport.ScenarioA())
	if m.InvestmentScore < 7 || m.InvestmentScore >= 8 {
		t.Fatalf("expected score in [7,8), got %v", m.InvestmentScore)
	}
	if m.Risk.Level != startup.RiskLow {
		t.Fatalf("expected low risk, got %s (%v)", m.Risk.Level, m.Risk.Factors)
	}
	if m.Recommendation != memo.Buy {
		t.Fatalf("expected BUY, got %q", m.Recommendation)
	}
	if diff := cmp.Diff([]string{"Strong founder-market fit", "Large addressable market"}, m.Strengths); diff != "" {
		t.Fatalf("strengths mismatch (-want +got):\n%s", diff)
	}
	if len(m.Segments) != 4 {
		t.Fatalf("expected four segments, got %d", len(m.Segments))
	}
}

func TestScenarioBPassOrHold(t *testing.T) {
	m := assembleScenario(t, testsupport.ScenarioB())
	if m.Recommendation != memo.Pass && m.Recommendation != memo.Hold {
		t.Fatalf("expected HOLD or PASS, got %q", m.Recommendation)
	}
	want := []string{"High competition in market", "High customer churn rate", "Negative revenue growth"}
	if diff := cmp.Diff(want, m.Risk.Factors); diff != "" {
		t.Fatalf("risk factors mismatch (-want +got):\n%s", diff)
	}
	if m.Risk.Level != startup.RiskMedium || len(m.Risk.Mitigations) != 3 {
		t.Fatalf("unexpected risk %+v", m.Risk)
	}
	if diff := cmp.Diff([]string{"Highly competitive market"}, m.Concerns); diff != "" {
		t.Fatalf("concerns mismatch (-want +got):\n%s", diff)
	}
}

func TestRiskLevelFor(t *testing.T) {
	tests := map[int]startup.RiskLevel{0: startup.RiskLow, 1: startup.RiskLow, 2: startup.RiskMedium, 3: startup.RiskMedium, 4: startup.RiskHigh, 5: startup.RiskHigh}
	for n, want := range tests {
		if got := memo.RiskLevelFor(n); got != want {
			t.Fatalf("RiskLevelFor(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestLimitedMarketRisk(t *testing.T) {
	risk := memo.AssessRisk(startup.Profile{
		Market:  startup.MarketAnalysis{MarketSize: 5e8},
		Metrics: startup.BusinessMetrics{Revenue: startup.Float(10)},
	})
	if diff := cmp.Diff([]string{"Limited market size"}, risk.Factors); diff != "" {
		t.Fatalf("factors mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommendTiers(t *testing.T) {
	tests := []struct {
		score float64
		risk  startup.RiskLevel
		want  string
	}{
		{8, startup.RiskLow, memo.StrongBuy},
		{8, startup.RiskMedium, memo.Buy},
		{9.5, startup.RiskHigh, memo.Hold},
		{6.5, startup.RiskLow, memo.Buy},
		{6.49, startup.RiskLow, memo.Hold},
		{5, startup.RiskHigh, memo.Hold},
		{4.99, startup.RiskLow, memo.Pass},
	}
	for _, tt := range tests {
		if got := memo.Recommend(tt.score, tt.risk); got != tt.want {
			t.Fatalf("Recommend(%v, %s) = %q, want %q", tt.score, tt.risk, got, tt.want)
		}
	}
}

func TestRecommendIsMonotonic(t *testing.T) {
	for _, risk := range []startup.RiskLevel{startup.RiskLow, startup.RiskMedium, startup.RiskHigh} {
		prev := -1
		for i := 0; i <= 1000; i++ {
			rank := memo.Rank(memo.Recommend(float64(i)/100, risk))
			if rank < prev {
				t.Fatalf("recommendation rank dropped at score %.2f risk %s", float64(i)/100, risk)
			}
			prev = rank
		}
	}
}

func TestFallbackListsNeverEmpty(t *testing.T) {
	p := startup.Profile{
		Founders: []startup.Founder{{MarketFitScore: 5}},
		Metrics:  startup.BusinessMetrics{Revenue: startup.Float(1)},
	}
	if diff := cmp.Diff([]string{"Revenue generating"}, memo.Strengths(p)); diff != "" {
		t.Fatalf("strengths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Limited information available"}, memo.Concerns(p)); diff != "" {
		t.Fatalf("concerns mismatch (-want +got):\n%s", diff)
	}
	if got := memo.Strengths(startup.Profile{Founders: []startup.Founder{{}}}); len(got) != 1 || got[0] != "Early-stage opportunity" {
		t.Fatalf("unexpected fallback strengths %v", got)
	}
}

func TestVerificationFlagsMergeIntoConcerns(t *testing.T) {
	r := verification.Result{
		MarketSizeAccuracy: verification.StatusReasonable,
		FounderCredibility: verification.CredibilityUnverified,
		RedFlags:           []string{"Market size claims may be inflated", "Thin moat"},
	}
	summary := verification.Summary{MarketSize: verification.MarketComparison{Discrepancy: true}}
	flags := memo.VerificationFlags(summary, r)
	want := []string{"Market size claims may be inflated", "Founder credentials could not be verified", "Thin moat"}
	if diff := cmp.Diff(want, flags); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}

	p := startup.Profile{Founders: []startup.Founder{{}}, Metrics: startup.BusinessMetrics{Revenue: startup.Float(10)}}
	m := memo.Assemble(p, scoring.Result{Overall: 6}, flags, fixedNow)
	if diff := cmp.Diff(want, m.Concerns); diff != "" {
		t.Fatalf("concerns mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDraft(t *testing.T) {
	p := startup.Profile{
		CompanyName: "Acme",
		Founders:    []startup.Founder{{Name: "Ada"}, {Name: "Ben"}},
		Market:      startup.MarketAnalysis{MarketSize: 12e9},
	}
	public, _ := publicdata.Synthetic{}.Lookup(context.Background(), "Acme", []string{"Ada", "Ben"})
	r := verification.Fallback(p, public)

	draft := memo.BuildDraft(p, public, r)
	// market 5 (reasonable), founder 8 (verified), competition 6 (two competitors)
	if draft.PreliminaryScore != 6.3 {
		t.Fatalf("unexpected preliminary score %v", draft.PreliminaryScore)
	}
	if draft.Recommendation != memo.DraftModerate {
		t.Fatalf("unexpected recommendation %q", draft.Recommendation)
	}
	want := []string{"Market opportunity: $12,000,000,000", "Team of 2 founders"}
	if diff := cmp.Diff(want, draft.Strengths); diff != "" {
		t.Fatalf("strengths mismatch (-want +got):\n%s", diff)
	}
	if draft.KeyFindings.CompetitiveLandscape != "2 competitors identified" {
		t.Fatalf("unexpected findings %+v", draft.KeyFindings)
	}
}

func TestDraftRecommendation(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		r     verification.Result
		want  string
	}{
		{"many red flags", 9, verification.Result{RedFlags: []string{"a", "b", "c"}, ConfidenceScore: 9}, memo.DraftPass},
		{"low confidence", 9, verification.Result{ConfidenceScore: 3.9}, memo.DraftPass},
		{"strong", 7, verification.Result{ConfidenceScore: 8}, memo.DraftStrong},
		{"moderate", 5, verification.Result{ConfidenceScore: 8}, memo.DraftModerate},
		{"weak", 4.9, verification.Result{ConfidenceScore: 8}, memo.DraftWeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := memo.DraftRecommendation(tt.score, tt.r); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRefineFallbackKeepsScore(t *testing.T) {
	original := assembleScenario(t, testsupport.ScenarioA())
	refinement := memo.NewRefiner(nil, time.Second, nil).Refine(context.Background(), original, memo.Evidence{})

	if refinement.Memo.InvestmentScore != original.InvestmentScore {
		t.Fatalf("expected unchanged score, got %v -> %v", original.InvestmentScore, refinement.Memo.InvestmentScore)
	}
	if refinement.Report.ConfidenceLevel != 7 || refinement.Report.ConfidenceDelta != 2 {
		t.Fatalf("unexpected confidence %+v", refinement.Report)
	}
	if refinement.Report.RecommendationChanged || refinement.Report.ScoreChange != 0 {
		t.Fatalf("unexpected report %+v", refinement.Report)
	}
	if diff := cmp.Diff(original.Strengths, refinement.Memo.Strengths); diff != "" {
		t.Fatalf("fallback should not touch strengths (-want +got):\n%s", diff)
	}
	if !strings.Contains(refinement.Markdown, "**Change**: 0.0") {
		t.Fatalf("unexpected markdown:\n%s", refinement.Markdown)
	}
}

func TestRefineBoundsAdjustment(t *testing.T) {
	original := startup.Memo{InvestmentScore: 9, Risk: startup.RiskAssessment{Level: startup.RiskLow}, Recommendation: memo.StrongBuy}
	tests := []struct {
		name      string
		response  string
		wantScore float64
	}{
		{"capped upward and clipped", `{"recommended_score_adjustment": 5, "confidence_level": 9, "verified_strengths": ["Sticky customers"]}`, 10},
		{"capped downward", `{"recommended_score_adjustment": -4.5, "confidence_level": 6}`, 7},
		{"bad confidence falls back", `{"recommended_score_adjustment": -1, "confidence_level": 12}`, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &testsupport.StubGenerator{Responses: []string{tt.response}}
			analysis := &interview.Analysis{FounderCredibility: interview.Assessment{Score: 8}}
			refinement := memo.NewRefiner(gen, time.Second, nil).Refine(context.Background(), original, memo.Evidence{Interview: analysis})
			if refinement.Memo.InvestmentScore != tt.wantScore {
				t.Fatalf("refined score = %v, want %v", refinement.Memo.InvestmentScore, tt.wantScore)
			}
			if refinement.Memo.Recommendation != memo.Recommend(tt.wantScore, startup.RiskLow) {
				t.Fatalf("recommendation not recomputed: %q", refinement.Memo.Recommendation)
			}
			if original.InvestmentScore != 9 {
				t.Fatal("original memo was mutated")
			}
		})
	}
}

func TestRefineMergesModelStrengths(t *testing.T) {
	original := startup.Memo{InvestmentScore: 6, Strengths: []string{"Revenue generating"}, Risk: startup.RiskAssessment{Level: startup.RiskMedium}}
	gen := &testsupport.StubGenerator{Responses: []string{`{"verified_strengths": ["Revenue generating", "Sticky customers"], "recommended_score_adjustment": 1, "confidence_level": 8}`}}
	refinement := memo.NewRefiner(gen, time.Second, nil).Refine(context.Background(), original, memo.Evidence{})
	if diff := cmp.Diff([]string{"Revenue generating", "Sticky customers"}, refinement.Memo.Strengths); diff != "" {
		t.Fatalf("strengths mismatch (-want +got):\n%s", diff)
	}
	if refinement.Synthesis.Source != "ai" || !refinement.Report.RecommendationChanged {
		t.Fatalf("unexpected refinement %+v", refinement.Report)
	}
}

func TestRefineSkipsRewordedStrengths(t *testing.T) {
	original := startup.Memo{InvestmentScore: 6, Strengths: []string{"Strong founder-market fit"}, Risk: startup.RiskAssessment{Level: startup.RiskMedium}}
	gen := &testsupport.StubGenerator{Responses: []string{`{"verified_strengths": ["strong founder market fit", "Sticky customers"], "confidence_level": 6}`}}
	refinement := memo.NewRefiner(gen, time.Second, nil).Refine(context.Background(), original, memo.Evidence{})
	if diff := cmp.Diff([]string{"Strong founder-market fit", "Sticky customers"}, refinement.Memo.Strengths); diff != "" {
		t.Fatalf("strengths mismatch (-want +got):\n%s", diff)
	}
}

func TestDealNote(t *testing.T) {
	ctx := context.Background()
	profile := mapping.New(nil, nil).Map(ctx, testsupport.MustExtract(t, testsupport.DetailedPitch()))
	result, _ := scoring.ScoreProfile(ctx, scoring.Fallback{}, profile, startup.DefaultPreferences())
	m := memo.Assemble(profile, result, []string{"Thin moat"}, fixedNow)

	note := memo.DealNote(m)
	for _, want := range []string{
		"# Deal Note: Acme Robotics",
		fmt.Sprintf("**Investment Score:** %.1f/10", m.InvestmentScore),
		m.Recommendation,
		"**Ada Park**",
		"Founder-market fit",
		"Market size: $12,000,000,000",
		"Competition: Medium",
		"Revenue: $1,200,000",
		"Employees: 24",
		"LTV: $4,500",
		"Patented grasp planning",
		"## Verification Flags",
		"Thin moat",
		"_Generated 2026-03-02 09:30 UTC_",
	} {
		if !strings.Contains(note, want) {
			t.Fatalf("deal note missing %q:\n%s", want, note)
		}
	}
	if strings.Contains(note, "Burn rate") {
		t.Fatalf("deal note should omit absent metrics:\n%s", note)
	}
}

func TestDealNoteWithoutMetrics(t *testing.T) {
	m := assembleScenario(t, testsupport.ScenarioC())
	note := memo.DealNote(m)
	if !strings.Contains(note, "# Deal Note: Unknown Company") || !strings.Contains(note, "No business metrics reported.") {
		t.Fatalf("unexpected note:\n%s", note)
	}
}
