package scoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealflow/internal/scoring"
	"dealflow/internal/services/llm"
	"dealflow/internal/startup"
	"dealflow/internal/testsupport"
)

func TestDifferentiatorScore(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"Patented sensor array", 8},
		{"PROPRIETARY dataset", 8},
		{"The first platform for X", 7},
		{"Unique market positioning", 7},
		{"Better UX", 5},
		{"", 5},
	}
	for _, tt := range tests {
		if got := scoring.DifferentiatorScore(tt.text); got != tt.want {
			t.Fatalf("DifferentiatorScore(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestFallbackFounderFit(t *testing.T) {
	tests := []struct {
		name    string
		years   int
		domain  string
		problem string
		want    float64
	}{
		{"experience only", 12, "", "anything", 8.6},
		{"domain match", 5, "Fintech", "Small fintech teams struggle", 8.5},
		{"domain miss", 5, "Business", "Problem not identified", 6.5},
		{"empty domain never matches", 0, "  ", "", 5},
		{"capped", 30, "health", "health records", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoring.FallbackFounderFit(tt.years, tt.domain, tt.problem); !approx(got, tt.want) {
				t.Fatalf("FallbackFounderFit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAIEstimatorUsesModelWhenValid(t *testing.T) {
	gen := &testsupport.StubGenerator{Responses: []string{`{"founder_market_fit_score": 9.1}`}}
	est := scoring.NewAIEstimator(gen, time.Second, nil)
	got := est.FounderFit(context.Background(), startup.Founder{Name: "Ada"}, "problem", startup.MarketAnalysis{})
	if got != 9.1 {
		t.Fatalf("expected model score 9.1, got %v", got)
	}
	if gen.Calls() != 1 {
		t.Fatalf("expected one generator call, got %d", gen.Calls())
	}
}

func TestAIEstimatorFallsBack(t *testing.T) {
	founder := startup.Founder{ExperienceYears: 10, DomainExpertise: "Business"}
	want := scoring.FallbackFounderFit(10, "Business", "problem")

	tests := []struct {
		name string
		gen  llm.TextGenerator
	}{
		{"disabled", llm.Disabled{}},
		{"nil", nil},
		{"error", &testsupport.StubGenerator{Err: errors.New("boom")}},
		{"malformed", &testsupport.StubGenerator{Responses: []string{"```json\n{\"founder_market_fit_score\": 9}\n```"}}},
		{"out of range", &testsupport.StubGenerator{Responses: []string{`{"founder_market_fit_score": 14}`}}},
		{"missing field", &testsupport.StubGenerator{Responses: []string{`{"score": 9}`}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := scoring.NewAIEstimator(tt.gen, time.Second, nil)
			if got := est.FounderFit(context.Background(), founder, "problem", startup.MarketAnalysis{}); got != want {
				t.Fatalf("FounderFit = %v, want fallback %v", got, want)
			}
		})
	}
}

func TestAIEstimatorDifferentiation(t *testing.T) {
	profile := startup.Profile{UniqueDifferentiator: "Proprietary models"}

	gen := &testsupport.StubGenerator{Responses: []string{`{"differentiator_score": 6, "solution_clarity": 9, "problem_clarity": 8}`}}
	got := scoring.NewAIEstimator(gen, time.Second, nil).Differentiation(context.Background(), profile)
	if got != (scoring.Differentiation{Score: 6, SolutionClarity: 9, ProblemClarity: 8}) {
		t.Fatalf("unexpected model differentiation %+v", got)
	}

	partial := &testsupport.StubGenerator{Responses: []string{`{"differentiator_score": 6}`}}
	got = scoring.NewAIEstimator(partial, time.Second, nil).Differentiation(context.Background(), profile)
	if got != (scoring.Differentiation{Score: 8, SolutionClarity: 5, ProblemClarity: 5}) {
		t.Fatalf("expected fallback differentiation, got %+v", got)
	}
}
