package memo

import (
	"slices"
	"time"

	"dealflow/internal/scoring"
	"dealflow/internal/startup"
	"dealflow/internal/verification"
)

const (
	fallbackStrength = "Early-stage opportunity"
	fallbackConcern  = "Limited information available"

	concernMarketInflated     = "Market size claims may be inflated"
	concernFoundersUnverified = "Founder credentials could not be verified"
)

// Strengths lists the positive signals of p. It is never empty.
func Strengths(p startup.Profile) []string {
	out := []string{}
	if p.AverageFounderFit() > 7 {
		out = append(out, "Strong founder-market fit")
	}
	if p.Market.MarketSize > 1e9 {
		out = append(out, "Large addressable market")
	}
	if p.Metrics.HasRevenue() {
		out = append(out, "Revenue generating")
	}
	if len(out) == 0 {
		out = append(out, fallbackStrength)
	}
	return out
}

// Concerns lists the negative signals of p plus any extra concerns, without
// duplicates. It is never empty.
func Concerns(p startup.Profile, extra ...string) []string {
	out := []string{}
	if p.Market.CompetitionLevel == startup.CompetitionHigh {
		out = append(out, "Highly competitive market")
	}
	if !p.Metrics.HasRevenue() {
		out = append(out, "Pre-revenue stage")
	}
	for _, c := range extra {
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		out = append(out, fallbackConcern)
	}
	return out
}

// VerificationFlags lists the verification concerns that reach the memo: a
// market size discrepancy, unverified founders and the comparator's own red
// flags.
func VerificationFlags(summary verification.Summary, r verification.Result) []string {
	out := []string{}
	if summary.MarketSize.Discrepancy {
		out = append(out, concernMarketInflated)
	}
	if r.FounderCredibility == verification.CredibilityUnverified {
		out = append(out, concernFoundersUnverified)
	}
	for _, flag := range r.RedFlags {
		if !slices.Contains(out, flag) {
			out = append(out, flag)
		}
	}
	return out
}

// Assemble builds the canonical memo from a profile and its combined score.
// flags are verification concerns merged into the memo's concerns.
func Assemble(p startup.Profile, result scoring.Result, flags []string, now time.Time) startup.Memo {
	risk := AssessRisk(p)
	score := scoring.Clip(result.Overall)
	return startup.Memo{
		Profile:           p.Clone(),
		InvestmentScore:   score,
		Risk:              risk,
		Recommendation:    Recommend(score, risk.Level),
		Strengths:         Strengths(p),
		Concerns:          Concerns(p, flags...),
		Segments:          result.Breakdown(),
		VerificationFlags: append([]string{}, flags...),
		GeneratedAt:       now.UTC(),
	}
}
