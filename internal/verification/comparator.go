package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"dealflow/internal/logging"
	"dealflow/internal/scoring"
	"dealflow/internal/services/llm"
	"dealflow/internal/services/publicdata"
	"dealflow/internal/startup"
)

// Claim outcomes.
const (
	StatusInflated   = "inflated"
	StatusReasonable = "reasonable"
	StatusUnverified = "unverified"
	StatusNoRevenue  = "no_revenue"
)

// Competition and founder outcomes.
const (
	AccuracyUnknown     = "unknown"
	AccuracyConsistent  = "consistent"
	AccuracyUnderstated = "understated"

	CredibilityVerified   = "verified"
	CredibilityUnverified = "unverified"
	CredibilityUnknown    = "unknown"
)

// Sources of a verdict.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

const (
	inflatedMarketThreshold = 100e9
	crowdedCompetitorCount  = 3
)

var (
	marketOutcomes      = []string{"accurate", "verified", StatusReasonable, StatusInflated, StatusUnverified, AccuracyUnknown}
	competitionOutcomes = []string{AccuracyConsistent, AccuracyUnderstated, "overstated", AccuracyUnknown}
	founderOutcomes     = []string{CredibilityVerified, "high", "low", CredibilityUnverified, CredibilityUnknown}
)

// Claim is the verdict on one pitch claim.
type Claim struct {
	Claim      string  `json:"claim"`
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
	Note       string  `json:"note"`
}

// Result is the outcome of comparing a profile with public data.
type Result struct {
	MarketSizeAccuracy  string   `json:"market_size_accuracy"`
	CompetitionAccuracy string   `json:"competition_accuracy"`
	FounderCredibility  string   `json:"founder_credibility"`
	RedFlags            []string `json:"red_flags"`
	ConfidenceScore     float64  `json:"confidence_score"`
	Claims              []Claim  `json:"claims"`
	Source              string   `json:"source"`
}

// Claim returns the named claim verdict.
func (r Result) Claim(name string) (Claim, bool) {
	for _, c := range r.Claims {
		if c.Claim == name {
			return c, true
		}
	}
	return Claim{}, false
}

// Signals exposes the fields the scoring extras consult.
func (r Result) Signals() scoring.Signals {
	score := r.ConfidenceScore
	sig := scoring.Signals{Verification: &score, MarketAccuracy: r.MarketSizeAccuracy}
	if revenue, ok := r.Claim("revenue"); ok {
		sig.RevenueStatus = revenue.Status
	}
	return sig
}

// Comparator verifies pitch claims.
type Comparator struct {
	gen     llm.TextGenerator
	timeout time.Duration
	logger  *slog.Logger
}

// New returns a Comparator. A nil gen only ever uses the rules.
func New(gen llm.TextGenerator, timeout time.Duration, logger *slog.Logger) *Comparator {
	if gen == nil {
		gen = llm.Disabled{}
	}
	return &Comparator{gen: gen, timeout: timeout, logger: logging.NewComponentLogger(logger, "verification")}
}

type aiVerdict struct {
	MarketSizeAccuracy  string   `json:"market_size_accuracy"`
	CompetitionAccuracy string   `json:"competition_accuracy"`
	FounderCredibility  string   `json:"founder_credibility"`
	RedFlags            []string `json:"red_flags"`
	ConfidenceScore     *float64 `json:"confidence_score"`
}

func (v aiVerdict) valid() bool {
	return slices.Contains(marketOutcomes, v.MarketSizeAccuracy) &&
		slices.Contains(competitionOutcomes, v.CompetitionAccuracy) &&
		slices.Contains(founderOutcomes, v.FounderCredibility) &&
		v.ConfidenceScore != nil && *v.ConfidenceScore >= 0 && *v.ConfidenceScore <= 10
}

// Verify compares profile with publicData. It never fails.
func (c *Comparator) Verify(ctx context.Context, profile startup.Profile, publicData map[string]any) Result {
	rules := Fallback(profile, publicData)
	if c == nil || llm.IsDisabled(c.gen) {
		return rules
	}

	verdict, err := llm.GenerateJSON[aiVerdict](ctx, c.gen, c.timeout, verificationPrompt(profile, publicData))
	if err != nil || !verdict.valid() {
		reason := "verdict outside allowed values"
		if err != nil {
			reason = err.Error()
		}
		logging.WithContext(ctx, c.logger).Debug("ai verification unusable, using rules",
			logging.Args(logging.DecisionAttrs("verification", SourceFallback, reason)...)...)
		return rules
	}

	out := rules
	out.MarketSizeAccuracy = verdict.MarketSizeAccuracy
	out.CompetitionAccuracy = verdict.CompetitionAccuracy
	out.FounderCredibility = verdict.FounderCredibility
	out.ConfidenceScore = *verdict.ConfidenceScore
	out.RedFlags = cleanFlags(verdict.RedFlags)
	out.Source = SourceAI
	return out
}

// Fallback applies the deterministic verification rules.
func Fallback(profile startup.Profile, publicData map[string]any) Result {
	claims := []Claim{marketClaim(profile.Market.MarketSize), revenueClaim(profile.Metrics)}

	var total float64
	for _, claim := range claims {
		total += claim.Confidence
	}

	out := Result{
		MarketSizeAccuracy:  claims[0].Status,
		CompetitionAccuracy: competitionAccuracy(profile.Market.CompetitionLevel, publicData),
		FounderCredibility:  founderCredibility(profile.FounderNames(), publicData),
		RedFlags:            []string{},
		ConfidenceScore:     10 * total / float64(len(claims)),
		Claims:              claims,
		Source:              SourceFallback,
	}
	if out.MarketSizeAccuracy == StatusInflated {
		out.RedFlags = append(out.RedFlags, claims[0].Note)
	}
	if out.CompetitionAccuracy == AccuracyUnderstated {
		out.RedFlags = append(out.RedFlags, fmt.Sprintf("Pitch claims low competition but %d competitors are public", len(publicdata.Competitors(publicData))))
	}
	return out
}

func marketClaim(size float64) Claim {
	if size > inflatedMarketThreshold {
		return Claim{Claim: "market_size", Status: StatusInflated, Confidence: 0.8,
			Note: "Market size claim appears inflated compared to industry reports"}
	}
	return Claim{Claim: "market_size", Status: StatusReasonable, Confidence: 0.7,
		Note: "Market size claim within reasonable bounds"}
}

func revenueClaim(metrics startup.BusinessMetrics) Claim {
	if metrics.HasRevenue() {
		return Claim{Claim: "revenue", Status: StatusUnverified, Confidence: 0.5,
			Note: "Revenue claims require further verification"}
	}
	return Claim{Claim: "revenue", Status: StatusNoRevenue, Confidence: 0.9,
		Note: "No revenue reported or pre-revenue stage"}
}

func competitionAccuracy(claimed startup.CompetitionLevel, publicData map[string]any) string {
	competitors := publicdata.Competitors(publicData)
	switch {
	case len(competitors) == 0:
		return AccuracyUnknown
	case claimed == startup.CompetitionLow && len(competitors) > crowdedCompetitorCount:
		return AccuracyUnderstated
	default:
		return AccuracyConsistent
	}
}

func founderCredibility(names []string, publicData map[string]any) string {
	profiles := publicdata.FounderProfiles(publicData)
	if len(profiles) == 0 || len(names) == 0 {
		return CredibilityUnknown
	}
	for _, name := range names {
		if !hasPublicProfile(profiles, name) {
			return CredibilityUnverified
		}
	}
	return CredibilityVerified
}

func hasPublicProfile(profiles map[string]any, name string) bool {
	entry, ok := profiles[name].(map[string]any)
	if !ok {
		return false
	}
	link, _ := entry["linkedin_profile"].(string)
	return strings.TrimSpace(link) != ""
}

func cleanFlags(flags []string) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func verificationPrompt(profile startup.Profile, publicData map[string]any) string {
	claims, _ := json.Marshal(map[string]any{
		"company_name":      profile.CompanyName,
		"market_size":       profile.Market.MarketSize,
		"competition_level": profile.Market.CompetitionLevel,
		"revenue":           profile.Metrics.Revenue,
		"founders":          profile.FounderNames(),
	})
	public, _ := json.Marshal(publicData)
	return fmt.Sprintf(`Compare the startup's pitch claims with public data.
Pitch claims: %s
Public data: %s
Respond as {"market_size_accuracy": one of %q, "competition_accuracy": one of %q, "founder_credibility": one of %q, "red_flags": [strings], "confidence_score": <number 0-10>}`,
		claims, public, marketOutcomes, competitionOutcomes, founderOutcomes)
}
