package verification

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dealflow/internal/services/publicdata"
	"dealflow/internal/startup"
)

// MarketComparison contrasts the pitched market size with its verdict.
type MarketComparison struct {
	PitchClaim       string `json:"pitch_claim"`
	PublicValidation string `json:"public_validation"`
	Discrepancy      bool   `json:"discrepancy"`
}

// CompetitionComparison contrasts pitched competition with public findings.
type CompetitionComparison struct {
	PitchClaim     string `json:"pitch_claim"`
	PublicFindings int    `json:"public_findings"`
	Accuracy       string `json:"accuracy"`
}

// FounderComparison contrasts the pitched team with verified profiles.
type FounderComparison struct {
	PitchClaims        int    `json:"pitch_claims"`
	PublicVerification string `json:"public_verification"`
	VerifiedProfiles   int    `json:"verified_profiles"`
}

// Summary is the pitch versus public data comparison.
type Summary struct {
	MarketSize  MarketComparison      `json:"market_size_comparison"`
	Competition CompetitionComparison `json:"competition_comparison"`
	Founders    FounderComparison     `json:"founder_comparison"`
}

// Discrepancy reports whether the market size verdict is anything other than
// accurate or verified.
func Discrepancy(marketAccuracy string) bool {
	return marketAccuracy != "accurate" && marketAccuracy != "verified"
}

// Summarize builds the comparison summary.
func Summarize(profile startup.Profile, publicData map[string]any, r Result) Summary {
	printer := message.NewPrinter(language.English)

	profiles := publicdata.FounderProfiles(publicData)
	verified := 0
	for _, name := range profile.FounderNames() {
		if hasPublicProfile(profiles, name) {
			verified++
		}
	}

	return Summary{
		MarketSize: MarketComparison{
			PitchClaim:       printer.Sprintf("$%d", int64(profile.Market.MarketSize)),
			PublicValidation: r.MarketSizeAccuracy,
			Discrepancy:      Discrepancy(r.MarketSizeAccuracy),
		},
		Competition: CompetitionComparison{
			PitchClaim:     string(profile.Market.CompetitionLevel),
			PublicFindings: len(publicdata.Competitors(publicData)),
			Accuracy:       r.CompetitionAccuracy,
		},
		Founders: FounderComparison{
			PitchClaims:        len(profile.Founders),
			PublicVerification: r.FounderCredibility,
			VerifiedProfiles:   verified,
		},
	}
}
