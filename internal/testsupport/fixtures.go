package testsupport

import (
	"testing"

	"dealflow/internal/startup"
)

// ScenarioA is a large, fast growing market with an experienced founder and
// low churn. It should land in the BUY tier.
func ScenarioA() map[string]any {
	return map[string]any{
		"market_size":    50_000_000_000,
		"revenue_growth": 0.80,
		"churn_rate":     0.02,
		"founders": []any{
			map[string]any{"experience_years": 12, "previous_exits": 1},
		},
	}
}

// ScenarioB is a small, crowded market with shrinking revenue and heavy
// churn. It should land in HOLD or PASS.
func ScenarioB() map[string]any {
	return map[string]any{
		"market_size":       2_000_000_000,
		"competition_level": "high",
		"revenue":           50_000,
		"revenue_growth":    -0.10,
		"churn_rate":        0.25,
	}
}

// ScenarioC is an empty submission.
func ScenarioC() map[string]any {
	return map[string]any{}
}

// BatchFailureCompany names the ScenarioD item that tests make fail.
const BatchFailureCompany = "Explode Labs"

// ScenarioD is a three item batch whose second item is named
// BatchFailureCompany.
func ScenarioD() []map[string]any {
	first := ScenarioA()
	first["company_name"] = "Northwind Analytics"
	third := ScenarioB()
	third["company_name"] = "Tailspin Freight"
	return []map[string]any{
		first,
		{"company_name": BatchFailureCompany, "market_size": 3_000_000_000},
		third,
	}
}

// DetailedPitch is a fully populated submission.
func DetailedPitch() map[string]any {
	return map[string]any{
		"company_name":      "Acme Robotics",
		"problem_statement": "Warehouse logistics teams lose hours to manual picking",
		"solution":          "Autonomous picking robots with proprietary grasp planning",
		"differentiator":    "Patented grasp planning that handles unseen objects",
		"market_size":       12_000_000_000,
		"competition_level": "medium",
		"revenue":           1_200_000,
		"revenue_growth":    1.5,
		"employees":         24,
		"cac":               1_000,
		"ltv":               4_500,
		"churn_rate":        0.05,
		"funding_stage":     "Series A",
		"funding_amount":    8_000_000,
		"founders": []any{
			map[string]any{
				"name":             "Ada Park",
				"background":       "Robotics lead at a logistics unicorn",
				"experience_years": 11,
				"previous_exits":   1,
				"domain_expertise": "logistics",
			},
			map[string]any{
				"name":             "Ben Ortiz",
				"background":       "Computer vision researcher",
				"experience_years": 7,
				"domain_expertise": "robotics",
			},
		},
	}
}

// MustExtract converts raw into startup.Extracted.
func MustExtract(t testing.TB, raw map[string]any) startup.Extracted {
	t.Helper()

	extracted, err := startup.ParseExtracted(raw)
	if err != nil {
		t.Fatalf("ParseExtracted: %v", err)
	}
	return extracted
}
