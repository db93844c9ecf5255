package memo

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dealflow/internal/startup"
)

// DealNote renders memo as a markdown deal note.
func DealNote(memo startup.Memo) string {
	p := memo.Profile
	printer := message.NewPrinter(language.English)
	title := cases.Title(language.English)

	var b strings.Builder
	fmt.Fprintf(&b, "# Deal Note: %s\n\n", p.CompanyName)
	fmt.Fprintf(&b, "**Investment Score:** %.1f/10\n\n", memo.InvestmentScore)
	fmt.Fprintf(&b, "**Recommendation:** %s\n\n", memo.Recommendation)
	fmt.Fprintf(&b, "**Risk Level:** %s\n\n", title.String(string(memo.Risk.Level)))
	fmt.Fprintf(&b, "**Funding:** %s", p.FundingStage)
	if p.FundingAmount != nil {
		printer.Fprintf(&b, " raising $%d", int64(*p.FundingAmount))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "## Problem\n\n%s\n\n## Solution\n\n%s\n\n", p.ProblemStatement, p.Solution)
	fmt.Fprintf(&b, "## Differentiator\n\n%s\n\n", p.UniqueDifferentiator)

	b.WriteString("## Founders\n\n")
	for _, f := range p.Founders {
		fmt.Fprintf(&b, "- **%s**: %s. %d years of experience, %d previous %s, %s expertise. Founder-market fit %.1f/10\n",
			f.Name, f.Background, f.ExperienceYears, f.PreviousExits, plural(f.PreviousExits, "exit"), f.DomainExpertise, f.MarketFitScore)
	}

	b.WriteString("\n## Market\n\n")
	printer.Fprintf(&b, "- Market size: $%d\n", int64(p.Market.MarketSize))
	fmt.Fprintf(&b, "- Growth rate: %.1f%%\n", p.Market.GrowthRate*100)
	fmt.Fprintf(&b, "- Competition: %s\n", title.String(string(p.Market.CompetitionLevel)))
	fmt.Fprintf(&b, "- Maturity: %s\n", p.Market.Maturity)
	if len(p.Market.KeyPlayers) > 0 {
		fmt.Fprintf(&b, "- Key players: %s\n", strings.Join(p.Market.KeyPlayers, ", "))
	}

	b.WriteString("\n## Business Metrics\n\n")
	metrics := metricLines(printer, p.Metrics)
	if len(metrics) == 0 {
		b.WriteString("No business metrics reported.\n")
	}
	for _, line := range metrics {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	if len(memo.Segments) > 0 {
		b.WriteString("\n## Score Breakdown\n\n| Segment | Base | Weighted |\n|---|---|---|\n")
		for _, s := range memo.Segments {
			fmt.Fprintf(&b, "| %s | %.1f | %.1f |\n", title.String(s.Segment), s.Base, s.Weighted)
		}
	}

	writeList(&b, "Key Strengths", memo.Strengths)
	writeList(&b, "Key Concerns", memo.Concerns)

	b.WriteString("\n## Risk Factors\n\n")
	if len(memo.Risk.Factors) == 0 {
		b.WriteString("No material risk factors identified.\n")
	}
	for i, factor := range memo.Risk.Factors {
		if i < len(memo.Risk.Mitigations) {
			fmt.Fprintf(&b, "- %s. Mitigation: %s\n", factor, memo.Risk.Mitigations[i])
			continue
		}
		fmt.Fprintf(&b, "- %s\n", factor)
	}

	if len(memo.VerificationFlags) > 0 {
		writeList(&b, "Verification Flags", memo.VerificationFlags)
	}

	if !memo.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "\n_Generated %s_\n", memo.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	return b.String()
}

func metricLines(printer *message.Printer, m startup.BusinessMetrics) []string {
	var lines []string
	if m.Revenue != nil {
		lines = append(lines, printer.Sprintf("Revenue: $%d", int64(*m.Revenue)))
	}
	if m.RevenueGrowth != nil {
		lines = append(lines, fmt.Sprintf("Revenue growth: %.1f%%", *m.RevenueGrowth*100))
	}
	if m.Employees != nil {
		lines = append(lines, printer.Sprintf("Employees: %d", *m.Employees))
	}
	if m.CAC != nil {
		lines = append(lines, printer.Sprintf("CAC: $%d", int64(*m.CAC)))
	}
	if m.LTV != nil {
		lines = append(lines, printer.Sprintf("LTV: $%d", int64(*m.LTV)))
	}
	if m.ChurnRate != nil {
		lines = append(lines, fmt.Sprintf("Churn rate: %.1f%%", *m.ChurnRate*100))
	}
	if m.BurnRate != nil {
		lines = append(lines, printer.Sprintf("Burn rate: $%d", int64(*m.BurnRate)))
	}
	return lines
}

func writeList(b *strings.Builder, heading string, items []string) {
	fmt.Fprintf(b, "\n## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
