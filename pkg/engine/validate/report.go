package validate

import (
	"fmt"
	"strings"
)

// RenderText formats a report for terminal output.
func RenderText(r Report) string {
	var b strings.Builder
	line := strings.Repeat("=", 60)

	b.WriteString(line + "\n")
	b.WriteString("PORTFOLIO VALIDATION REPORT\n")
	b.WriteString(line + "\n")

	status := "VALID"
	if !r.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(&b, "Status: %s\n\n", status)

	if len(r.Errors) > 0 {
		b.WriteString("Errors:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
		b.WriteString("\n")
	}
	if len(r.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
		b.WriteString("\n")
	}

	m := r.Metrics
	b.WriteString("Metrics:\n")
	fmt.Fprintf(&b, "  - Distribution: L=%.1f%%, E=%.1f%%, V=%.1f%%\n",
		m.GlobalDistribution.Local*100, m.GlobalDistribution.Draw*100, m.GlobalDistribution.Away*100)
	fmt.Fprintf(&b, "  - Draws mean: %.2f (range %d-%d)\n", m.DrawsMean, m.DrawsLow, m.DrawsHigh)
	fmt.Fprintf(&b, "  - Pr[>=11] mean: %.1f%%\n", m.HitProbMean*100)
	fmt.Fprintf(&b, "  - Pr[>=11] portfolio: %.1f%%\n", m.PortfolioHitProb*100)
	fmt.Fprintf(&b, "  - Total cost: $%s MXN\n", m.TotalCost.StringFixed(0))
	fmt.Fprintf(&b, "  - Efficiency: %.3f\n", m.Efficiency)

	return b.String()
}
