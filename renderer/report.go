// Package renderer renders tax reports as markdown for terminal display or
// export.
package renderer

import (
	"fmt"
	"strings"

	"github.com/kereru/taxes"
)

// ReportMarkdown renders any tax report to a markdown string.
func ReportMarkdown(report taxes.TaxReport) string {
	switch r := report.(type) {
	case *taxes.AUReport:
		return AUMarkdown(r)
	case *taxes.NZReport:
		return NZMarkdown(r)
	default:
		return fmt.Sprintf("unsupported report type %T", report)
	}
}

// AUMarkdown renders an Australian capital gains report.
func AUMarkdown(r *taxes.AUReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Capital Gains Report — Australia, FY%d\n\n", r.Year.Year)
	fmt.Fprintf(&b, "Period: %s to %s, amounts in %s\n\n", r.Year.Start(), r.Year.End(), r.ReportingCurrency)

	fmt.Fprint(&b, "## Summary\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Realized gains (no discount) | %s |\n", r.RealizedGains)
	fmt.Fprintf(&b, "| Discounted gains (50%% applied) | %s |\n", r.DiscountedGains)
	fmt.Fprintf(&b, "| Losses | %s |\n", r.NetLosses)
	if !r.CarriedForwardLosses.IsZero() {
		fmt.Fprintf(&b, "| Losses carried forward | %s |\n", r.CarriedForwardLosses)
	}
	fmt.Fprintf(&b, "| **Taxable gain** | **%s** |\n", r.TaxableGain.SignedString())

	writeEvents(&b, r.Events)
	return b.String()
}

// NZMarkdown renders a New Zealand investment income report.
func NZMarkdown(r *taxes.NZReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Investment Income Report — New Zealand, FY%d\n\n", r.Year.Year)
	fmt.Fprintf(&b, "Period: %s to %s, amounts in %s\n\n", r.Year.Start(), r.Year.End(), r.ReportingCurrency)

	fmt.Fprint(&b, "## Summary\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| FIF attributed income | %s |\n", r.AttributedIncome)
	fmt.Fprintf(&b, "| Ordinary income | %s |\n", r.OrdinaryIncome)
	fmt.Fprintf(&b, "| Foreign tax deductions | %s |\n", r.ForeignTaxDeductions)

	if len(r.FIFAttribution) > 0 {
		fmt.Fprint(&b, "\n## FIF Attribution\n\n")
		fmt.Fprintln(&b, "| Asset | Attributed |")
		fmt.Fprintln(&b, "|:---|---:|")
		for _, a := range r.FIFAttribution {
			fmt.Fprintf(&b, "| %s | %s |\n", a.Asset, a.AttributedAmount)
		}
	}

	writeEvents(&b, r.Events)
	return b.String()
}

// writeEvents renders the per-event breakdown shared by both reports.
func writeEvents(b *strings.Builder, events []taxes.CharacterizedEvent) {
	if len(events) == 0 {
		return
	}
	fmt.Fprint(b, "\n## Disposals\n\n")
	fmt.Fprintln(b, "| Date | Symbol | Qty | Proceeds | Cost Basis | Realized | Held (days) | Treatment |")
	fmt.Fprintln(b, "|:---|:---|---:|---:|---:|---:|---:|:---|")
	for _, e := range events {
		treatment := string(e.Treatment)
		if e.DiscountApplied {
			treatment += " (discounted)"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %d | %s |\n",
			e.Date, e.Symbol, e.Quantity,
			e.Proceeds, e.CostBasis, e.RealizedAmount().SignedString(),
			e.HeldDurationDays, treatment,
		)
	}
}
