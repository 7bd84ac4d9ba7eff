package renderer

import (
	"strings"
	"testing"

	"github.com/kereru/taxes"
)

func event(symbol string, proceeds, cost float64, treatment taxes.Treatment) taxes.CharacterizedEvent {
	return taxes.CharacterizedEvent{
		DisposalEvent: taxes.DisposalEvent{
			Symbol:           symbol,
			Quantity:         taxes.Q(10),
			Proceeds:         taxes.M(proceeds, "AUD"),
			CostBasis:        taxes.M(cost, "AUD"),
			HeldDurationDays: 400,
		},
		Treatment: treatment,
	}
}

func TestAUMarkdown(t *testing.T) {
	discounted := event("VAS", 2000, 1000, taxes.CapitalGainTreatment)
	discounted.DiscountApplied = true
	report := &taxes.AUReport{
		Year:              taxes.NewTaxYear(taxes.AU, 2026),
		ReportingCurrency: "AUD",
		RealizedGains:     taxes.M(0, "AUD"),
		DiscountedGains:   taxes.M(500, "AUD"),
		NetLosses:         taxes.M(0, "AUD"),
		TaxableGain:       taxes.M(500, "AUD"),
		Events:            []taxes.CharacterizedEvent{discounted},
	}

	md := ReportMarkdown(report)
	for _, want := range []string{
		"Capital Gains Report",
		"FY2026",
		"2025-07-01",
		"2026-06-30",
		"| VAS |",
		"capitalGain (discounted)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "carried forward") {
		t.Error("zero carried-forward losses should not be rendered")
	}
}

func TestAUMarkdownCarriedForward(t *testing.T) {
	report := &taxes.AUReport{
		Year:                 taxes.NewTaxYear(taxes.AU, 2026),
		ReportingCurrency:    "AUD",
		CarriedForwardLosses: taxes.M(50, "AUD"),
	}
	if md := AUMarkdown(report); !strings.Contains(md, "carried forward") {
		t.Errorf("markdown missing the carried-forward row:\n%s", md)
	}
}

func TestNZMarkdown(t *testing.T) {
	fif := event("VTI", 900, 1000, taxes.FIFAttributedTreatment)
	fif.Foreign = true
	fif.AttributedAmount = taxes.M(500, "NZD")
	report := &taxes.NZReport{
		Year:              taxes.NewTaxYear(taxes.NZ, 2026),
		ReportingCurrency: "NZD",
		AttributedIncome:  taxes.M(500, "NZD"),
		FIFAttribution: []taxes.AssetAttribution{
			{Asset: "VTI", AttributedAmount: taxes.M(500, "NZD")},
		},
		Events: []taxes.CharacterizedEvent{fif},
	}

	md := ReportMarkdown(report)
	for _, want := range []string{
		"Investment Income Report",
		"FY2026",
		"2025-04-01",
		"2026-03-31",
		"FIF Attribution",
		"| VTI |",
		"fifAttributed",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestNZMarkdownWithoutAttribution(t *testing.T) {
	report := &taxes.NZReport{
		Year:              taxes.NewTaxYear(taxes.NZ, 2026),
		ReportingCurrency: "NZD",
	}
	if md := NZMarkdown(report); strings.Contains(md, "FIF Attribution") {
		t.Errorf("empty attribution list should not be rendered:\n%s", md)
	}
}
