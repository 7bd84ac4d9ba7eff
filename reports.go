package taxes

import "sort"

// TaxReport is the jurisdiction-tagged result of a computation run. The
// concrete type is selected at construction (AUReport or NZReport) so a
// caller can never read an NZ-only figure out of an AU report.
type TaxReport interface {
	Jurisdiction() Jurisdiction
	TaxYear() TaxYear
}

// AUReport is the Australian capital gains summary for one tax year.
type AUReport struct {
	Year              TaxYear
	ReportingCurrency string

	// RealizedGains is the undiscounted gains bucket.
	RealizedGains Money
	// DiscountedGains is the discounted bucket: gains on assets held over
	// 365 days, already halved by the 50% CGT discount.
	DiscountedGains Money
	// NetLosses is the sum of realized losses, as a positive figure.
	NetLosses Money
	// CarriedForwardLosses is the unused-loss figure exposed for
	// ledger-level carry-forward bookkeeping. Zero unless the settings
	// enable carrying losses forward.
	CarriedForwardLosses Money
	// TaxableGain is the year's net taxable figure: both gain buckets,
	// less losses when they are not carried forward.
	TaxableGain Money

	Events []CharacterizedEvent
}

func (r *AUReport) Jurisdiction() Jurisdiction { return AU }
func (r *AUReport) TaxYear() TaxYear           { return r.Year }

// MarshalJSON implements the json.Marshaler interface for AUReport.
func (r *AUReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("jurisdiction", AU)
	w.Append("taxYear", r.Year.Year)
	w.Append("reportingCurrency", r.ReportingCurrency)
	w.Append("realizedGains", r.RealizedGains)
	w.Append("discountedGains", r.DiscountedGains)
	w.Append("netLosses", r.NetLosses)
	w.Append("carriedForwardLosses", r.CarriedForwardLosses)
	w.Append("taxableGain", r.TaxableGain)
	w.Append("events", r.Events)
	return w.MarshalJSON()
}

// AssetAttribution is the deemed FIF income attributed to one asset.
type AssetAttribution struct {
	Asset            string
	AttributedAmount Money
}

// MarshalJSON implements the json.Marshaler interface for AssetAttribution.
func (a AssetAttribution) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("asset", a.Asset)
	w.Append("attributedAmount", a.AttributedAmount)
	return w.MarshalJSON()
}

// NZReport is the New Zealand investment income summary for one tax year.
type NZReport struct {
	Year              TaxYear
	ReportingCurrency string

	// AttributedIncome is the total deemed income under the FIF regime.
	AttributedIncome Money
	// OrdinaryIncome is the trader profile's revenue account income.
	OrdinaryIncome Money
	// FIFAttribution lists the deemed income per attributed asset.
	FIFAttribution []AssetAttribution
	// ForeignTaxDeductions is the sum of realized losses on foreign-asset
	// disposals, available as a deduction against foreign income.
	ForeignTaxDeductions Money

	Events []CharacterizedEvent
}

func (r *NZReport) Jurisdiction() Jurisdiction { return NZ }
func (r *NZReport) TaxYear() TaxYear           { return r.Year }

// MarshalJSON implements the json.Marshaler interface for NZReport.
func (r *NZReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("jurisdiction", NZ)
	w.Append("taxYear", r.Year.Year)
	w.Append("reportingCurrency", r.ReportingCurrency)
	w.Append("attributedIncome", r.AttributedIncome)
	w.Append("ordinaryIncome", r.OrdinaryIncome)
	w.Append("fifAttribution", r.FIFAttribution)
	w.Append("foreignTaxDeductions", r.ForeignTaxDeductions)
	w.Append("events", r.Events)
	return w.MarshalJSON()
}

// aggregate folds characterized events into the jurisdiction-shaped report.
//
// It is a pure reduction: totals are computed by summing each event exactly
// once, never by maintaining running counters elsewhere, so running it twice
// over the same events yields identical reports.
func aggregate(events []CharacterizedEvent, settings TaxSettings, year TaxYear) (TaxReport, error) {
	switch settings.Jurisdiction {
	case AU:
		return aggregateAU(events, settings, year), nil
	case NZ:
		return aggregateNZ(events, settings, year), nil
	default:
		return nil, &UnsupportedJurisdictionError{Jurisdiction: settings.Jurisdiction}
	}
}

func aggregateAU(events []CharacterizedEvent, settings TaxSettings, year TaxYear) *AUReport {
	cur := settings.ReportingCurrency
	report := &AUReport{
		Year:              year,
		ReportingCurrency: cur,
		RealizedGains:     M(0, cur),
		DiscountedGains:   M(0, cur),
		NetLosses:         M(0, cur),
		TaxableGain:       M(0, cur),
		Events:            events,
	}

	for _, e := range events {
		realized := e.RealizedAmount()
		switch {
		case realized.IsNegative():
			report.NetLosses = report.NetLosses.Add(realized.Neg())
		case e.DiscountApplied:
			report.DiscountedGains = report.DiscountedGains.Add(realized.Half())
		default:
			report.RealizedGains = report.RealizedGains.Add(realized)
		}
	}

	report.TaxableGain = report.RealizedGains.Add(report.DiscountedGains)
	if settings.CarryForwardLosses {
		report.CarriedForwardLosses = report.NetLosses
	} else {
		report.TaxableGain = report.TaxableGain.Sub(report.NetLosses)
	}
	report.CarriedForwardLosses = report.CarriedForwardLosses.In(cur)
	return report
}

func aggregateNZ(events []CharacterizedEvent, settings TaxSettings, year TaxYear) *NZReport {
	cur := settings.ReportingCurrency
	report := &NZReport{
		Year:                 year,
		ReportingCurrency:    cur,
		AttributedIncome:     M(0, cur),
		OrdinaryIncome:       M(0, cur),
		ForeignTaxDeductions: M(0, cur),
		FIFAttribution:       []AssetAttribution{},
	}

	perAsset := make(map[string]Money)
	for _, e := range events {
		if e.Foreign && !settings.IncludeForeignIncome {
			// Foreign-sourced amounts are suppressed entirely: no totals,
			// no attribution list entry, no event line.
			continue
		}
		report.Events = append(report.Events, e)

		switch e.Treatment {
		case OrdinaryIncomeTreatment:
			report.OrdinaryIncome = report.OrdinaryIncome.Add(e.RealizedAmount())
		case FIFAttributedTreatment:
			report.AttributedIncome = report.AttributedIncome.Add(e.AttributedAmount)
			perAsset[e.Symbol] = perAsset[e.Symbol].Add(e.AttributedAmount)
		}
		if e.Foreign && e.RealizedAmount().IsNegative() {
			report.ForeignTaxDeductions = report.ForeignTaxDeductions.Add(e.RealizedAmount().Neg())
		}
	}

	symbols := make([]string, 0, len(perAsset))
	for symbol := range perAsset {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		report.FIFAttribution = append(report.FIFAttribution, AssetAttribution{
			Asset:            symbol,
			AttributedAmount: perAsset[symbol],
		})
	}
	return report
}
