package taxes

import "github.com/shopspring/decimal"

// cgtDiscountDays is the minimum holding period, exclusive, for the
// Australian 50% CGT discount. A disposal held exactly 365 days does not
// qualify.
const cgtDiscountDays = 365

// fifThreshold is the NZ$50,000 Foreign Investment Fund cost threshold.
// Holdings at or below it keep ordinary capital treatment.
var fifThreshold = decimal.NewFromInt(50_000)

// fdrRate is the IRD fair dividend rate: 5% of opening cost.
var fdrRate = decimal.NewFromFloat(0.05)

// characterize decides the tax treatment of one realized disposal under the
// run's jurisdiction and profile. It is one-to-one with disposal events and
// has no state: the cumulative foreign cost is tracked by the engine across
// the tax year and supplied per event.
func characterize(event DisposalEvent, settings TaxSettings, sec Security, cumulativeForeignCost Money) (CharacterizedEvent, error) {
	ce := CharacterizedEvent{
		DisposalEvent: event,
		Foreign:       sec.IsForeign(settings.Jurisdiction),
	}

	switch settings.Jurisdiction {
	case AU:
		ce.Treatment = CapitalGainTreatment
		// Losses are never discounted; they are carried or offset whole.
		ce.DiscountApplied = event.HeldDurationDays > cgtDiscountDays &&
			event.RealizedAmount().IsPositive()
		return ce, nil

	case NZ:
		switch settings.Profile {
		case Trader:
			// Every disposal is revenue account income for a trader,
			// regardless of holding period or asset origin.
			ce.Treatment = OrdinaryIncomeTreatment
			return ce, nil
		case Investor:
			if ce.Foreign && cumulativeForeignCost.Decimal().GreaterThan(fifThreshold) {
				ce.Treatment = FIFAttributedTreatment
				ce.AttributedAmount = fifAttribution(event, settings)
				return ce, nil
			}
			// Domestic holdings, and foreign holdings under the threshold:
			// no general CGT in NZ, so the gain is characterized capital
			// and excluded from income totals.
			ce.Treatment = CapitalGainTreatment
			return ce, nil
		default:
			return CharacterizedEvent{}, &UnsupportedProfileError{Profile: settings.Profile}
		}

	default:
		return CharacterizedEvent{}, &UnsupportedJurisdictionError{Jurisdiction: settings.Jurisdiction}
	}
}

// fifAttribution computes the deemed taxable amount of a FIF disposal under
// the method the settings select. The realized gain figure is not used as
// the liability; attribution replaces it.
func fifAttribution(event DisposalEvent, settings TaxSettings) Money {
	switch settings.FIFMethod {
	case ComparativeValue:
		// Comparative value: the value change over the period, floored at
		// zero per CV rules.
		gain := event.RealizedAmount()
		if gain.IsNegative() {
			return M(0, gain.Currency())
		}
		return gain
	default:
		// Fair dividend rate: 5% of the opening cost of the disposed
		// holding. Cost basis stands in for opening market value, which the
		// engine does not track.
		return event.CostBasis.MulDecimal(fdrRate)
	}
}
