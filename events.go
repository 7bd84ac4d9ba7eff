package taxes

// Treatment is the tax characterization of a realized disposal.
type Treatment string

const (
	// CapitalGainTreatment taxes the realized amount under capital gains rules.
	CapitalGainTreatment Treatment = "capitalGain"
	// OrdinaryIncomeTreatment taxes the realized amount as ordinary income
	// (NZ trader profile).
	OrdinaryIncomeTreatment Treatment = "ordinaryIncome"
	// FIFAttributedTreatment replaces the realized amount with a deemed
	// attribution under the NZ Foreign Investment Fund regime.
	FIFAttributedTreatment Treatment = "fifAttributed"
)

// DisposalEvent is the realized result of one sell transaction, produced
// exactly once by the lot matcher. It is immutable.
type DisposalEvent struct {
	TransactionID    string
	Symbol           string
	Date             Date
	Quantity         Quantity
	Proceeds         Money
	CostBasis        Money
	HeldDurationDays int
}

// RealizedAmount is proceeds minus cost basis. It is derived, never stored,
// so it cannot drift from its constituents.
func (e DisposalEvent) RealizedAmount() Money {
	return e.Proceeds.Sub(e.CostBasis)
}

// CharacterizedEvent is a disposal event annotated with its jurisdiction
// treatment. One per disposal event.
type CharacterizedEvent struct {
	DisposalEvent
	Treatment       Treatment
	DiscountApplied bool
	Foreign         bool
	// AttributedAmount is the deemed taxable amount under FIF rules.
	// Zero unless Treatment is FIFAttributedTreatment.
	AttributedAmount Money
}

// MarshalJSON implements the json.Marshaler interface for CharacterizedEvent.
func (e CharacterizedEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("transactionId", e.TransactionID)
	w.Append("symbol", e.Symbol)
	w.Append("date", e.Date)
	w.Append("quantity", e.Quantity)
	w.Append("proceeds", e.Proceeds)
	w.Append("costBasis", e.CostBasis)
	w.Append("realizedAmount", e.RealizedAmount())
	w.Append("heldDurationDays", e.HeldDurationDays)
	w.Append("treatment", e.Treatment)
	w.Append("discountApplied", e.DiscountApplied)
	w.Optional("foreign", e.Foreign)
	if e.Treatment == FIFAttributedTreatment {
		w.Append("attributedAmount", e.AttributedAmount)
	}
	return w.MarshalJSON()
}
