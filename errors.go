package taxes

import "fmt"

// The engine never degrades on bad input: every error below aborts the run
// and surfaces to the caller. None of them is retried automatically.

// InsufficientLotsError reports a disposal that exceeds the recorded
// inventory for a symbol. It is a ledger inconsistency, not a value to clamp.
type InsufficientLotsError struct {
	Symbol    string
	Requested Quantity
	Available Quantity
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("insufficient lots for %s: disposing %s but only %s remaining",
		e.Symbol, e.Requested, e.Available)
}

// RateUnavailableError reports a missing exchange rate. The engine never
// substitutes a default rate.
type RateUnavailableError struct {
	Pair string
	Date Date
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no exchange rate for %s on %s", e.Pair, e.Date)
}

// UnsupportedJurisdictionError reports a jurisdiction the engine has no
// rules for.
type UnsupportedJurisdictionError struct {
	Jurisdiction Jurisdiction
}

func (e *UnsupportedJurisdictionError) Error() string {
	return fmt.Sprintf("unsupported jurisdiction %q", string(e.Jurisdiction))
}

// UnsupportedProfileError reports a tax profile the engine has no rules for.
type UnsupportedProfileError struct {
	Profile Profile
}

func (e *UnsupportedProfileError) Error() string {
	return fmt.Sprintf("unsupported tax profile %q", string(e.Profile))
}

// InvalidTransactionError reports a transaction that cannot be part of a
// consistent ledger (non-positive quantity, negative price, undeclared
// symbol, disposal predating any acquisition).
type InvalidTransactionError struct {
	ID     string
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid transaction: %s", e.Reason)
	}
	return fmt.Sprintf("invalid transaction %s: %s", e.ID, e.Reason)
}
