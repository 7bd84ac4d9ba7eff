package taxes

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Jurisdiction identifies the tax jurisdiction whose rules apply to a run.
type Jurisdiction string

const (
	// AU applies Australian capital gains treatment, including the 50% CGT discount.
	AU Jurisdiction = "AU"
	// NZ applies New Zealand treatment: no general CGT, trader income rules
	// and the FIF regime for foreign holdings.
	NZ Jurisdiction = "NZ"
)

// Country returns the ISO country code assets of this jurisdiction are
// domiciled in. An asset domiciled elsewhere is foreign.
func (j Jurisdiction) Country() string { return string(j) }

// ParseJurisdiction parses a string into a Jurisdiction.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	switch Jurisdiction(strings.ToUpper(s)) {
	case AU:
		return AU, nil
	case NZ:
		return NZ, nil
	default:
		return "", &UnsupportedJurisdictionError{Jurisdiction: Jurisdiction(s)}
	}
}

// Profile characterizes the taxpayer's relationship to their trading activity.
type Profile string

const (
	Investor Profile = "investor"
	Trader   Profile = "trader"
)

// ParseProfile parses a string into a Profile.
func ParseProfile(s string) (Profile, error) {
	switch Profile(strings.ToLower(s)) {
	case Investor:
		return Investor, nil
	case Trader:
		return Trader, nil
	default:
		return "", &UnsupportedProfileError{Profile: Profile(s)}
	}
}

// AccountingMethod defines the lot consumption order for cost basis calculations.
type AccountingMethod int

const (
	// FIFO (First-In, First-Out) consumes the oldest lots first.
	FIFO AccountingMethod = iota
	// LIFO (Last-In, First-Out) consumes the newest lots first.
	LIFO
	// HIFO (Highest-In, First-Out) consumes the most expensive lots first.
	HIFO
	// AverageCost maintains a single synthetic lot per symbol whose unit cost
	// is the running weighted average of all acquisitions.
	AverageCost
)

func (m AccountingMethod) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case HIFO:
		return "hifo"
	case AverageCost:
		return "average"
	default:
		return "unknown"
	}
}

// ParseAccountingMethod parses a string into an AccountingMethod.
func ParseAccountingMethod(s string) (AccountingMethod, error) {
	switch strings.ToLower(s) {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "hifo":
		return HIFO, nil
	case "average":
		return AverageCost, nil
	default:
		return 0, fmt.Errorf("unknown accounting method: %q", s)
	}
}

func (m AccountingMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *AccountingMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountingMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// RateSource selects which exchange rate is applied when normalizing a
// transaction into the reporting currency.
type RateSource int

const (
	// DailyClose uses the closing rate of the transaction's calendar day.
	DailyClose RateSource = iota
	// TransactionTime uses the rate in force at the transaction's timestamp.
	TransactionTime
	// PeriodAverage uses the mean rate over the active tax year.
	PeriodAverage
)

func (r RateSource) String() string {
	switch r {
	case DailyClose:
		return "dailyClose"
	case TransactionTime:
		return "transactionTime"
	case PeriodAverage:
		return "periodAverage"
	default:
		return "unknown"
	}
}

// ParseRateSource parses a string into a RateSource.
func ParseRateSource(s string) (RateSource, error) {
	switch s {
	case "dailyClose":
		return DailyClose, nil
	case "transactionTime":
		return TransactionTime, nil
	case "periodAverage":
		return PeriodAverage, nil
	default:
		return 0, fmt.Errorf("unknown rate source: %q", s)
	}
}

func (r RateSource) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *RateSource) UnmarshalText(text []byte) error {
	parsed, err := ParseRateSource(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// FIFMethod selects the attribution formula for New Zealand Foreign
// Investment Fund holdings.
type FIFMethod int

const (
	// FairDividendRate attributes 5% of the holding's opening cost.
	FairDividendRate FIFMethod = iota
	// ComparativeValue attributes the year's value change, floored at zero.
	ComparativeValue
)

func (m FIFMethod) String() string {
	switch m {
	case FairDividendRate:
		return "fairDividendRate"
	case ComparativeValue:
		return "comparativeValue"
	default:
		return "unknown"
	}
}

// ParseFIFMethod parses a string into a FIFMethod.
func ParseFIFMethod(s string) (FIFMethod, error) {
	switch s {
	case "fairDividendRate":
		return FairDividendRate, nil
	case "comparativeValue":
		return ComparativeValue, nil
	default:
		return 0, fmt.Errorf("unknown FIF method: %q", s)
	}
}

func (m FIFMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *FIFMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseFIFMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// TaxSettings is the immutable-per-run configuration of a computation.
//
// Changing any field invalidates every derived value (lots, events, reports);
// the engine keys its caches on the full tuple and recomputes from the
// ledger on any change.
type TaxSettings struct {
	Jurisdiction         Jurisdiction     `toml:"jurisdiction"`
	Profile              Profile          `toml:"profile"`
	AccountingMethod     AccountingMethod `toml:"accounting_method"`
	IncludeFees          bool             `toml:"include_fees"`
	IncludeForeignIncome bool             `toml:"include_foreign_income"`
	CarryForwardLosses   bool             `toml:"carry_forward_losses"`
	ReportingCurrency    string           `toml:"reporting_currency"`
	RateSource           RateSource       `toml:"rate_source"`
	FIFMethod            FIFMethod        `toml:"fif_method"`
}

// DefaultSettings returns a usable configuration: AU investor, FIFO,
// fees included, reporting in AUD.
func DefaultSettings() TaxSettings {
	return TaxSettings{
		Jurisdiction:         AU,
		Profile:              Investor,
		AccountingMethod:     FIFO,
		IncludeFees:          true,
		IncludeForeignIncome: true,
		ReportingCurrency:    "AUD",
		RateSource:           DailyClose,
		FIFMethod:            FairDividendRate,
	}
}

// Validate checks the settings before any computation starts.
// Configuration errors are fatal, never worked around.
func (s TaxSettings) Validate() error {
	if _, err := ParseJurisdiction(string(s.Jurisdiction)); err != nil {
		return err
	}
	if _, err := ParseProfile(string(s.Profile)); err != nil {
		return err
	}
	if s.AccountingMethod.String() == "unknown" {
		return fmt.Errorf("unknown accounting method: %d", s.AccountingMethod)
	}
	if s.RateSource.String() == "unknown" {
		return fmt.Errorf("unknown rate source: %d", s.RateSource)
	}
	if s.FIFMethod.String() == "unknown" {
		return fmt.Errorf("unknown FIF method: %d", s.FIFMethod)
	}
	if err := ValidateCurrency(s.ReportingCurrency); err != nil {
		return fmt.Errorf("invalid reporting currency: %w", err)
	}
	return nil
}

// Key returns a cache key covering the full settings tuple. Two settings
// with the same key produce byte-identical reports from the same ledger.
func (s TaxSettings) Key() string {
	return fmt.Sprintf("%s/%s/%s/fees=%t/foreign=%t/carry=%t/%s/%s/%s",
		s.Jurisdiction, s.Profile, s.AccountingMethod,
		s.IncludeFees, s.IncludeForeignIncome, s.CarryForwardLosses,
		s.ReportingCurrency, s.RateSource, s.FIFMethod)
}

// LoadSettings reads a TOML settings file.
func LoadSettings(path string) (TaxSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TaxSettings{}, fmt.Errorf("could not read settings file %q: %w", path, err)
	}
	s := DefaultSettings()
	if err := toml.Unmarshal(data, &s); err != nil {
		return TaxSettings{}, fmt.Errorf("could not parse settings file %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return TaxSettings{}, err
	}
	return s, nil
}

// SaveSettings writes the settings as a TOML file.
func SaveSettings(path string, s TaxSettings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write settings file %q: %w", path, err)
	}
	return nil
}
