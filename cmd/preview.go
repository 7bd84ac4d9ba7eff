package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/kereru/taxes"
)

// previewCmd runs a what-if computation: the committed settings plus flag
// overrides, never persisted.
type previewCmd struct {
	year         int
	jurisdiction string
	profile      string
	method       string
	rateSource   string
	fifMethod    string
	currency     string
	fees         bool
	foreign      bool
	carryLosses  bool
	asJSON       bool
	rawMD        bool
}

func (*previewCmd) Name() string     { return "preview" }
func (*previewCmd) Synopsis() string { return "what-if report under alternative settings" }
func (*previewCmd) Usage() string {
	return `ttc preview -y <year> [-method <method>] [-jurisdiction <AU|NZ>] [-profile <investor|trader>] ...

  Computes the report under the committed settings with the given overrides.
  Nothing is persisted: the settings file and any cached reports stay
  untouched.
`
}

func (c *previewCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", taxes.Today().Year(), "Tax year (named after its closing calendar year).")
	f.StringVar(&c.jurisdiction, "jurisdiction", "", "Override jurisdiction (AU, NZ).")
	f.StringVar(&c.profile, "profile", "", "Override tax profile (investor, trader).")
	f.StringVar(&c.method, "method", "", "Override accounting method (fifo, lifo, hifo, average).")
	f.StringVar(&c.rateSource, "rate-source", "", "Override rate source (dailyClose, transactionTime, periodAverage).")
	f.StringVar(&c.fifMethod, "fif-method", "", "Override FIF method (fairDividendRate, comparativeValue).")
	f.StringVar(&c.currency, "currency", "", "Override reporting currency.")
	f.BoolVar(&c.fees, "fees", true, "Include fees in cost basis.")
	f.BoolVar(&c.foreign, "foreign-income", true, "Include foreign-sourced income.")
	f.BoolVar(&c.carryLosses, "carry-losses", false, "Carry losses forward instead of offsetting.")
	f.BoolVar(&c.asJSON, "json", false, "Emit the report as JSON instead of markdown.")
	f.BoolVar(&c.rawMD, "raw", false, "Emit raw markdown without terminal styling.")
}

// override applies the flag overrides to the committed settings.
func (c *previewCmd) override(s taxes.TaxSettings, f *flag.FlagSet) (taxes.TaxSettings, error) {
	var err error
	if c.jurisdiction != "" {
		if s.Jurisdiction, err = taxes.ParseJurisdiction(c.jurisdiction); err != nil {
			return s, err
		}
	}
	if c.profile != "" {
		if s.Profile, err = taxes.ParseProfile(c.profile); err != nil {
			return s, err
		}
	}
	if c.method != "" {
		if s.AccountingMethod, err = taxes.ParseAccountingMethod(c.method); err != nil {
			return s, err
		}
	}
	if c.rateSource != "" {
		if s.RateSource, err = taxes.ParseRateSource(c.rateSource); err != nil {
			return s, err
		}
	}
	if c.fifMethod != "" {
		if s.FIFMethod, err = taxes.ParseFIFMethod(c.fifMethod); err != nil {
			return s, err
		}
	}
	if c.currency != "" {
		s.ReportingCurrency = c.currency
	}
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "fees":
			s.IncludeFees = c.fees
		case "foreign-income":
			s.IncludeForeignIncome = c.foreign
		case "carry-losses":
			s.CarryForwardLosses = c.carryLosses
		}
	})
	return s, nil
}

func (c *previewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	settings, err := LoadSettingsFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	settings, err = c.override(settings, f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return runReport(c.year, settings, c.asJSON, c.rawMD)
}
