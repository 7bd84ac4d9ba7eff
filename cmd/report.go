package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/kereru/taxes"
	"github.com/kereru/taxes/renderer"
)

type reportCmd struct {
	year    int
	asJSON  bool
	rawMD   bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "compute the tax report for a tax year" }
func (*reportCmd) Usage() string {
	return `ttc report -y <year> [-json] [-raw]

  Computes the capital gains / investment income report for the tax year
  under the committed settings, and renders it to the terminal.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", taxes.Today().Year(), "Tax year (named after its closing calendar year).")
	f.BoolVar(&c.asJSON, "json", false, "Emit the report as JSON instead of markdown.")
	f.BoolVar(&c.rawMD, "raw", false, "Emit raw markdown without terminal styling.")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	settings, err := LoadSettingsFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return runReport(c.year, settings, c.asJSON, c.rawMD)
}

// runReport is shared by report and preview: load inputs, compute, render.
func runReport(year int, settings taxes.TaxSettings, asJSON, rawMD bool) subcommands.ExitStatus {
	ledger, err := DecodeLedgerFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	rates, err := DecodeRatesFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	taxYear := taxes.NewTaxYear(settings.Jurisdiction, year)
	report, err := taxes.Compute(ledger, settings, rates, taxYear)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing report: %v\n", err)
		return subcommands.ExitFailure
	}

	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(data))
		return subcommands.ExitSuccess
	}

	md := renderer.ReportMarkdown(report)
	if rawMD {
		fmt.Print(md)
	} else {
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}
