// Package cmd implements the CLI application to compute tax reports from a
// transaction ledger.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/kereru/taxes"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&declareCmd{}, "ledger")
	c.Register(&buyCmd{}, "ledger")
	c.Register(&sellCmd{}, "ledger")
	c.Register(&fmtCmd{}, "ledger")

	c.Register(&reportCmd{}, "reports")
	c.Register(&previewCmd{}, "reports")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "ledger.jsonl", "Path to the ledger file (JSONL format)")
var ratesFile = flag.String("rates-file", "rates.jsonl", "Path to the exchange rates file (JSONL format)")
var settingsFile = flag.String("settings-file", "settings.toml", "Path to the tax settings file")

// DecodeLedgerFile loads the ledger from the app ledger file.
func DecodeLedgerFile() (*taxes.Ledger, error) {
	f, err := os.Open(*ledgerFile)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	return taxes.DecodeLedger(f)
}

// EncodeLedgerFile writes the ledger back to the app ledger file in
// canonical form.
func EncodeLedgerFile(l *taxes.Ledger) error {
	f, err := os.Create(*ledgerFile)
	if err != nil {
		return fmt.Errorf("could not write ledger %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	return taxes.EncodeLedger(f, l)
}

// DecodeRatesFile loads the exchange rate table. A missing file is an empty
// table: single-currency ledgers never need one.
func DecodeRatesFile() (*taxes.MemoryRates, error) {
	f, err := os.Open(*ratesFile)
	if os.IsNotExist(err) {
		return taxes.NewMemoryRates(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open rates %q: %w", *ratesFile, err)
	}
	defer f.Close()
	return taxes.DecodeRates(f)
}

// LoadSettingsFile loads the tax settings, falling back to defaults when
// the file does not exist.
func LoadSettingsFile() (taxes.TaxSettings, error) {
	if _, err := os.Stat(*settingsFile); os.IsNotExist(err) {
		return taxes.DefaultSettings(), nil
	}
	return taxes.LoadSettings(*settingsFile)
}

// printMarkdown renders markdown to the terminal through glamour, falling
// back to the raw text when rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
