package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/kereru/taxes"
)

// txFlags are the flags shared by the buy and sell commands.
type txFlags struct {
	symbol   string
	date     string
	quantity float64
	price    float64
	fee      float64
}

func (t *txFlags) set(f *flag.FlagSet) {
	f.StringVar(&t.symbol, "sec", "", "Symbol of the security (must be declared).")
	f.StringVar(&t.date, "d", taxes.Today().String(), "Date of the transaction.")
	f.Float64Var(&t.quantity, "q", 0, "Quantity of units.")
	f.Float64Var(&t.price, "p", 0, "Unit price, in the security's currency.")
	f.Float64Var(&t.fee, "fee", 0, "Brokerage fee, in the security's currency.")
}

// transaction builds the transaction from the flags, resolving the
// currency from the ledger's security declaration.
func (t *txFlags) transaction(ledger *taxes.Ledger, action taxes.Action) (taxes.Transaction, error) {
	sec := ledger.Security(t.symbol)
	if sec == nil {
		return taxes.Transaction{}, fmt.Errorf("security %q not declared in ledger", t.symbol)
	}
	day, err := taxes.ParseDate(t.date)
	if err != nil {
		return taxes.Transaction{}, err
	}
	at := day.Time().Add(12 * time.Hour) // mid-day, the file format has no finer timestamp

	price := taxes.NewMoney(decimal.NewFromFloat(t.price), sec.Currency)
	fee := taxes.NewMoney(decimal.NewFromFloat(t.fee), sec.Currency)
	if action == taxes.Buy {
		return taxes.NewBuy(at, t.symbol, taxes.Q(t.quantity), price, fee), nil
	}
	return taxes.NewSell(at, t.symbol, taxes.Q(t.quantity), price, fee), nil
}

func appendAndSave(tx taxes.Transaction) subcommands.ExitStatus {
	ledger, err := DecodeLedgerFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := ledger.Append(tx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := EncodeLedgerFile(ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s %s %s\n", tx.Action, tx.Quantity, tx.Symbol)
	return subcommands.ExitSuccess
}

type buyCmd struct{ txFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a buy transaction in the ledger" }
func (*buyCmd) Usage() string {
	return `ttc buy -sec <symbol> -q <quantity> -p <unit-price> [-fee <fee>] [-d <date>]

  Appends a buy transaction to the ledger.
`
}
func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedgerFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tx, err := c.transaction(ledger, taxes.Buy)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return appendAndSave(tx)
}

type sellCmd struct{ txFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sell transaction in the ledger" }
func (*sellCmd) Usage() string {
	return `ttc sell -sec <symbol> -q <quantity> -p <unit-price> [-fee <fee>] [-d <date>]

  Appends a sell transaction to the ledger.
`
}
func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedgerFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tx, err := c.transaction(ledger, taxes.Sell)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return appendAndSave(tx)
}

type declareCmd struct {
	symbol   string
	currency string
	domicile string
}

func (*declareCmd) Name() string     { return "declare" }
func (*declareCmd) Synopsis() string { return "declare a security for use in the ledger" }
func (*declareCmd) Usage() string {
	return `ttc declare -sec <symbol> -c <currency> -country <domicile>

  Declares a security: the currency it settles in and the country it is
  domiciled in. Domicile decides whether NZ FIF attribution can apply.
`
}

func (c *declareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "sec", "", "Symbol of the security.")
	f.StringVar(&c.currency, "c", "", "Settlement currency (ISO-4217).")
	f.StringVar(&c.domicile, "country", "", "Domicile country code (ISO-3166).")
}

func (c *declareCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedgerFile()
	if errors.Is(err, fs.ErrNotExist) {
		ledger = taxes.NewLedger()
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	sec := taxes.Security{Symbol: c.symbol, Currency: c.currency, Domicile: c.domicile}
	if err := ledger.Declare(sec); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if err := EncodeLedgerFile(ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Declared %s (%s, %s)\n", c.symbol, c.currency, c.domicile)
	return subcommands.ExitSuccess
}
