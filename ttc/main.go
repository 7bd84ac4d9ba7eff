package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/kereru/taxes/cmd"
)

// completion describes the command tree for shell completion. It must be
// kept in sync with cmd.Register.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"ledger-file":   predict.Files("*.jsonl"),
		"rates-file":    predict.Files("*.jsonl"),
		"settings-file": predict.Files("*.toml"),
	},
	Sub: map[string]*complete.Command{
		"declare": {Flags: map[string]complete.Predictor{
			"sec":     predict.Nothing,
			"c":       predict.Set{"AUD", "NZD", "USD", "EUR", "GBP"},
			"country": predict.Set{"AU", "NZ", "US", "GB"},
		}},
		"buy":  txCompletion,
		"sell": txCompletion,
		"fmt":  {},
		"report": {Flags: map[string]complete.Predictor{
			"y":    predict.Nothing,
			"json": predict.Nothing,
			"raw":  predict.Nothing,
		}},
		"preview": {Flags: map[string]complete.Predictor{
			"y":              predict.Nothing,
			"jurisdiction":   predict.Set{"AU", "NZ"},
			"profile":        predict.Set{"investor", "trader"},
			"method":         predict.Set{"fifo", "lifo", "hifo", "average"},
			"rate-source":    predict.Set{"dailyClose", "transactionTime", "periodAverage"},
			"fif-method":     predict.Set{"fairDividendRate", "comparativeValue"},
			"currency":       predict.Set{"AUD", "NZD", "USD", "EUR", "GBP"},
			"fees":           predict.Nothing,
			"foreign-income": predict.Nothing,
			"carry-losses":   predict.Nothing,
			"json":           predict.Nothing,
			"raw":            predict.Nothing,
		}},
	},
}

var txCompletion = &complete.Command{Flags: map[string]complete.Predictor{
	"sec": predict.Nothing,
	"d":   predict.Nothing,
	"q":   predict.Nothing,
	"p":   predict.Nothing,
	"fee": predict.Nothing,
}}

func main() {
	completion.Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
