package taxes

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The ledger file is JSONL: one record per line, security declarations
// first, then transactions in chronological order. Each line carries an
// "action" field identifying the record kind.

const actionDeclare = "declare"

// DecodeLedger decodes a stream of JSONL data into a sorted Ledger.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify record in line %q: %w", string(lineBytes), err)
		}

		switch identifier.Action {
		case actionDeclare:
			var sec Security
			if err := json.Unmarshal(lineBytes, &sec); err != nil {
				return nil, fmt.Errorf("could not decode declaration %q: %w", string(lineBytes), err)
			}
			if err := ledger.Declare(sec); err != nil {
				return nil, err
			}
		case string(Buy), string(Sell):
			var tx Transaction
			if err := json.Unmarshal(lineBytes, &tx); err != nil {
				return nil, fmt.Errorf("could not decode transaction %q: %w", string(lineBytes), err)
			}
			if err := ledger.Append(tx); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown record action %q in line %q", identifier.Action, string(lineBytes))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read ledger: %w", err)
	}
	return ledger, nil
}

// EncodeLedger writes the ledger in canonical JSONL form: declarations
// sorted by symbol, then transactions in chronological order.
func EncodeLedger(w io.Writer, l *Ledger) error {
	bw := bufio.NewWriter(w)
	for _, sec := range l.Securities() {
		var jw jsonObjectWriter
		jw.Append("action", actionDeclare)
		jw.Append("symbol", sec.Symbol)
		jw.Append("currency", sec.Currency)
		jw.Append("domicile", sec.Domicile)
		line, err := jw.MarshalJSON()
		if err != nil {
			return fmt.Errorf("could not encode declaration for %s: %w", sec.Symbol, err)
		}
		if _, err := bw.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	for _, tx := range l.Transactions() {
		line, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("could not encode transaction %s: %w", tx.ID, err)
		}
		if _, err := bw.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}
