package taxes

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Ledger is the append-only record of all transactions for one user.
//
// Transactions are always kept in chronological order. The ledger is the
// only system of record: lots, events and reports are derived caches and
// are recomputed from it whenever settings change.
type Ledger struct {
	transactions []Transaction
	securities   map[string]Security // index securities by symbol
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		transactions: make([]Transaction, 0),
		securities:   make(map[string]Security),
	}
}

// Security returns the security declared with this symbol, or nil if unknown.
func (l *Ledger) Security(symbol string) *Security {
	sec, ok := l.securities[symbol]
	if !ok {
		return nil
	}
	return &sec
}

// Declare records a security declaration. Re-declaring a symbol is an error:
// a domicile or currency change would silently rewrite history.
func (l *Ledger) Declare(sec Security) error {
	if err := sec.Validate(); err != nil {
		return err
	}
	if _, exists := l.securities[sec.Symbol]; exists {
		return fmt.Errorf("security %q already declared in ledger", sec.Symbol)
	}
	l.securities[sec.Symbol] = sec
	return nil
}

// Append validates and appends transactions, maintaining chronological order.
// Transactions without an ID get one assigned.
func (l *Ledger) Append(txs ...Transaction) error {
	for _, tx := range txs {
		if err := tx.Validate(l); err != nil {
			return err
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		l.transactions = append(l.transactions, tx)
	}
	l.stableSort()
	return nil
}

// stableSort restores chronological order; equal timestamps keep insertion order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Time.Before(l.transactions[j].Time)
	})
}

// Transactions returns all transactions in chronological order.
// The returned slice is shared; callers must not mutate it.
func (l *Ledger) Transactions() []Transaction {
	return l.transactions
}

// TransactionsThrough returns every transaction up to and including the end
// of the tax year, so opening lots are known to the matcher.
func (l *Ledger) TransactionsThrough(year TaxYear) []Transaction {
	end := year.End()
	n := sort.Search(len(l.transactions), func(i int) bool {
		return l.transactions[i].Date().After(end)
	})
	return l.transactions[:n]
}

// Securities returns all declared securities, sorted by symbol.
func (l *Ledger) Securities() []Security {
	out := make([]Security, 0, len(l.securities))
	for _, sec := range l.securities {
		out = append(out, sec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }
