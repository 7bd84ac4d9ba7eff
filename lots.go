package taxes

import (
	"sort"

	"github.com/shopspring/decimal"
)

// lot is a parcel of a security: a quantity acquired at a specific date and
// per-unit cost basis. Lots shrink on partial disposal and are removed when
// exhausted; date and unit cost never change after acquisition.
type lot struct {
	acquired  Date
	remaining Quantity
	unitCost  Money
}

func (l lot) cost() Money { return l.unitCost.Mul(l.remaining) }

// book holds the open lots of one symbol. The slice is an arena in
// acquisition order; the consumption order is derived per accounting method
// at disposal time, so a method change never requires rebuilding state
// (state is rebuilt from the ledger anyway).
type book struct {
	lots     []lot
	acquired bool // at least one acquisition ever recorded
}

func (b *book) remaining() Quantity {
	var total Quantity
	for _, l := range b.lots {
		total = total.Add(l.remaining)
	}
	return total
}

// consumptionOrder returns arena indices in the order lots are consumed.
func (b *book) consumptionOrder(method AccountingMethod) []int {
	order := make([]int, len(b.lots))
	for i := range order {
		order[i] = i
	}
	switch method {
	case LIFO:
		sort.SliceStable(order, func(i, j int) bool {
			return b.lots[order[j]].acquired.Before(b.lots[order[i]].acquired)
		})
	case HIFO:
		sort.SliceStable(order, func(i, j int) bool {
			return b.lots[order[i]].unitCost.GreaterThan(b.lots[order[j]].unitCost)
		})
	default: // FIFO and the average-cost single lot: acquisition order.
	}
	return order
}

// compact drops exhausted lots from the arena.
func (b *book) compact() {
	kept := b.lots[:0]
	for _, l := range b.lots {
		if l.remaining.IsPositive() {
			kept = append(kept, l)
		}
	}
	b.lots = kept
}

// Matcher maintains per-symbol open-lot inventory and consumes it on
// disposals according to the accounting method.
//
// Matcher state is a derived cache: it is scoped to one computation run,
// recomputable from the ledger at any time, and holds no authority of its
// own.
type Matcher struct {
	method      AccountingMethod
	includeFees bool
	books       map[string]*book
}

// NewMatcher creates an empty matcher for the run's settings.
func NewMatcher(settings TaxSettings) *Matcher {
	return &Matcher{
		method:      settings.AccountingMethod,
		includeFees: settings.IncludeFees,
		books:       make(map[string]*book),
	}
}

func (m *Matcher) book(symbol string) *book {
	b, ok := m.books[symbol]
	if !ok {
		b = &book{}
		m.books[symbol] = b
	}
	return b
}

// Remaining returns the open quantity for a symbol.
func (m *Matcher) Remaining(symbol string) Quantity {
	b, ok := m.books[symbol]
	if !ok {
		return Q(0)
	}
	return b.remaining()
}

// OpenLots returns the number of open lots for a symbol.
func (m *Matcher) OpenLots(symbol string) int {
	b, ok := m.books[symbol]
	if !ok {
		return 0
	}
	return len(b.lots)
}

// RecordAcquisition appends a new lot for a buy transaction. Under the
// average-cost method the symbol's single synthetic lot is re-averaged
// instead.
func (m *Matcher) RecordAcquisition(tx Transaction) error {
	if tx.Action != Buy {
		return &InvalidTransactionError{ID: tx.ID, Reason: "acquisition must be a buy"}
	}
	b := m.book(tx.Symbol)
	b.acquired = true

	unitCost := tx.UnitPrice
	if m.includeFees && !tx.Fee.IsZero() {
		unitCost = unitCost.Add(tx.Fee.Div(tx.Quantity))
	}

	if m.method == AverageCost && len(b.lots) == 1 {
		b.lots[0] = mergeAverage(b.lots[0], tx.Date(), tx.Quantity, unitCost)
		return nil
	}
	b.lots = append(b.lots, lot{acquired: tx.Date(), remaining: tx.Quantity, unitCost: unitCost})
	return nil
}

// mergeAverage folds an acquisition into the synthetic average-cost lot:
// the unit cost becomes the running weighted average, the acquisition date
// the quantity-weighted mean of dates (held-duration averaging only).
func mergeAverage(current lot, on Date, quantity Quantity, unitCost Money) lot {
	total := current.remaining.Add(quantity)
	newCost := current.cost().Add(unitCost.Mul(quantity)).Div(total)

	span := decimal.NewFromInt(int64(DaysBetween(current.acquired, on)))
	shift := span.Mul(quantity.Decimal()).Div(total.Decimal()).IntPart()

	return lot{
		acquired:  current.acquired.Add(int(shift)),
		remaining: total,
		unitCost:  newCost,
	}
}

// RecordDisposal consumes lots for a sell transaction and returns the
// realized disposal event. A disposal exceeding the recorded inventory is a
// data-integrity error, never a clamp to zero.
func (m *Matcher) RecordDisposal(tx Transaction) (DisposalEvent, error) {
	if tx.Action != Sell {
		return DisposalEvent{}, &InvalidTransactionError{ID: tx.ID, Reason: "disposal must be a sell"}
	}
	b, ok := m.books[tx.Symbol]
	if !ok || !b.acquired {
		return DisposalEvent{}, &InvalidTransactionError{ID: tx.ID,
			Reason: "disposal predates any acquisition for " + tx.Symbol}
	}
	available := b.remaining()
	if available.LessThan(tx.Quantity) {
		return DisposalEvent{}, &InsufficientLotsError{
			Symbol: tx.Symbol, Requested: tx.Quantity, Available: available,
		}
	}

	saleDate := tx.Date()
	toSell := tx.Quantity
	costBasis := M(0, tx.Currency())
	weightedDays := decimal.Zero

	for _, i := range b.consumptionOrder(m.method) {
		if toSell.IsZero() {
			break
		}
		current := &b.lots[i]
		matched := current.remaining.Min(toSell)

		costBasis = costBasis.Add(current.unitCost.Mul(matched))
		held := decimal.NewFromInt(int64(DaysBetween(current.acquired, saleDate)))
		weightedDays = weightedDays.Add(held.Mul(matched.Decimal()))

		current.remaining = current.remaining.Sub(matched)
		toSell = toSell.Sub(matched)
	}
	b.compact()

	if m.includeFees && !tx.Fee.IsZero() {
		costBasis = costBasis.Add(tx.Fee)
	}

	return DisposalEvent{
		TransactionID:    tx.ID,
		Symbol:           tx.Symbol,
		Date:             saleDate,
		Quantity:         tx.Quantity,
		Proceeds:         tx.UnitPrice.Mul(tx.Quantity),
		CostBasis:        costBasis,
		HeldDurationDays: int(weightedDays.Div(tx.Quantity.Decimal()).IntPart()),
	}, nil
}
