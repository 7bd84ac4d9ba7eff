package taxes

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Action is a typed string identifying what a transaction did.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

// ParseAction parses a string into an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown action: %q", s)
	}
}

// Transaction is one immutable entry of the ledger: a buy or sell of a
// quantity of a symbol at a unit price, plus a brokerage fee. The engine
// never mutates a transaction once recorded; currency normalization works
// on copies.
type Transaction struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Time      time.Time `json:"time"`
	Action    Action    `json:"action"`
	Quantity  Quantity  `json:"quantity"`
	UnitPrice Money     `json:"-"`
	Fee       Money     `json:"-"`
}

// NewBuy creates a buy transaction. The ID is assigned on append when empty.
func NewBuy(at time.Time, symbol string, quantity Quantity, unitPrice, fee Money) Transaction {
	return Transaction{Symbol: symbol, Time: at, Action: Buy, Quantity: quantity, UnitPrice: unitPrice, Fee: fee}
}

// NewSell creates a sell transaction. The ID is assigned on append when empty.
func NewSell(at time.Time, symbol string, quantity Quantity, unitPrice, fee Money) Transaction {
	return Transaction{Symbol: symbol, Time: at, Action: Sell, Quantity: quantity, UnitPrice: unitPrice, Fee: fee}
}

// Date returns the calendar day of the transaction, in UTC.
func (t Transaction) Date() Date { return DateOf(t.Time) }

// Currency returns the currency the transaction was settled in.
func (t Transaction) Currency() string { return t.UnitPrice.Currency() }

// Amount returns the gross amount of the transaction (quantity x unit price),
// excluding the fee.
func (t Transaction) Amount() Money { return t.UnitPrice.Mul(t.Quantity) }

func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID && t.Symbol == o.Symbol && t.Time.Equal(o.Time) && t.Action == o.Action &&
		t.Quantity.Equal(o.Quantity) && t.UnitPrice.Equal(o.UnitPrice) && t.Fee.Equal(o.Fee)
}

// Validate checks the transaction against the ledger it is being recorded in.
func (t Transaction) Validate(l *Ledger) error {
	if t.Action != Buy && t.Action != Sell {
		return &InvalidTransactionError{ID: t.ID, Reason: fmt.Sprintf("unknown action %q", string(t.Action))}
	}
	if t.Symbol == "" {
		return &InvalidTransactionError{ID: t.ID, Reason: "symbol is missing"}
	}
	if t.Time.IsZero() {
		return &InvalidTransactionError{ID: t.ID, Reason: "timestamp is missing"}
	}
	if !t.Quantity.IsPositive() {
		return &InvalidTransactionError{ID: t.ID, Reason: fmt.Sprintf("quantity must be positive, got %s", t.Quantity)}
	}
	if t.UnitPrice.IsNegative() {
		return &InvalidTransactionError{ID: t.ID, Reason: fmt.Sprintf("unit price must not be negative, got %s", t.UnitPrice)}
	}
	if t.Fee.IsNegative() {
		return &InvalidTransactionError{ID: t.ID, Reason: fmt.Sprintf("fee must not be negative, got %s", t.Fee)}
	}
	sec := l.Security(t.Symbol)
	if sec == nil {
		return &InvalidTransactionError{ID: t.ID, Reason: fmt.Sprintf("security %q not declared in ledger", t.Symbol)}
	}
	if t.Currency() != "" && t.Currency() != sec.Currency {
		return &InvalidTransactionError{ID: t.ID,
			Reason: fmt.Sprintf("currency %s does not match security currency %s", t.Currency(), sec.Currency)}
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
// Price and fee are flattened to plain decimals next to a single currency
// field, which keeps the ledger lines compact.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("symbol", t.Symbol)
	w.Append("time", t.Time.UTC().Format(time.RFC3339))
	w.Append("action", t.Action)
	w.Append("quantity", t.Quantity)
	w.Append("unitPrice", t.UnitPrice.Decimal())
	w.Optional("fee", t.Fee.Decimal())
	w.Append("currency", t.Currency())
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID        string          `json:"id"`
		Symbol    string          `json:"symbol"`
		Time      time.Time       `json:"time"`
		Action    Action          `json:"action"`
		Quantity  Quantity        `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unitPrice"`
		Fee       decimal.Decimal `json:"fee"`
		Currency  string          `json:"currency"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.ID = temp.ID
	t.Symbol = temp.Symbol
	t.Time = temp.Time
	t.Action = temp.Action
	t.Quantity = temp.Quantity
	t.UnitPrice = NewMoney(temp.UnitPrice, temp.Currency)
	t.Fee = NewMoney(temp.Fee, temp.Currency)
	return nil
}

// Security declares a tradable symbol: the currency it settles in and the
// country it is domiciled in. Domicile decides whether NZ FIF attribution
// can apply.
type Security struct {
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
	Domicile string `json:"domicile"` // ISO country code, e.g. "AU", "NZ", "US"
}

// IsForeign reports whether the security is domiciled outside the
// jurisdiction's country.
func (s Security) IsForeign(j Jurisdiction) bool {
	return s.Domicile != j.Country()
}

// Validate checks the security declaration.
func (s Security) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("security symbol is missing")
	}
	if err := ValidateCurrency(s.Currency); err != nil {
		return fmt.Errorf("security %s: %w", s.Symbol, err)
	}
	if len(s.Domicile) != 2 {
		return fmt.Errorf("security %s: domicile must be an ISO country code, got %q", s.Symbol, s.Domicile)
	}
	return nil
}
