package taxes

import "testing"

func TestMoneyArithmetic(t *testing.T) {
	a := M(100, "AUD")
	b := M(40.5, "AUD")

	if got, want := a.Add(b), M(140.5, "AUD"); !got.Equal(want) {
		t.Errorf("Add = %s, want %s", got, want)
	}
	if got, want := a.Sub(b), M(59.5, "AUD"); !got.Equal(want) {
		t.Errorf("Sub = %s, want %s", got, want)
	}
	if got, want := a.Mul(Q(3)), M(300, "AUD"); !got.Equal(want) {
		t.Errorf("Mul = %s, want %s", got, want)
	}
	if got, want := a.Half(), M(50, "AUD"); !got.Equal(want) {
		t.Errorf("Half = %s, want %s", got, want)
	}
	if got, want := b.Neg().Abs(), b; !got.Equal(want) {
		t.Errorf("Neg().Abs() = %s, want %s", got, want)
	}
}

// The empty currency is weak: it adopts the other operand's currency, so
// zero-value accumulators work without seeding a currency.
func TestMoneyWeakCurrency(t *testing.T) {
	var sum Money
	sum = sum.Add(M(10, "NZD"))
	sum = sum.Add(M(5, "NZD"))
	if got, want := sum, M(15, "NZD"); !got.Equal(want) {
		t.Errorf("sum = %s, want %s", got, want)
	}
}

func TestMoneyCurrencyMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("adding AUD to NZD must panic")
		}
	}()
	M(1, "AUD").Add(M(1, "NZD"))
}

func TestMoneySignedString(t *testing.T) {
	if got := M(0, "AUD").SignedString(); got != "-" {
		t.Errorf("zero = %q, want -", got)
	}
	if got := M(1, "AUD").SignedString(); got[0] != '+' {
		t.Errorf("positive = %q, want a + prefix", got)
	}
}

func TestMoneyIn(t *testing.T) {
	converted := M(90, "NZD").In("AUD")
	if converted.Currency() != "AUD" {
		t.Errorf("currency = %s, want AUD", converted.Currency())
	}
	if !converted.Decimal().Equal(newDecimal(90)) {
		t.Errorf("amount changed on re-denomination: %s", converted.Decimal())
	}
}

func TestQuantityMin(t *testing.T) {
	if got := Q(3).Min(Q(5)); !got.Equal(Q(3)) {
		t.Errorf("Min = %s, want 3", got)
	}
	if got := Q(5).Min(Q(3)); !got.Equal(Q(3)) {
		t.Errorf("Min = %s, want 3", got)
	}
}
