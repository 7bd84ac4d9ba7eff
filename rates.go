package taxes

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RateProvider supplies exchange rates. It is an external dependency
// boundary: the engine does not care how rates are sourced or cached, only
// that a missing rate is reported as *RateUnavailableError and never
// defaulted.
//
// Pairs are six-letter concatenations like "NZDAUD": the rate is the amount
// of quote currency (AUD) one unit of base currency (NZD) buys.
type RateProvider interface {
	// RateAt returns the last rate recorded on the instant's calendar day,
	// at or before the instant.
	RateAt(pair string, at time.Time) (decimal.Decimal, error)
	// ClosingRate returns the last rate recorded on the calendar day.
	ClosingRate(pair string, on Date) (decimal.Decimal, error)
	// AverageRate returns the mean of all rates recorded between from and
	// to, inclusive.
	AverageRate(pair string, from, to Date) (decimal.Decimal, error)
}

// ratePoint is one observed exchange rate.
type ratePoint struct {
	at   time.Time
	rate decimal.Decimal
}

// MemoryRates is an in-memory RateProvider backed by a table of observed
// rates. When a pair is unknown it falls back to the inverse pair's
// reciprocal, so a table holding NZDAUD also serves AUDNZD.
type MemoryRates struct {
	points map[string][]ratePoint // per pair, sorted by time
}

// NewMemoryRates creates an empty rate table.
func NewMemoryRates() *MemoryRates {
	return &MemoryRates{points: make(map[string][]ratePoint)}
}

// Add records an observed rate for a pair.
func (m *MemoryRates) Add(pair string, at time.Time, rate decimal.Decimal) {
	pts := append(m.points[pair], ratePoint{at: at.UTC(), rate: rate})
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].at.Before(pts[j].at) })
	m.points[pair] = pts
}

// AddDaily records a closing rate for a calendar day.
func (m *MemoryRates) AddDaily(pair string, on Date, rate float64) {
	// end of day, so the same point serves both close and at-time lookups.
	m.Add(pair, on.Time().Add(day-time.Second), decimal.NewFromFloat(rate))
}

// inverse returns the reversed pair: "NZDAUD" -> "AUDNZD".
func inverse(pair string) string {
	if len(pair) != 6 {
		return ""
	}
	return pair[3:] + pair[:3]
}

// lookup finds the points for a pair, directly or via the inverse pair.
// The returned flip flag tells the caller to take reciprocals.
func (m *MemoryRates) lookup(pair string) (pts []ratePoint, flip bool) {
	if pts, ok := m.points[pair]; ok {
		return pts, false
	}
	if pts, ok := m.points[inverse(pair)]; ok {
		return pts, true
	}
	return nil, false
}

func flipRate(rate decimal.Decimal, flip bool) decimal.Decimal {
	if !flip {
		return rate
	}
	return decimal.NewFromInt(1).Div(rate)
}

// RateAt implements RateProvider.
func (m *MemoryRates) RateAt(pair string, at time.Time) (decimal.Decimal, error) {
	pts, flip := m.lookup(pair)
	on := DateOf(at)
	var found *ratePoint
	for i := range pts {
		if pts[i].at.After(at) {
			break
		}
		if DateOf(pts[i].at) == on {
			found = &pts[i]
		}
	}
	if found == nil {
		return decimal.Decimal{}, &RateUnavailableError{Pair: pair, Date: on}
	}
	return flipRate(found.rate, flip), nil
}

// ClosingRate implements RateProvider.
func (m *MemoryRates) ClosingRate(pair string, on Date) (decimal.Decimal, error) {
	pts, flip := m.lookup(pair)
	var found *ratePoint
	for i := range pts {
		if DateOf(pts[i].at) == on {
			found = &pts[i]
		}
	}
	if found == nil {
		return decimal.Decimal{}, &RateUnavailableError{Pair: pair, Date: on}
	}
	return flipRate(found.rate, flip), nil
}

// AverageRate implements RateProvider.
func (m *MemoryRates) AverageRate(pair string, from, to Date) (decimal.Decimal, error) {
	pts, flip := m.lookup(pair)
	sum := decimal.Zero
	var n int64
	for _, p := range pts {
		d := DateOf(p.at)
		if d.Before(from) || d.After(to) {
			continue
		}
		sum = sum.Add(flipRate(p.rate, flip))
		n++
	}
	if n == 0 {
		return decimal.Decimal{}, &RateUnavailableError{Pair: pair, Date: from}
	}
	return sum.Div(decimal.NewFromInt(n)), nil
}
