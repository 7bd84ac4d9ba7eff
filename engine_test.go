package taxes

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/phuslu/log"
)

type ledgerMap map[string]*Ledger

func (m ledgerMap) Ledger(userID string) (*Ledger, error) {
	l, ok := m[userID]
	if !ok {
		return nil, fmt.Errorf("no ledger for %q", userID)
	}
	return l, nil
}

type settingsMap struct {
	mu sync.Mutex
	m  map[string]TaxSettings
}

func (s *settingsMap) Settings(userID string) (TaxSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.m[userID]
	if !ok {
		return TaxSettings{}, fmt.Errorf("no settings for %q", userID)
	}
	return ts, nil
}

func (s *settingsMap) set(userID string, ts TaxSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = ts
}

func discardLogger() log.Logger {
	return log.Logger{Writer: &log.IOWriter{Writer: io.Discard}}
}

// auLedger builds an AUD ledger with two lots and one in-year disposal:
// FIFO realizes a discounted 800 gain, LIFO a short-held 300 gain.
func auLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger()
	if err := l.Declare(Security{Symbol: "VAS", Currency: "AUD", Domicile: "AU"}); err != nil {
		t.Fatal(err)
	}
	err := l.Append(
		NewBuy(midday(t, "2023-01-10"), "VAS", Q(10), M(100, "AUD"), M(0, "AUD")),
		NewBuy(midday(t, "2024-08-01"), "VAS", Q(10), M(150, "AUD"), M(0, "AUD")),
		NewSell(midday(t, "2025-01-10"), "VAS", Q(10), M(180, "AUD"), M(0, "AUD")),
	)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func newTestEngine(t *testing.T, ledger *Ledger, settings TaxSettings) (*Engine, *settingsMap) {
	t.Helper()
	store := &settingsMap{m: map[string]TaxSettings{"alice": settings}}
	engine := NewEngine(ledgerMap{"alice": ledger}, store, NewMemoryRates(), discardLogger())
	return engine, store
}

func taxableGain(t *testing.T, report TaxReport) Money {
	t.Helper()
	au, ok := report.(*AUReport)
	if !ok {
		t.Fatalf("report type = %T, want *AUReport", report)
	}
	return au.TaxableGain
}

func TestEngineComputeReport(t *testing.T) {
	engine, _ := newTestEngine(t, auLedger(t), DefaultSettings())

	report, err := engine.ComputeReport("alice", 2025)
	if err != nil {
		t.Fatalf("ComputeReport: %v", err)
	}
	// FIFO consumes the 2023 lot: 800 gain held over a year, discounted to 400.
	if got, want := taxableGain(t, report), M(400, "AUD"); !got.Equal(want) {
		t.Errorf("taxable gain = %s, want %s", got, want)
	}
}

func TestEngineCachesBySettings(t *testing.T) {
	engine, store := newTestEngine(t, auLedger(t), DefaultSettings())

	first, err := engine.ComputeReport("alice", 2025)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.ComputeReport("alice", 2025)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("unchanged settings recomputed the report instead of hitting the cache")
	}

	// any settings change invalidates the cached report.
	changed := DefaultSettings()
	changed.AccountingMethod = LIFO
	store.set("alice", changed)

	third, err := engine.ComputeReport("alice", 2025)
	if err != nil {
		t.Fatal(err)
	}
	if third == first {
		t.Error("settings change served the stale cached report")
	}
	// LIFO consumes the 2024 lot: 300 gain held under a year, no discount.
	if got, want := taxableGain(t, third), M(300, "AUD"); !got.Equal(want) {
		t.Errorf("taxable gain after method change = %s, want %s", got, want)
	}
}

func TestEnginePreviewReport(t *testing.T) {
	engine, _ := newTestEngine(t, auLedger(t), DefaultSettings())

	committed, err := engine.ComputeReport("alice", 2025)
	if err != nil {
		t.Fatal(err)
	}

	override := DefaultSettings()
	override.AccountingMethod = LIFO
	preview, err := engine.PreviewReport("alice", 2025, override)
	if err != nil {
		t.Fatalf("PreviewReport: %v", err)
	}
	if got, want := taxableGain(t, preview), M(300, "AUD"); !got.Equal(want) {
		t.Errorf("preview taxable gain = %s, want %s", got, want)
	}

	// the preview must not disturb the committed report or its cache.
	after, err := engine.ComputeReport("alice", 2025)
	if err != nil {
		t.Fatal(err)
	}
	if after != committed {
		t.Error("preview invalidated the committed report cache")
	}
}

func TestEngineConcurrentCompute(t *testing.T) {
	engine, _ := newTestEngine(t, auLedger(t), DefaultSettings())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := engine.ComputeReport("alice", 2025)
			if err != nil {
				t.Errorf("ComputeReport: %v", err)
				return
			}
			if got, want := taxableGain(t, report), M(400, "AUD"); !got.Equal(want) {
				t.Errorf("taxable gain = %s, want %s", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestEngineInvalidSettings(t *testing.T) {
	bad := DefaultSettings()
	bad.ReportingCurrency = "XQZ"
	engine, _ := newTestEngine(t, auLedger(t), bad)

	if _, err := engine.ComputeReport("alice", 2025); err == nil {
		t.Fatal("expected an error for an unknown reporting currency")
	}
}

// Disposals before the tax year consume opening lots but never appear in the
// report.
func TestComputePriorYearDisposals(t *testing.T) {
	l := NewLedger()
	if err := l.Declare(Security{Symbol: "VAS", Currency: "AUD", Domicile: "AU"}); err != nil {
		t.Fatal(err)
	}
	err := l.Append(
		NewBuy(midday(t, "2023-01-10"), "VAS", Q(20), M(100, "AUD"), M(0, "AUD")),
		NewSell(midday(t, "2024-01-10"), "VAS", Q(10), M(150, "AUD"), M(0, "AUD")),
		NewSell(midday(t, "2025-01-10"), "VAS", Q(10), M(180, "AUD"), M(0, "AUD")),
	)
	if err != nil {
		t.Fatal(err)
	}

	report, err := Compute(l, DefaultSettings(), NewMemoryRates(), NewTaxYear(AU, 2025))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	au := report.(*AUReport)
	if len(au.Events) != 1 {
		t.Fatalf("events = %d, want only the in-year disposal", len(au.Events))
	}
	// the prior-year sale already consumed half the opening lot.
	if got, want := au.Events[0].CostBasis, M(1000, "AUD"); !got.Equal(want) {
		t.Errorf("cost basis = %s, want %s", got, want)
	}
}

func TestComputeOversellFails(t *testing.T) {
	l := NewLedger()
	if err := l.Declare(Security{Symbol: "VAS", Currency: "AUD", Domicile: "AU"}); err != nil {
		t.Fatal(err)
	}
	err := l.Append(
		NewBuy(midday(t, "2024-01-10"), "VAS", Q(5), M(100, "AUD"), M(0, "AUD")),
		NewSell(midday(t, "2025-01-10"), "VAS", Q(6), M(120, "AUD"), M(0, "AUD")),
	)
	if err != nil {
		t.Fatal(err)
	}

	_, err = Compute(l, DefaultSettings(), NewMemoryRates(), NewTaxYear(AU, 2025))
	var insufficient *InsufficientLotsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want *InsufficientLotsError", err)
	}
}

// The NZ FIF pipeline end to end: foreign buys push the cumulative cost over
// the threshold, so the disposal is attributed instead of realized.
func TestComputeNZFIF(t *testing.T) {
	l := NewLedger()
	if err := l.Declare(Security{Symbol: "VTI", Currency: "NZD", Domicile: "US"}); err != nil {
		t.Fatal(err)
	}
	err := l.Append(
		NewBuy(midday(t, "2024-05-10"), "VTI", Q(600), M(100, "NZD"), M(0, "NZD")),
		NewSell(midday(t, "2025-02-10"), "VTI", Q(100), M(110, "NZD"), M(0, "NZD")),
	)
	if err != nil {
		t.Fatal(err)
	}

	settings := TaxSettings{
		Jurisdiction:         NZ,
		Profile:              Investor,
		AccountingMethod:     FIFO,
		IncludeFees:          true,
		IncludeForeignIncome: true,
		ReportingCurrency:    "NZD",
		RateSource:           DailyClose,
		FIFMethod:            FairDividendRate,
	}
	report, err := Compute(l, settings, NewMemoryRates(), NewTaxYear(NZ, 2025))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	nz := report.(*NZReport)
	// 5% of the 10,000 disposed cost.
	if want := M(500, "NZD"); !nz.AttributedIncome.Equal(want) {
		t.Errorf("attributed income = %s, want %s", nz.AttributedIncome, want)
	}
	if len(nz.FIFAttribution) != 1 || nz.FIFAttribution[0].Asset != "VTI" {
		t.Errorf("attribution = %v, want a single VTI entry", nz.FIFAttribution)
	}
}
