package taxes

import (
	"fmt"
	"sync"

	"github.com/phuslu/log"
)

// LedgerStore supplies each user's transaction ledger. It is owned by the
// surrounding application; the engine only reads from it.
type LedgerStore interface {
	Ledger(userID string) (*Ledger, error)
}

// SettingsStore supplies each user's committed settings, read-only to the
// engine.
type SettingsStore interface {
	Settings(userID string) (TaxSettings, error)
}

// Engine turns a transaction history plus settings into a tax report.
//
// A run is synchronous and single-threaded. Runs for distinct (user, tax
// year) pairs may execute in parallel; recomputation requests for the same
// pair are serialized, because a settings change invalidates the whole
// derived lot/event/report chain and a stale read would produce an
// inconsistent report.
type Engine struct {
	ledgers  LedgerStore
	settings SettingsStore
	rates    RateProvider
	logger   log.Logger

	mu    sync.Mutex
	runs  map[string]*sync.Mutex // per (user, year) exclusive locks
	cache map[string]cachedReport
}

// cachedReport remembers the settings tuple a report was computed under;
// any settings change misses the cache and triggers a full recompute.
type cachedReport struct {
	settingsKey string
	report      TaxReport
}

// NewEngine creates an engine over the given stores and rate provider.
func NewEngine(ledgers LedgerStore, settings SettingsStore, rates RateProvider, logger log.Logger) *Engine {
	return &Engine{
		ledgers:  ledgers,
		settings: settings,
		rates:    rates,
		logger:   logger,
		runs:     make(map[string]*sync.Mutex),
		cache:    make(map[string]cachedReport),
	}
}

// runLock returns the exclusive lock for one (user, year) pair.
func (e *Engine) runLock(key string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.runs[key]
	if !ok {
		l = &sync.Mutex{}
		e.runs[key] = l
	}
	return l
}

// ComputeReport computes the tax report for a user and tax year under the
// user's committed settings. The result is cached against the full settings
// tuple; it is recomputed from the ledger whenever any settings field
// changed.
func (e *Engine) ComputeReport(userID string, year int) (TaxReport, error) {
	settings, err := e.settings.Settings(userID)
	if err != nil {
		return nil, fmt.Errorf("could not load settings for %s: %w", userID, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	runKey := fmt.Sprintf("%s/%d", userID, year)
	lock := e.runLock(runKey)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	cached, ok := e.cache[runKey]
	e.mu.Unlock()
	if ok && cached.settingsKey == settings.Key() {
		return cached.report, nil
	}

	report, err := e.run(userID, year, settings)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[runKey] = cachedReport{settingsKey: settings.Key(), report: report}
	e.mu.Unlock()
	return report, nil
}

// PreviewReport runs the same computation under override settings, for
// what-if exploration before committing a change. It never reads or writes
// the report cache.
func (e *Engine) PreviewReport(userID string, year int, settings TaxSettings) (TaxReport, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return e.run(userID, year, settings)
}

// run executes the pipeline: ledger -> normalize -> match -> characterize
// -> aggregate. On any error the report is not partially populated: either
// a complete, internally consistent report is returned, or none.
func (e *Engine) run(userID string, year int, settings TaxSettings) (TaxReport, error) {
	ledger, err := e.ledgers.Ledger(userID)
	if err != nil {
		return nil, fmt.Errorf("could not load ledger for %s: %w", userID, err)
	}

	taxYear := NewTaxYear(settings.Jurisdiction, year)
	report, err := Compute(ledger, settings, e.rates, taxYear)
	if err != nil {
		e.logger.Warn().Str("user", userID).Str("year", taxYear.String()).Err(err).
			Msg("tax computation aborted")
		return nil, err
	}

	e.logger.Info().Str("user", userID).Str("year", taxYear.String()).
		Str("settings", settings.Key()).Int("transactions", ledger.Len()).
		Msg("tax report computed")
	return report, nil
}

// Compute runs one full computation over a ledger. It is the library entry
// point the Engine (and the CLI) share; state created here is scoped to the
// call and discarded with it.
func Compute(ledger *Ledger, settings TaxSettings, rates RateProvider, year TaxYear) (TaxReport, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	matcher := NewMatcher(settings)
	// Running original cost of foreign holdings, per symbol, in reporting
	// currency. Feeds the FIF threshold test.
	foreignCost := make(map[string]Money)
	var events []CharacterizedEvent

	for _, tx := range ledger.TransactionsThrough(year) {
		sec := ledger.Security(tx.Symbol)
		if sec == nil {
			return nil, &InvalidTransactionError{ID: tx.ID,
				Reason: fmt.Sprintf("security %q not declared in ledger", tx.Symbol)}
		}

		ntx, err := normalize(tx, settings, rates, year)
		if err != nil {
			return nil, err
		}

		switch ntx.Action {
		case Buy:
			if err := matcher.RecordAcquisition(ntx); err != nil {
				return nil, err
			}
			if sec.IsForeign(settings.Jurisdiction) {
				cost := ntx.Amount()
				if settings.IncludeFees {
					cost = cost.Add(ntx.Fee)
				}
				foreignCost[ntx.Symbol] = foreignCost[ntx.Symbol].Add(cost).In(settings.ReportingCurrency)
			}
		case Sell:
			event, err := matcher.RecordDisposal(ntx)
			if err != nil {
				return nil, err
			}
			if !year.Contains(event.Date) {
				// Pre-year disposals consume opening lots but are not
				// reportable in this year.
				continue
			}
			ce, err := characterize(event, settings, *sec, foreignCost[ntx.Symbol])
			if err != nil {
				return nil, err
			}
			events = append(events, ce)
		default:
			return nil, &InvalidTransactionError{ID: ntx.ID,
				Reason: fmt.Sprintf("unknown action %q", string(ntx.Action))}
		}
	}

	return aggregate(events, settings, year)
}
