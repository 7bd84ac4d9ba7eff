package taxes

import "github.com/shopspring/decimal"

// normalize returns a copy of the transaction with unit price and fee
// expressed in the reporting currency, applying the rate selected by the
// settings' rate source. It is a pure function of the transaction and the
// rate table; a missing rate surfaces as *RateUnavailableError, never as a
// silent 1:1 conversion.
func normalize(tx Transaction, settings TaxSettings, rates RateProvider, year TaxYear) (Transaction, error) {
	from := tx.Currency()
	to := settings.ReportingCurrency
	if from == to || from == "" {
		return tx, nil
	}

	pair := from + to
	var rate decimal.Decimal
	var err error
	switch settings.RateSource {
	case TransactionTime:
		rate, err = rates.RateAt(pair, tx.Time)
	case PeriodAverage:
		rate, err = rates.AverageRate(pair, year.Start(), year.End())
	default: // DailyClose
		rate, err = rates.ClosingRate(pair, tx.Date())
	}
	if err != nil {
		return Transaction{}, err
	}

	tx.UnitPrice = tx.UnitPrice.MulDecimal(rate).In(to)
	tx.Fee = tx.Fee.MulDecimal(rate).In(to)
	return tx, nil
}
