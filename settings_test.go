package taxes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
}

func TestParseJurisdiction(t *testing.T) {
	j, err := ParseJurisdiction("nz")
	require.NoError(t, err)
	assert.Equal(t, NZ, j)

	_, err = ParseJurisdiction("US")
	var unsupported *UnsupportedJurisdictionError
	require.ErrorAs(t, err, &unsupported)
}

func TestParseAccountingMethod(t *testing.T) {
	tests := []struct {
		in   string
		want AccountingMethod
	}{
		{"fifo", FIFO},
		{"LIFO", LIFO},
		{"hifo", HIFO},
		{"average", AverageCost},
	}
	for _, tt := range tests {
		got, err := ParseAccountingMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseAccountingMethod("wifo")
	require.Error(t, err)
}

func TestParseRateSource(t *testing.T) {
	for _, s := range []RateSource{DailyClose, TransactionTime, PeriodAverage} {
		got, err := ParseRateSource(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseRateSource("spot")
	require.Error(t, err)
}

func TestParseFIFMethod(t *testing.T) {
	for _, m := range []FIFMethod{FairDividendRate, ComparativeValue} {
		got, err := ParseFIFMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseFIFMethod("deemedRate")
	require.Error(t, err)
}

// Every settings field participates in the cache key: two settings differing
// in any field must never share a cached report.
func TestSettingsKeyCoversAllFields(t *testing.T) {
	base := DefaultSettings()
	mutations := map[string]func(*TaxSettings){
		"jurisdiction":   func(s *TaxSettings) { s.Jurisdiction = NZ },
		"profile":        func(s *TaxSettings) { s.Profile = Trader },
		"method":         func(s *TaxSettings) { s.AccountingMethod = HIFO },
		"fees":           func(s *TaxSettings) { s.IncludeFees = false },
		"foreign income": func(s *TaxSettings) { s.IncludeForeignIncome = false },
		"carry losses":   func(s *TaxSettings) { s.CarryForwardLosses = true },
		"currency":       func(s *TaxSettings) { s.ReportingCurrency = "NZD" },
		"rate source":    func(s *TaxSettings) { s.RateSource = PeriodAverage },
		"fif method":     func(s *TaxSettings) { s.FIFMethod = ComparativeValue },
	}
	for name, mutate := range mutations {
		changed := base
		mutate(&changed)
		assert.NotEqual(t, base.Key(), changed.Key(), "field %q missing from the cache key", name)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TaxSettings)
	}{
		{"unknown jurisdiction", func(s *TaxSettings) { s.Jurisdiction = "US" }},
		{"unknown profile", func(s *TaxSettings) { s.Profile = "gambler" }},
		{"unknown method", func(s *TaxSettings) { s.AccountingMethod = 42 }},
		{"unknown rate source", func(s *TaxSettings) { s.RateSource = 42 }},
		{"unknown fif method", func(s *TaxSettings) { s.FIFMethod = 42 }},
		{"unknown currency", func(s *TaxSettings) { s.ReportingCurrency = "XQZ" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			require.Error(t, s.Validate())
		})
	}
}

func TestSettingsTOMLRoundTrip(t *testing.T) {
	s := TaxSettings{
		Jurisdiction:         NZ,
		Profile:              Trader,
		AccountingMethod:     HIFO,
		IncludeFees:          false,
		IncludeForeignIncome: true,
		CarryForwardLosses:   true,
		ReportingCurrency:    "NZD",
		RateSource:           PeriodAverage,
		FIFMethod:            ComparativeValue,
	}

	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, SaveSettings(path, s))

	loaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

// Fields absent from the file keep their defaults.
func TestLoadSettingsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("jurisdiction = \"NZ\"\nreporting_currency = \"NZD\"\n"), 0o644))

	loaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, NZ, loaded.Jurisdiction)
	assert.Equal(t, "NZD", loaded.ReportingCurrency)
	assert.Equal(t, Investor, loaded.Profile)
	assert.Equal(t, FIFO, loaded.AccountingMethod)
	assert.True(t, loaded.IncludeFees)
}

func TestLoadSettingsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("jurisdiction = \"US\"\n"), 0o644))

	_, err := LoadSettings(path)
	require.Error(t, err)
}
