package taxes

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// The rate file is JSONL: one observed rate per line,
// {"pair":"NZDAUD","time":"2026-01-02T16:00:00Z","rate":0.92}.

// DecodeRates decodes a stream of JSONL rate observations into a MemoryRates table.
func DecodeRates(r io.Reader) (*MemoryRates, error) {
	rates := NewMemoryRates()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		var rec struct {
			Pair string          `json:"pair"`
			Time time.Time       `json:"time"`
			Rate decimal.Decimal `json:"rate"`
		}
		if err := json.Unmarshal(lineBytes, &rec); err != nil {
			return nil, fmt.Errorf("could not decode rate line %q: %w", string(lineBytes), err)
		}
		if len(rec.Pair) != 6 {
			return nil, fmt.Errorf("invalid currency pair %q", rec.Pair)
		}
		rates.Add(rec.Pair, rec.Time, rec.Rate)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read rates: %w", err)
	}
	return rates, nil
}
