package normalize

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"trading-truth-lab/internal/domain"
)

// ReadBars parses a daily OHLC CSV (ticker, day, high, low, close and an
// optional volume column). Rows with bad numbers or an unparseable day are
// dropped; only a missing header column is fatal.
func ReadBars(r io.Reader) ([]*domain.DayRange, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("normalize: read bars header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	for _, required := range []string{"ticker", "day", "high", "low", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("normalize: bars missing column %q", required)
		}
	}

	var bars []*domain.DayRange
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		ticker := strings.ToUpper(strings.TrimSpace(fieldAt(rec, cols["ticker"])))
		day := strings.TrimSpace(fieldAt(rec, cols["day"]))
		if ticker == "" || domain.DayOf(day).IsZero() {
			continue
		}

		high, err1 := strconv.ParseFloat(fieldAt(rec, cols["high"]), 64)
		low, err2 := strconv.ParseFloat(fieldAt(rec, cols["low"]), 64)
		closePx, err3 := strconv.ParseFloat(fieldAt(rec, cols["close"]), 64)
		if err1 != nil || err2 != nil || err3 != nil || high < low {
			continue
		}

		var volume float64
		if i, ok := cols["volume"]; ok {
			volume, _ = strconv.ParseFloat(fieldAt(rec, i), 64)
		}

		bars = append(bars, &domain.DayRange{
			Ticker: ticker,
			Day:    day,
			High:   high,
			Low:    low,
			Close:  closePx,
			Volume: volume,
		})
	}

	if len(bars) == 0 {
		return nil, ErrNoRows
	}
	return bars, nil
}
