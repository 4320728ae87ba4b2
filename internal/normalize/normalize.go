// Package normalize turns raw CSV trade uploads into domain values. Two
// shapes are accepted, disambiguated by the presence of an "action" column:
// an execution log (one row per fill, routed through the matcher) and a
// paired format (one row per already-matched round trip).
package normalize

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/idhash"
)

// ErrNoRows means the input parsed cleanly but produced no usable rows.
var ErrNoRows = errors.New("normalize: no usable rows")

// Format identifies which input shape was detected.
type Format string

const (
	FormatExecutionLog Format = "execution_log"
	FormatPaired       Format = "paired"
)

// Result carries the normalized rows plus what had to be discarded.
// Exactly one of Executions and Trades is populated, per Format.
type Result struct {
	Format     Format
	Executions []domain.Execution
	Trades     []domain.MatchedTrade

	DroppedRows int
	Warnings    []string
}

// Accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	domain.DayLayout,
}

// Read parses a CSV stream. Malformed rows are dropped and counted, with a
// per-row warning; only a missing or unusable header is fatal.
func Read(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("normalize: read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}

	if _, ok := cols["action"]; ok {
		return readExecutionLog(cr, cols)
	}
	return readPaired(cr, cols)
}

func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

func readExecutionLog(cr *csv.Reader, cols map[string]int) (*Result, error) {
	for _, required := range []string{"ticker", "date", "action", "price", "qty"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("normalize: execution log missing column %q", required)
		}
	}

	res := &Result{Format: FormatExecutionLog}
	rowNum := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			res.drop(rowNum, "unreadable row")
			continue
		}

		ticker := fieldAt(rec, cols["ticker"])
		if ticker == "" {
			res.drop(rowNum, "empty ticker")
			continue
		}
		ts, err := parseTime(fieldAt(rec, cols["date"]))
		if err != nil {
			res.drop(rowNum, "bad date")
			continue
		}
		side, err := parseSide(fieldAt(rec, cols["action"]))
		if err != nil {
			res.drop(rowNum, "bad action")
			continue
		}
		price, err := parsePositive(fieldAt(rec, cols["price"]))
		if err != nil {
			res.drop(rowNum, "bad price")
			continue
		}
		qty, err := parsePositive(fieldAt(rec, cols["qty"]))
		if err != nil {
			res.drop(rowNum, "bad qty")
			continue
		}

		res.Executions = append(res.Executions, domain.Execution{
			Ticker:    strings.ToUpper(ticker),
			Timestamp: ts,
			Side:      side,
			Price:     price,
			Quantity:  qty,
			Row:       rowNum,
		})
	}

	if len(res.Executions) == 0 {
		return res, ErrNoRows
	}
	return res, nil
}

func readPaired(cr *csv.Reader, cols map[string]int) (*Result, error) {
	for _, required := range []string{"ticker", "entry_date", "entry_price", "exit_date", "exit_price"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("normalize: paired input missing column %q", required)
		}
	}
	qtyCol, hasQty := cols["qty"]

	res := &Result{Format: FormatPaired}
	rowNum := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			res.drop(rowNum, "unreadable row")
			continue
		}

		ticker := fieldAt(rec, cols["ticker"])
		if ticker == "" {
			res.drop(rowNum, "empty ticker")
			continue
		}
		entryTime, err := parseTime(fieldAt(rec, cols["entry_date"]))
		if err != nil {
			res.drop(rowNum, "bad entry_date")
			continue
		}
		exitTime, err := parseTime(fieldAt(rec, cols["exit_date"]))
		if err != nil {
			res.drop(rowNum, "bad exit_date")
			continue
		}
		if exitTime.Before(entryTime) {
			res.drop(rowNum, "exit before entry")
			continue
		}
		entryPrice, err := parsePositive(fieldAt(rec, cols["entry_price"]))
		if err != nil {
			res.drop(rowNum, "bad entry_price")
			continue
		}
		exitPrice, err := parsePositive(fieldAt(rec, cols["exit_price"]))
		if err != nil {
			res.drop(rowNum, "bad exit_price")
			continue
		}
		qty := 1.0
		if hasQty {
			if raw := fieldAt(rec, qtyCol); raw != "" {
				qty, err = parsePositive(raw)
				if err != nil {
					res.drop(rowNum, "bad qty")
					continue
				}
			}
		}

		ticker = strings.ToUpper(ticker)
		res.Trades = append(res.Trades, domain.MatchedTrade{
			TradeID:    idhash.ComputeTradeID(ticker, entryTime, exitTime, qty, rowNum),
			Ticker:     ticker,
			EntryTime:  entryTime,
			EntryPrice: entryPrice,
			ExitTime:   exitTime,
			ExitPrice:  exitPrice,
			Quantity:   qty,
		})
	}

	if len(res.Trades) == 0 {
		return res, ErrNoRows
	}
	return res, nil
}

func (r *Result) drop(rowNum int, reason string) {
	r.DroppedRows++
	r.Warnings = append(r.Warnings, fmt.Sprintf("row %d dropped: %s", rowNum, reason))
}

func fieldAt(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

func parseSide(raw string) (domain.Side, error) {
	switch strings.ToUpper(raw) {
	case string(domain.SideBuy):
		return domain.SideBuy, nil
	case string(domain.SideSell):
		return domain.SideSell, nil
	}
	return "", fmt.Errorf("unknown action %q", raw)
}

func parsePositive(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("non-positive value %v", v)
	}
	return v, nil
}
