// Package match turns a chronological execution stream into closed
// round-trip trades using first-in-first-out inventory accounting.
package match

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/idhash"
)

// ErrInventoryUnderflow is returned when a SELL exceeds the quantity held in
// open BUY lots. The stream is rejected rather than clamped: partially
// matching and discarding the remainder would silently change the trader's
// PnL history.
var ErrInventoryUnderflow = errors.New("sell exceeds open inventory")

// quantityEpsilon absorbs float noise when a lot is consumed exactly.
const quantityEpsilon = 1e-9

// lot is one open BUY awaiting matching. Mutable only inside a single
// matching pass; discarded once fully consumed.
type lot struct {
	openTime  time.Time
	price     float64
	remaining float64
}

// MatchTicker matches the executions of a single ticker, which must be
// sorted ascending by timestamp (stable for equal timestamps). Every SELL is
// satisfied by the oldest still-open BUY lots first; a SELL spanning several
// lots emits one matched trade per consumed lot. Unmatched trailing BUY
// inventory is left open and not emitted.
func MatchTicker(executions []domain.Execution) ([]domain.MatchedTrade, error) {
	var trades []domain.MatchedTrade
	var open []lot

	for _, exec := range executions {
		switch exec.Side {
		case domain.SideBuy:
			open = append(open, lot{
				openTime:  exec.Timestamp,
				price:     exec.Price,
				remaining: exec.Quantity,
			})

		case domain.SideSell:
			remaining := exec.Quantity
			for remaining > quantityEpsilon {
				if len(open) == 0 {
					return nil, fmt.Errorf("%s at %s: %w",
						exec.Ticker, exec.Timestamp.Format(time.RFC3339), ErrInventoryUnderflow)
				}

				head := &open[0]
				qty := min(head.remaining, remaining)

				// The emit ordinal makes IDs unique even when two fills
				// share every price/time/quantity field.
				trades = append(trades, domain.MatchedTrade{
					TradeID:    idhash.ComputeTradeID(exec.Ticker, head.openTime, exec.Timestamp, qty, len(trades)),
					Ticker:     exec.Ticker,
					EntryTime:  head.openTime,
					EntryPrice: head.price,
					ExitTime:   exec.Timestamp,
					ExitPrice:  exec.Price,
					Quantity:   qty,
				})

				head.remaining -= qty
				remaining -= qty

				if head.remaining <= quantityEpsilon {
					open = open[1:]
				}
			}

		default:
			return nil, fmt.Errorf("execution row %d: unknown side %q", exec.Row, exec.Side)
		}
	}

	return trades, nil
}

// Match groups executions by ticker and matches each group independently.
// Input order within a ticker is preserved via a stable sort on
// (timestamp, row); tickers contribute trades in lexicographic order so the
// output is deterministic.
func Match(executions []domain.Execution) ([]domain.MatchedTrade, error) {
	byTicker := make(map[string][]domain.Execution)
	for _, exec := range executions {
		byTicker[exec.Ticker] = append(byTicker[exec.Ticker], exec)
	}

	tickers := make([]string, 0, len(byTicker))
	for ticker := range byTicker {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	var all []domain.MatchedTrade
	for _, ticker := range tickers {
		stream := byTicker[ticker]
		sort.SliceStable(stream, func(i, j int) bool {
			if !stream[i].Timestamp.Equal(stream[j].Timestamp) {
				return stream[i].Timestamp.Before(stream[j].Timestamp)
			}
			return stream[i].Row < stream[j].Row
		})

		trades, err := MatchTicker(stream)
		if err != nil {
			return nil, err
		}
		all = append(all, trades...)
	}

	return all, nil
}
