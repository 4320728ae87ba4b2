package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"trading-truth-lab/internal/domain"
)

// Prefetch window paddings, in calendar days. The lookback covers the
// 20-session volume average and regime moving average; the lookahead covers
// the post-exit regret horizon.
const (
	LookbackDays  = 40
	LookaheadDays = 10
)

// Span is one (ticker, date range) a caller needs bars for.
type Span struct {
	Ticker string
	From   time.Time
	To     time.Time
}

// SpansForTrades derives the set of spans the enricher will need for a trade
// list, one padded span per ticker, plus the benchmark ticker over the whole
// period when set.
func SpansForTrades(trades []domain.MatchedTrade, benchmark string) []Span {
	type window struct {
		from time.Time
		to   time.Time
	}
	windows := make(map[string]window)
	var globalFrom, globalTo time.Time

	for _, t := range trades {
		w, ok := windows[t.Ticker]
		if !ok {
			w = window{from: t.EntryTime, to: t.ExitTime}
		} else {
			if t.EntryTime.Before(w.from) {
				w.from = t.EntryTime
			}
			if t.ExitTime.After(w.to) {
				w.to = t.ExitTime
			}
		}
		windows[t.Ticker] = w

		if globalFrom.IsZero() || t.EntryTime.Before(globalFrom) {
			globalFrom = t.EntryTime
		}
		if globalTo.IsZero() || t.ExitTime.After(globalTo) {
			globalTo = t.ExitTime
		}
	}

	if benchmark != "" && !globalFrom.IsZero() {
		w, ok := windows[benchmark]
		if !ok {
			w = window{from: globalFrom, to: globalTo}
		} else {
			if globalFrom.Before(w.from) {
				w.from = globalFrom
			}
			if globalTo.After(w.to) {
				w.to = globalTo
			}
		}
		windows[benchmark] = w
	}

	tickers := make([]string, 0, len(windows))
	for ticker := range windows {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	spans := make([]Span, 0, len(tickers))
	for _, ticker := range tickers {
		w := windows[ticker]
		spans = append(spans, Span{
			Ticker: ticker,
			From:   w.from.AddDate(0, 0, -LookbackDays),
			To:     w.to.AddDate(0, 0, LookaheadDays),
		})
	}
	return spans
}

// Prefetch loads every span from the source into a snapshot. Missing days
// inside a span are not errors; they just stay absent from the snapshot.
func Prefetch(ctx context.Context, source Source, spans []Span) (*Snapshot, error) {
	var bars []domain.DayRange
	for _, span := range spans {
		got, err := source.DayBars(ctx, span.Ticker, domain.DayKey(span.From), domain.DayKey(span.To))
		if err != nil {
			return nil, fmt.Errorf("prefetch %s: %w", span.Ticker, err)
		}
		for _, b := range got {
			bars = append(bars, *b)
		}
	}
	return NewSnapshot(bars), nil
}
