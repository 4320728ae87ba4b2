// Package marketdata provides day-level OHLC context for enrichment. The
// engine never talks to a remote feed mid-pipeline: all required days are
// prefetched into an immutable Snapshot before any stage runs.
package marketdata

import (
	"context"
	"errors"

	"trading-truth-lab/internal/domain"
)

// ErrNoData is returned by sources when a (ticker, day) has no bar. Missing
// days are an expected condition (weekends, holidays, unlisted history) and
// must degrade to sentinel scores, never to fabricated values.
var ErrNoData = errors.New("no market data for day")

// Source provides day-level OHLC bars. Implementations include the in-memory
// map, the stored-bar adapters and test fixtures.
type Source interface {
	// DayBar returns the bar for a ticker on a calendar day (yyyy-mm-dd).
	// Returns ErrNoData when the day has no bar.
	DayBar(ctx context.Context, ticker, day string) (*domain.DayRange, error)

	// DayBars returns all bars for a ticker within [from, to] inclusive,
	// ordered by day ascending. Missing days are simply absent.
	DayBars(ctx context.Context, ticker, from, to string) ([]*domain.DayRange, error)
}
