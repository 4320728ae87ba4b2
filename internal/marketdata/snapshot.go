package marketdata

import (
	"context"
	"time"

	"trading-truth-lab/internal/domain"
)

type barKey struct {
	ticker string
	day    string
}

// Snapshot is an immutable in-memory view of day bars, built once before the
// pipeline executes so no stage needs to suspend mid-computation. Lookups
// are pure map reads and safe for concurrent use.
type Snapshot struct {
	bars map[barKey]domain.DayRange
}

// NewSnapshot builds a snapshot from a flat bar list. Later duplicates of
// the same (ticker, day) overwrite earlier ones.
func NewSnapshot(bars []domain.DayRange) *Snapshot {
	m := make(map[barKey]domain.DayRange, len(bars))
	for _, b := range bars {
		m[barKey{ticker: b.Ticker, day: b.Day}] = b
	}
	return &Snapshot{bars: m}
}

// Bar returns the bar for a ticker on a calendar day.
func (s *Snapshot) Bar(ticker, day string) (domain.DayRange, bool) {
	b, ok := s.bars[barKey{ticker: ticker, day: day}]
	return b, ok
}

// BarAt is Bar keyed by timestamp instead of day string.
func (s *Snapshot) BarAt(ticker string, t time.Time) (domain.DayRange, bool) {
	return s.Bar(ticker, domain.DayKey(t))
}

// Len returns the number of bars held.
func (s *Snapshot) Len() int {
	return len(s.bars)
}

// DayBar implements Source over the snapshot, so a prefetched snapshot can
// be handed anywhere a Source is expected.
func (s *Snapshot) DayBar(_ context.Context, ticker, day string) (*domain.DayRange, error) {
	b, ok := s.Bar(ticker, day)
	if !ok {
		return nil, ErrNoData
	}
	out := b
	return &out, nil
}

// DayBars implements Source over the snapshot via calendar-day iteration.
func (s *Snapshot) DayBars(_ context.Context, ticker, from, to string) ([]*domain.DayRange, error) {
	start := domain.DayOf(from)
	end := domain.DayOf(to)
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, nil
	}

	var out []*domain.DayRange
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if b, ok := s.Bar(ticker, domain.DayKey(d)); ok {
			bar := b
			out = append(out, &bar)
		}
	}
	return out, nil
}
