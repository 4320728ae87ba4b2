package storage

import (
	"context"
	"errors"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/marketdata"
)

// BarSource adapts a DayRangeStore to the marketdata.Source interface so
// the pipeline can prefetch bars from any backing store.
type BarSource struct {
	store DayRangeStore
}

// NewBarSource wraps a day-range store as a market data source.
func NewBarSource(store DayRangeStore) *BarSource {
	return &BarSource{store: store}
}

var _ marketdata.Source = (*BarSource)(nil)

// DayBar returns the bar for one session, or marketdata.ErrNoData.
func (s *BarSource) DayBar(ctx context.Context, ticker, day string) (*domain.DayRange, error) {
	bar, err := s.store.GetByTickerDay(ctx, ticker, day)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, marketdata.ErrNoData
		}
		return nil, err
	}
	return bar, nil
}

// DayBars returns bars within [from, to], skipping days with no data.
func (s *BarSource) DayBars(ctx context.Context, ticker, from, to string) ([]*domain.DayRange, error) {
	return s.store.GetByTickerRange(ctx, ticker, from, to)
}
