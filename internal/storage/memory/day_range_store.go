package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/storage"
)

// DayRangeStore is an in-memory implementation of storage.DayRangeStore.
type DayRangeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DayRange // keyed by (ticker, day)
}

// NewDayRangeStore creates a new in-memory day-range store.
func NewDayRangeStore() *DayRangeStore {
	return &DayRangeStore{
		data: make(map[string]*domain.DayRange),
	}
}

var _ storage.DayRangeStore = (*DayRangeStore)(nil)

// dayRangeKey generates a unique key for a bar.
func dayRangeKey(ticker, day string) string {
	return fmt.Sprintf("%s|%s", ticker, day)
}

// InsertBulk adds multiple bars. Fails entire batch on duplicate (ticker, day).
func (s *DayRangeStore) InsertBulk(_ context.Context, bars []*domain.DayRange) error {
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(bars))
	for _, b := range bars {
		if b == nil || b.Ticker == "" || b.Day == "" {
			return storage.ErrInvalidInput
		}
		key := dayRangeKey(b.Ticker, b.Day)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, b := range bars {
		copy := *b
		s.data[dayRangeKey(b.Ticker, b.Day)] = &copy
	}
	return nil
}

// GetByTickerDay retrieves one bar. Returns ErrNotFound if absent.
func (s *DayRangeStore) GetByTickerDay(_ context.Context, ticker, day string) (*domain.DayRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.data[dayRangeKey(ticker, day)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *b
	return &copy, nil
}

// GetByTickerRange retrieves bars for a ticker within [from, to] (inclusive),
// ordered by day ASC. Day keys sort lexically.
func (s *DayRangeStore) GetByTickerRange(_ context.Context, ticker, from, to string) ([]*domain.DayRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DayRange
	for _, b := range s.data {
		if b.Ticker == ticker && b.Day >= from && b.Day <= to {
			copy := *b
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day < result[j].Day
	})
	return result, nil
}
