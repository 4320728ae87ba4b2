package clickhouse

import (
	"context"
	"fmt"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/storage"
)

// DayRangeStore implements storage.DayRangeStore using ClickHouse.
type DayRangeStore struct {
	conn *Conn
}

// NewDayRangeStore creates a new DayRangeStore.
func NewDayRangeStore(conn *Conn) *DayRangeStore {
	return &DayRangeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DayRangeStore = (*DayRangeStore)(nil)

// InsertBulk adds multiple bars. Fails entire batch on duplicate (ticker, day).
func (s *DayRangeStore) InsertBulk(ctx context.Context, bars []*domain.DayRange) error {
	if len(bars) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		ticker string
		day    string
	}
	seen := make(map[key]struct{})
	for _, b := range bars {
		if b == nil || b.Ticker == "" || b.Day == "" {
			return storage.ErrInvalidInput
		}
		k := key{b.Ticker, b.Day}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows. MergeTree doesn't
	// enforce uniqueness at insert time.
	for _, b := range bars {
		exists, err := s.exists(ctx, b.Ticker, b.Day)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO day_ranges (
			ticker, day, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bars {
		err = batch.Append(
			b.Ticker, b.Day, b.High, b.Low, b.Close, b.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTickerDay retrieves one bar. Returns ErrNotFound if absent.
func (s *DayRangeStore) GetByTickerDay(ctx context.Context, ticker, day string) (*domain.DayRange, error) {
	query := `
		SELECT ticker, day, high, low, close, volume
		FROM day_ranges
		WHERE ticker = ? AND day = ?
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, ticker, day)
	if err != nil {
		return nil, fmt.Errorf("query by ticker day: %w", err)
	}
	defer rows.Close()

	bars, err := scanDayRanges(rows)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, storage.ErrNotFound
	}
	return bars[0], nil
}

// GetByTickerRange retrieves bars for a ticker within [from, to] (inclusive),
// ordered by day ASC.
func (s *DayRangeStore) GetByTickerRange(ctx context.Context, ticker, from, to string) ([]*domain.DayRange, error) {
	query := `
		SELECT ticker, day, high, low, close, volume
		FROM day_ranges
		WHERE ticker = ? AND day >= ? AND day <= ?
		ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("query by ticker range: %w", err)
	}
	defer rows.Close()

	return scanDayRanges(rows)
}

// exists checks if a bar with the given key exists.
func (s *DayRangeStore) exists(ctx context.Context, ticker, day string) (bool, error) {
	query := `
		SELECT count(*) FROM day_ranges
		WHERE ticker = ? AND day = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, ticker, day).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanDayRanges scans multiple rows into a slice.
func scanDayRanges(rows chRows) ([]*domain.DayRange, error) {
	var bars []*domain.DayRange

	for rows.Next() {
		var b domain.DayRange

		err := rows.Scan(
			&b.Ticker, &b.Day, &b.High, &b.Low, &b.Close, &b.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("scan day range row: %w", err)
		}

		bars = append(bars, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day range rows: %w", err)
	}

	return bars, nil
}
