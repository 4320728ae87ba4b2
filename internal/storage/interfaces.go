package storage

import (
	"context"
	"time"

	"trading-truth-lab/internal/domain"
)

// ExecutionStore provides access to raw execution storage. Executions are
// keyed by (upload_id, row) so re-submitting the same upload is rejected.
type ExecutionStore interface {
	// Insert adds a single execution. Returns ErrDuplicateKey if
	// (upload_id, row) exists.
	Insert(ctx context.Context, uploadID string, e *domain.Execution) error

	// InsertBulk adds all executions of one upload atomically. Fails the
	// entire batch on any duplicate.
	InsertBulk(ctx context.Context, uploadID string, executions []*domain.Execution) error

	// GetByUploadID retrieves all executions of an upload, ordered by
	// timestamp ASC with input row order breaking ties.
	GetByUploadID(ctx context.Context, uploadID string) ([]*domain.Execution, error)

	// GetByTicker retrieves all executions for a ticker across uploads,
	// ordered by timestamp ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.Execution, error)
}

// DayRangeStore provides access to daily OHLC bar storage.
type DayRangeStore interface {
	// InsertBulk adds multiple bars. Fails entire batch on duplicate
	// (ticker, day).
	InsertBulk(ctx context.Context, bars []*domain.DayRange) error

	// GetByTickerDay retrieves one bar. Returns ErrNotFound if absent.
	GetByTickerDay(ctx context.Context, ticker, day string) (*domain.DayRange, error)

	// GetByTickerRange retrieves bars for a ticker within [from, to]
	// (inclusive, yyyy-mm-dd keys), ordered by day ASC.
	GetByTickerRange(ctx context.Context, ticker, from, to string) ([]*domain.DayRange, error)
}

// ReportRecord is one persisted analysis run: a summary row plus the full
// wire-format JSON payload.
type ReportRecord struct {
	ReportID    string
	GeneratedAt time.Time
	TotalTrades int
	TruthScore  int
	Payload     []byte // wire-format JSON
}

// ReportStore provides access to persisted analysis reports.
type ReportStore interface {
	// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
	Insert(ctx context.Context, r *ReportRecord) error

	// GetByID retrieves a report by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, reportID string) (*ReportRecord, error)

	// List retrieves up to limit reports, newest first.
	List(ctx context.Context, limit int) ([]*ReportRecord, error)
}
