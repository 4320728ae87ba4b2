package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/storage"
)

// ExecutionStore implements storage.ExecutionStore using PostgreSQL.
type ExecutionStore struct {
	pool *Pool
}

// NewExecutionStore creates a new ExecutionStore.
func NewExecutionStore(pool *Pool) *ExecutionStore {
	return &ExecutionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ExecutionStore = (*ExecutionStore)(nil)

// Insert adds a single execution. Returns ErrDuplicateKey if (upload_id, row_num) exists.
func (s *ExecutionStore) Insert(ctx context.Context, uploadID string, e *domain.Execution) error {
	if e == nil || uploadID == "" || e.Ticker == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO executions (
			upload_id, row_num, ticker, timestamp, side, price, quantity
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		uploadID,
		e.Row,
		e.Ticker,
		e.Timestamp,
		string(e.Side),
		e.Price,
		e.Quantity,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// InsertBulk adds all executions of one upload atomically. Fails entire batch on any duplicate.
func (s *ExecutionStore) InsertBulk(ctx context.Context, uploadID string, executions []*domain.Execution) error {
	if len(executions) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO executions (
			upload_id, row_num, ticker, timestamp, side, price, quantity
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, e := range executions {
		if e == nil || uploadID == "" || e.Ticker == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			uploadID,
			e.Row,
			e.Ticker,
			e.Timestamp,
			string(e.Side),
			e.Price,
			e.Quantity,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert execution in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByUploadID retrieves all executions of an upload, ordered by timestamp ASC
// with row order breaking ties.
func (s *ExecutionStore) GetByUploadID(ctx context.Context, uploadID string) ([]*domain.Execution, error) {
	query := `
		SELECT row_num, ticker, timestamp, side, price, quantity
		FROM executions
		WHERE upload_id = $1
		ORDER BY timestamp ASC, row_num ASC
	`

	rows, err := s.pool.Query(ctx, query, uploadID)
	if err != nil {
		return nil, fmt.Errorf("get executions by upload id: %w", err)
	}
	defer rows.Close()

	return scanExecutions(rows)
}

// GetByTicker retrieves all executions for a ticker across uploads, ordered by timestamp ASC.
func (s *ExecutionStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.Execution, error) {
	query := `
		SELECT row_num, ticker, timestamp, side, price, quantity
		FROM executions
		WHERE ticker = $1
		ORDER BY timestamp ASC, row_num ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get executions by ticker: %w", err)
	}
	defer rows.Close()

	return scanExecutions(rows)
}

// scanExecutions scans multiple rows into a slice of Execution.
func scanExecutions(rows pgx.Rows) ([]*domain.Execution, error) {
	var executions []*domain.Execution

	for rows.Next() {
		var e domain.Execution
		var side string

		err := rows.Scan(
			&e.Row,
			&e.Ticker,
			&e.Timestamp,
			&side,
			&e.Price,
			&e.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan execution row: %w", err)
		}

		e.Side = domain.Side(side)
		e.Timestamp = e.Timestamp.UTC()
		executions = append(executions, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate execution rows: %w", err)
	}

	return executions, nil
}
