package postgres

import (
	"context"
	"fmt"

	"trading-truth-lab/internal/storage"
)

// ReportStore implements storage.ReportStore using PostgreSQL.
type ReportStore struct {
	pool *Pool
}

// NewReportStore creates a new ReportStore.
func NewReportStore(pool *Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReportStore = (*ReportStore)(nil)

// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
func (s *ReportStore) Insert(ctx context.Context, r *storage.ReportRecord) error {
	if r == nil || r.ReportID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO reports (
			report_id, generated_at, total_trades, truth_score, payload
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		r.ReportID,
		r.GeneratedAt,
		r.TotalTrades,
		r.TruthScore,
		r.Payload,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by its ID. Returns ErrNotFound if not exists.
func (s *ReportStore) GetByID(ctx context.Context, reportID string) (*storage.ReportRecord, error) {
	query := `
		SELECT report_id, generated_at, total_trades, truth_score, payload
		FROM reports
		WHERE report_id = $1
	`

	var r storage.ReportRecord
	err := s.pool.QueryRow(ctx, query, reportID).Scan(
		&r.ReportID,
		&r.GeneratedAt,
		&r.TotalTrades,
		&r.TruthScore,
		&r.Payload,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get report by id: %w", err)
	}

	r.GeneratedAt = r.GeneratedAt.UTC()
	return &r, nil
}

// List retrieves up to limit reports, newest first.
func (s *ReportStore) List(ctx context.Context, limit int) ([]*storage.ReportRecord, error) {
	query := `
		SELECT report_id, generated_at, total_trades, truth_score, payload
		FROM reports
		ORDER BY generated_at DESC, report_id ASC
		LIMIT $1
	`

	// LIMIT NULL means no limit in Postgres.
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := s.pool.Query(ctx, query, lim)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []*storage.ReportRecord
	for rows.Next() {
		var r storage.ReportRecord
		err := rows.Scan(
			&r.ReportID,
			&r.GeneratedAt,
			&r.TotalTrades,
			&r.TruthScore,
			&r.Payload,
		)
		if err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		r.GeneratedAt = r.GeneratedAt.UTC()
		reports = append(reports, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}

	return reports, nil
}
