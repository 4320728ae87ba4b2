package memory

import (
	"context"
	"sort"
	"sync"

	"trading-truth-lab/internal/storage"
)

// ReportStore is an in-memory implementation of storage.ReportStore.
type ReportStore struct {
	mu   sync.RWMutex
	data map[string]*storage.ReportRecord // keyed by report_id
}

// NewReportStore creates a new in-memory report store.
func NewReportStore() *ReportStore {
	return &ReportStore{
		data: make(map[string]*storage.ReportRecord),
	}
}

var _ storage.ReportStore = (*ReportStore)(nil)

// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
func (s *ReportStore) Insert(_ context.Context, r *storage.ReportRecord) error {
	if r == nil || r.ReportID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ReportID]; exists {
		return storage.ErrDuplicateKey
	}
	copy := *r
	copy.Payload = append([]byte(nil), r.Payload...)
	s.data[r.ReportID] = &copy
	return nil
}

// GetByID retrieves a report by its ID. Returns ErrNotFound if not exists.
func (s *ReportStore) GetByID(_ context.Context, reportID string) (*storage.ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[reportID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *r
	copy.Payload = append([]byte(nil), r.Payload...)
	return &copy, nil
}

// List retrieves up to limit reports, newest first. Ties on timestamp fall
// back to report_id for a stable order.
func (s *ReportStore) List(_ context.Context, limit int) ([]*storage.ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*storage.ReportRecord
	for _, r := range s.data {
		copy := *r
		copy.Payload = append([]byte(nil), r.Payload...)
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].GeneratedAt.Equal(result[j].GeneratedAt) {
			return result[i].GeneratedAt.After(result[j].GeneratedAt)
		}
		return result[i].ReportID < result[j].ReportID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
