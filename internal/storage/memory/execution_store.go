package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/storage"
)

// ExecutionStore is an in-memory implementation of storage.ExecutionStore.
type ExecutionStore struct {
	mu   sync.RWMutex
	data map[string]*storedExecution // keyed by (upload_id, row)
}

type storedExecution struct {
	uploadID  string
	execution domain.Execution
}

// NewExecutionStore creates a new in-memory execution store.
func NewExecutionStore() *ExecutionStore {
	return &ExecutionStore{
		data: make(map[string]*storedExecution),
	}
}

var _ storage.ExecutionStore = (*ExecutionStore)(nil)

// executionKey generates a unique key for an execution.
func executionKey(uploadID string, row int) string {
	return fmt.Sprintf("%s|%d", uploadID, row)
}

// Insert adds a single execution. Returns ErrDuplicateKey if exists.
func (s *ExecutionStore) Insert(_ context.Context, uploadID string, e *domain.Execution) error {
	if e == nil || uploadID == "" || e.Ticker == "" {
		return storage.ErrInvalidInput
	}

	key := executionKey(uploadID, e.Row)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[key] = &storedExecution{uploadID: uploadID, execution: *e}
	return nil
}

// InsertBulk adds all executions of one upload atomically. Fails entire
// batch on any duplicate.
func (s *ExecutionStore) InsertBulk(_ context.Context, uploadID string, executions []*domain.Execution) error {
	if len(executions) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(executions))
	for _, e := range executions {
		if e == nil || uploadID == "" || e.Ticker == "" {
			return storage.ErrInvalidInput
		}
		key := executionKey(uploadID, e.Row)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, e := range executions {
		s.data[executionKey(uploadID, e.Row)] = &storedExecution{uploadID: uploadID, execution: *e}
	}
	return nil
}

// GetByUploadID retrieves all executions of an upload, ordered by timestamp
// ASC with input row order breaking ties.
func (s *ExecutionStore) GetByUploadID(_ context.Context, uploadID string) ([]*domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Execution
	for _, se := range s.data {
		if se.uploadID == uploadID {
			copy := se.execution
			result = append(result, &copy)
		}
	}
	sortExecutions(result)
	return result, nil
}

// GetByTicker retrieves all executions for a ticker across uploads, ordered
// by timestamp ASC.
func (s *ExecutionStore) GetByTicker(_ context.Context, ticker string) ([]*domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Execution
	for _, se := range s.data {
		if se.execution.Ticker == ticker {
			copy := se.execution
			result = append(result, &copy)
		}
	}
	sortExecutions(result)
	return result, nil
}

func sortExecutions(execs []*domain.Execution) {
	sort.Slice(execs, func(i, j int) bool {
		if !execs[i].Timestamp.Equal(execs[j].Timestamp) {
			return execs[i].Timestamp.Before(execs[j].Timestamp)
		}
		return execs[i].Row < execs[j].Row
	})
}
