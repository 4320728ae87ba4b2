package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-truth-lab/internal/domain"
	"trading-truth-lab/internal/storage"
)

func testExecution(ticker string, row int, ts time.Time) *domain.Execution {
	return &domain.Execution{
		Ticker:    ticker,
		Timestamp: ts,
		Side:      domain.SideBuy,
		Price:     10.5,
		Quantity:  100,
		Row:       row,
	}
}

func TestExecutionStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExecutionStore(pool)
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := store.Insert(ctx, "upload1", testExecution("AAPL", 2, ts))
	require.NoError(t, err)

	result, err := store.GetByUploadID(ctx, "upload1")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "AAPL", result[0].Ticker)
	assert.Equal(t, domain.SideBuy, result[0].Side)
	assert.Equal(t, 10.5, result[0].Price)
	assert.True(t, result[0].Timestamp.Equal(ts))
}

func TestExecutionStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExecutionStore(pool)
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := store.Insert(ctx, "upload1", testExecution("AAPL", 2, ts))
	require.NoError(t, err)

	err = store.Insert(ctx, "upload1", testExecution("AAPL", 2, ts))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same row in a different upload is fine.
	err = store.Insert(ctx, "upload2", testExecution("AAPL", 2, ts))
	assert.NoError(t, err)
}

func TestExecutionStore_InsertBulkAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExecutionStore(pool)
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	batch := []*domain.Execution{
		testExecution("AAPL", 2, ts),
		testExecution("AAPL", 2, ts), // duplicate row in batch
	}
	err := store.InsertBulk(ctx, "upload1", batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	result, err := store.GetByUploadID(ctx, "upload1")
	require.NoError(t, err)
	assert.Empty(t, result, "failed batch must not leave partial rows")
}

func TestExecutionStore_OrderingByTimestampThenRow(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExecutionStore(pool)
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	batch := []*domain.Execution{
		testExecution("AAPL", 4, ts),
		testExecution("AAPL", 2, ts),
		testExecution("AAPL", 3, ts.Add(-time.Hour)),
	}
	require.NoError(t, store.InsertBulk(ctx, "upload1", batch))

	result, err := store.GetByUploadID(ctx, "upload1")
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, 3, result[0].Row)
	assert.Equal(t, 2, result[1].Row)
	assert.Equal(t, 4, result[2].Row)
}

func TestExecutionStore_GetByTicker(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExecutionStore(pool)
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, "upload1", testExecution("AAPL", 2, ts)))
	require.NoError(t, store.Insert(ctx, "upload2", testExecution("AAPL", 2, ts.Add(time.Hour))))
	require.NoError(t, store.Insert(ctx, "upload1", testExecution("MSFT", 3, ts)))

	result, err := store.GetByTicker(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.True(t, result[0].Timestamp.Before(result[1].Timestamp))
}

func TestExecutionStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExecutionStore(pool)
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := store.Insert(ctx, "", testExecution("AAPL", 2, ts))
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Insert(ctx, "upload1", nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
