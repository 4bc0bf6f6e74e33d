package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/storage"
	pgstore "wallet-reputation-lab/internal/storage/postgres"
)

const testAddress = "0xdadb0d80178819f2319190d340ce9a924f783711"

func testRecord(txHash string, logIndex int, ts int64) *domain.TransactionRecord {
	return &domain.TransactionRecord{
		TxHash:       txHash,
		LogIndex:     logIndex,
		Timestamp:    ts,
		Counterparty: "0x1111111111111111111111111111111111111111",
		Direction:    domain.DirectionOut,
		Value:        1.5,
		Asset:        "ETH",
		Protocol:     "uniswap",
		Success:      true,
	}
}

func TestHistoryStore_InsertBulkAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewHistoryStore(pool)
	ctx := context.Background()

	records := []*domain.TransactionRecord{
		testRecord("0xbbb", 0, 2000),
		testRecord("0xaaa", 0, 1000),
		testRecord("0xccc", 1, 2000),
	}
	require.NoError(t, store.InsertBulk(ctx, testAddress, records))

	got, err := store.GetByAddress(ctx, testAddress)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by timestamp ASC, ties by insertion order.
	assert.Equal(t, "0xaaa", got[0].TxHash)
	assert.Equal(t, "0xbbb", got[1].TxHash)
	assert.Equal(t, "0xccc", got[2].TxHash)

	assert.Equal(t, domain.DirectionOut, got[0].Direction)
	assert.Equal(t, 1.5, got[0].Value)
	assert.Equal(t, "uniswap", got[0].Protocol)
	assert.True(t, got[0].Success)
}

func TestHistoryStore_DuplicateFailsBatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewHistoryStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, testAddress, []*domain.TransactionRecord{testRecord("0xaaa", 0, 1000)}))

	// Same (tx_hash, log_index) is rejected and the whole batch rolls back.
	err := store.InsertBulk(ctx, testAddress, []*domain.TransactionRecord{
		testRecord("0xbbb", 0, 2000),
		testRecord("0xaaa", 0, 1000),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByAddress(ctx, testAddress)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestHistoryStore_LogIndexDistinguishesRecords(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewHistoryStore(pool)
	ctx := context.Background()

	// Same tx hash, different log index: both rows are valid.
	err := store.InsertBulk(ctx, testAddress, []*domain.TransactionRecord{
		testRecord("0xaaa", 0, 1000),
		testRecord("0xaaa", 1, 1000),
	})
	require.NoError(t, err)

	got, err := store.GetByAddress(ctx, testAddress)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestHistoryStore_DeleteByAddress(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewHistoryStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, testAddress, []*domain.TransactionRecord{testRecord("0xaaa", 0, 1000)}))
	require.NoError(t, store.DeleteByAddress(ctx, testAddress))

	got, err := store.GetByAddress(ctx, testAddress)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Re-ingestion after delete succeeds.
	require.NoError(t, store.InsertBulk(ctx, testAddress, []*domain.TransactionRecord{testRecord("0xaaa", 0, 1000)}))
}

func TestHistoryStore_GetUnknownAddress(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewHistoryStore(pool)

	got, err := store.GetByAddress(context.Background(), "0x0000000000000000000000000000000000000000")
	require.NoError(t, err)
	assert.Empty(t, got)
}
