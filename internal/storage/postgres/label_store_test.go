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

func TestLabelStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewLabelStore(pool)
	ctx := context.Background()

	label := &domain.AddressLabel{
		Address:    "0x2222222222222222222222222222222222222222",
		Kind:       domain.LabelMalicious,
		Source:     "etherscan",
		Confidence: 0.9,
	}
	require.NoError(t, store.Upsert(ctx, label))

	got, err := store.GetByAddresses(ctx, []string{
		label.Address,
		"0x3333333333333333333333333333333333333333", // never labeled
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.LabelMalicious, got[label.Address].Kind)
	assert.Equal(t, "etherscan", got[label.Address].Source)
	assert.Equal(t, 0.9, got[label.Address].Confidence)
}

func TestLabelStore_UpsertReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewLabelStore(pool)
	ctx := context.Background()

	addr := "0x2222222222222222222222222222222222222222"
	require.NoError(t, store.Upsert(ctx, &domain.AddressLabel{
		Address: addr, Kind: domain.LabelUnknown, Source: "manual", Confidence: 0.1,
	}))
	require.NoError(t, store.Upsert(ctx, &domain.AddressLabel{
		Address: addr, Kind: domain.LabelMalicious, Source: "etherscan", Confidence: 0.95,
	}))

	got, err := store.GetByAddresses(ctx, []string{addr})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.LabelMalicious, got[addr].Kind)
	assert.Equal(t, 0.95, got[addr].Confidence)
}

func TestLabelStore_EmptyQuery(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewLabelStore(pool)

	got, err := store.GetByAddresses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLabelStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewLabelStore(pool)

	err := store.Upsert(context.Background(), &domain.AddressLabel{Kind: domain.LabelBenign})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
