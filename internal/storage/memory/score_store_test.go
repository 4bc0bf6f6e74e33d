package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-reputation-lab/internal/domain"
	"wallet-reputation-lab/internal/storage"
)

func testScore(finalScore int, computedAt time.Time) *domain.ScoreResult {
	subs := make([]domain.SubScore, 0, len(domain.IndicatorOrder))
	for i, name := range domain.IndicatorOrder {
		subs = append(subs, domain.SubScore{Name: name, Value: float64(50 + i), Weight: 0.2})
	}
	return &domain.ScoreResult{
		Address:    testAddress,
		FinalScore: finalScore,
		Profile:    "Good",
		SubScores:  subs,
		ComputedAt: computedAt,
	}
}

func TestScoreStore_InsertAndGetLatest(t *testing.T) {
	store := NewScoreStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, testScore(61, base)))
	require.NoError(t, store.Insert(ctx, testScore(74, base.Add(time.Hour))))

	got, err := store.GetLatest(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, 74, got.FinalScore)
	assert.Len(t, got.SubScores, len(domain.IndicatorOrder))
}

func TestScoreStore_GetHistoryOrdered(t *testing.T) {
	store := NewScoreStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	// Insert out of chronological order.
	require.NoError(t, store.Insert(ctx, testScore(74, base.Add(time.Hour))))
	require.NoError(t, store.Insert(ctx, testScore(61, base)))

	history, err := store.GetHistory(ctx, testAddress)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 61, history[0].FinalScore)
	assert.Equal(t, 74, history[1].FinalScore)
}

func TestScoreStore_GetLatestNotFound(t *testing.T) {
	store := NewScoreStore()

	_, err := store.GetLatest(context.Background(), "0x0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScoreStore_ReturnsCopies(t *testing.T) {
	store := NewScoreStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testScore(61, time.Now().UTC())))

	got, err := store.GetLatest(ctx, testAddress)
	require.NoError(t, err)
	got.SubScores[0].Value = -1

	again, err := store.GetLatest(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, 50.0, again.SubScores[0].Value)
}
