package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-reputation-lab/internal/domain"
)

const testAddress = "0xdadb0d80178819f2319190d340ce9a924f783711"

func sampleResult() *domain.ScoreResult {
	return &domain.ScoreResult{
		Address:    testAddress,
		FinalScore: 72,
		Profile:    "Good",
		ComputedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		SubScores: []domain.SubScore{
			{Name: domain.IndicatorActivity, Value: 80, Weight: 0.25, Contribution: 20, Rationale: "tx_count=120 volume_eth=45.0000 regularity=0.62"},
			{Name: domain.IndicatorLongevity, Value: 90, Weight: 0.20, Contribution: 18, Rationale: "wallet age 400 days"},
			{Name: domain.IndicatorDiversity, Value: 60, Weight: 0.25, Contribution: 15, Rationale: "12 distinct protocols/assets"},
			{Name: domain.IndicatorGeneralRisk, Value: 50, Weight: 0.25, Contribution: 12.5, Degraded: true, Rationale: "address labels unavailable; neutral default applied"},
			{Name: domain.IndicatorAssetRisk, Value: 100, Weight: 0.05, Contribution: 5, Rationale: "no high-risk assets"},
		},
	}
}

func sampleHistory() *domain.WalletHistory {
	return &domain.WalletHistory{
		Address: testAddress,
		Records: []*domain.TransactionRecord{
			{TxHash: "0xa", Timestamp: 1600000000},
			{TxHash: "0xb", Timestamp: 1700000000},
		},
		Dropped:    1,
		Duplicates: 2,
	}
}

func TestBuild(t *testing.T) {
	past := []*domain.ScoreResult{
		{Address: testAddress, FinalScore: 65, Profile: "Good", ComputedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	r := Build(sampleResult(), sampleHistory(), past)

	assert.Equal(t, testAddress, r.Address)
	assert.Equal(t, 72, r.FinalScore)
	assert.Equal(t, "Good", r.Profile)
	assert.True(t, r.Degraded)

	require.Len(t, r.Indicators, 5)
	assert.Equal(t, domain.IndicatorActivity, r.Indicators[0].Name)
	assert.True(t, r.Indicators[3].Degraded)

	assert.Equal(t, 2, r.HistorySummary.Records)
	assert.Equal(t, 1, r.HistorySummary.Dropped)
	assert.Equal(t, 2, r.HistorySummary.Duplicates)
	assert.Equal(t, int64(1600000000), r.HistorySummary.FirstSeen)
	assert.Equal(t, int64(1700000000), r.HistorySummary.LastSeen)

	require.Len(t, r.ScoreHistory, 1)
	assert.Equal(t, 65, r.ScoreHistory[0].FinalScore)
}

func TestBuild_NilHistory(t *testing.T) {
	r := Build(sampleResult(), nil, nil)

	assert.Zero(t, r.HistorySummary.Records)
	assert.Empty(t, r.ScoreHistory)
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(Build(sampleResult(), sampleHistory(), nil))

	assert.Contains(t, md, "# Wallet Reputation Report")
	assert.Contains(t, md, "Score: 72 / 100 (Good)")
	assert.Contains(t, md, "degraded mode")
	assert.Contains(t, md, "general_risk")
	assert.Contains(t, md, "address labels unavailable")
	assert.Contains(t, md, "No previous scores")
}

func TestRenderCSV(t *testing.T) {
	csv := RenderCSV(Build(sampleResult(), sampleHistory(), nil))

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 6) // header + 5 indicators

	assert.Equal(t, "address,indicator,value,weight,contribution,degraded,rationale", lines[0])
	assert.Contains(t, lines[1], domain.IndicatorActivity)
	assert.Contains(t, lines[4], "true")
}
