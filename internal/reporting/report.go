// Package reporting renders scoring results into human-readable reports.
package reporting

import (
	"time"

	"wallet-reputation-lab/internal/domain"
)

// Report is the explainable reputation report for one wallet.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Address     string

	// Verdict
	FinalScore int
	Profile    string
	Degraded   bool

	// Breakdown (fixed indicator order)
	Indicators []IndicatorRow

	// History Summary
	HistorySummary HistorySummary

	// Past scores for the address, oldest first.
	ScoreHistory []ScoreHistoryRow
}

// IndicatorRow is one line of the additive breakdown table.
type IndicatorRow struct {
	Name         string
	Value        float64
	Weight       float64
	Contribution float64
	Degraded     bool
	Rationale    string
}

// HistorySummary describes the normalized input the score was computed from.
type HistorySummary struct {
	Records    int
	Dropped    int
	Duplicates int
	FirstSeen  int64 // Unix seconds, 0 when history is empty
	LastSeen   int64
}

// ScoreHistoryRow is one past scoring call.
type ScoreHistoryRow struct {
	ComputedAt time.Time
	FinalScore int
	Profile    string
	Degraded   bool
}

// Build assembles a Report from a score result, the history it was computed
// from, and any previously stored results (may be nil).
func Build(result *domain.ScoreResult, history *domain.WalletHistory, past []*domain.ScoreResult) *Report {
	r := &Report{
		GeneratedAt: time.Now().UTC(),
		Address:     result.Address,
		FinalScore:  result.FinalScore,
		Profile:     result.Profile,
		Degraded:    result.Degraded(),
	}

	for _, sub := range result.SubScores {
		r.Indicators = append(r.Indicators, IndicatorRow{
			Name:         sub.Name,
			Value:        sub.Value,
			Weight:       sub.Weight,
			Contribution: sub.Contribution,
			Degraded:     sub.Degraded,
			Rationale:    sub.Rationale,
		})
	}

	if history != nil {
		r.HistorySummary = HistorySummary{
			Records:    len(history.Records),
			Dropped:    history.Dropped,
			Duplicates: history.Duplicates,
		}
		if len(history.Records) > 0 {
			r.HistorySummary.FirstSeen = history.Records[0].Timestamp
			r.HistorySummary.LastSeen = history.Records[len(history.Records)-1].Timestamp
		}
	}

	for _, p := range past {
		r.ScoreHistory = append(r.ScoreHistory, ScoreHistoryRow{
			ComputedAt: p.ComputedAt,
			FinalScore: p.FinalScore,
			Profile:    p.Profile,
			Degraded:   p.Degraded(),
		})
	}

	return r
}
