package domain

import "time"

// Indicator names, in the fixed breakdown order of a ScoreResult.
const (
	IndicatorActivity    = "activity"
	IndicatorLongevity   = "longevity"
	IndicatorDiversity   = "diversity"
	IndicatorGeneralRisk = "general_risk"
	IndicatorAssetRisk   = "asset_risk"
)

// IndicatorOrder is the canonical ordering of sub-scores in a ScoreResult.
var IndicatorOrder = []string{
	IndicatorActivity,
	IndicatorLongevity,
	IndicatorDiversity,
	IndicatorGeneralRisk,
	IndicatorAssetRisk,
}

// SubScore is one component indicator of the final reputation score.
type SubScore struct {
	Name   string
	Value  float64 // [0,100]
	Weight float64 // [0,1]

	// Contribution is Weight*Value, filled by the aggregator. Summing all
	// contributions reproduces the final score before rounding.
	Contribution float64

	// Degraded is true when the sub-score was computed without an optional
	// data source (e.g. risk labels unavailable). A degraded value is a
	// low-confidence value, not a low one.
	Degraded bool

	// Rationale names the raw signals that produced the value.
	Rationale string
}

// ScoreResult is the complete, auditable output of one scoring call.
// It has no persistent identity; the caller owns it.
type ScoreResult struct {
	Address    string
	FinalScore int    // [0,100], rounded
	Profile    string // qualitative band derived from FinalScore
	SubScores  []SubScore
	ComputedAt time.Time
}

// Degraded reports whether any sub-score was computed from incomplete inputs.
func (r *ScoreResult) Degraded() bool {
	for _, s := range r.SubScores {
		if s.Degraded {
			return true
		}
	}
	return false
}
