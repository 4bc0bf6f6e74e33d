package scoring

import (
	"fmt"
	"math"

	"wallet-reputation-lab/internal/domain"
)

const secondsPerDay = 86400.0

// extractLongevity derives an age-based sub-score from the first-seen
// transaction timestamp. Age maps to [0,100] through a log ramp saturating
// at p.SaturationDays: marginal trust gain from age shrinks over time.
func extractLongevity(h *domain.WalletHistory, refTime int64, p LongevityParams) domain.SubScore {
	if h.Empty() {
		return domain.SubScore{
			Name:      domain.IndicatorLongevity,
			Value:     0,
			Rationale: "no observed activity",
		}
	}

	first := h.Records[0].Timestamp
	days := float64(refTime-first) / secondsPerDay
	if days < 0 {
		days = 0
	}

	value := 100.0 * math.Log(days+1) / math.Log(p.SaturationDays+1)
	value = clamp(value, 0, 100)

	return domain.SubScore{
		Name:      domain.IndicatorLongevity,
		Value:     value,
		Rationale: fmt.Sprintf("first activity %.0f days before reference time (ramp saturates at %.0f days)", days, p.SaturationDays),
	}
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
