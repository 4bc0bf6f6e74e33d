package scoring

import (
	"fmt"
	"math"

	"wallet-reputation-lab/internal/domain"
)

// extractActivity derives a sub-score from three raw signals: transaction
// count, time-regularity of inter-transaction intervals, and cumulative
// volume. Count and volume pass through a log10 saturating transform so a
// single whale-sized wallet or bot-like burst cannot dominate the scale.
func extractActivity(h *domain.WalletHistory, p ActivityParams) domain.SubScore {
	if h.Empty() {
		return domain.SubScore{
			Name:      domain.IndicatorActivity,
			Value:     0,
			Rationale: "no observed activity",
		}
	}

	count := len(h.Records)
	volume := 0.0
	for _, r := range h.Records {
		volume += r.Value
	}

	countNorm := saturateLog10(float64(count), p.CountSaturation)
	volumeNorm := saturateLog10(volume, p.VolumeSaturation)
	regularity := intervalRegularity(h.Records)

	value := 100.0 * (p.CountWeight*countNorm + p.RegularityWeight*regularity + p.VolumeWeight*volumeNorm)
	value = clamp(value, 0, 100)

	return domain.SubScore{
		Name:  domain.IndicatorActivity,
		Value: value,
		Rationale: fmt.Sprintf("tx_count=%d volume_eth=%.4f regularity=%.2f",
			count, volume, regularity),
	}
}

// saturateLog10 maps x to [0,1] with diminishing returns, reaching 1 at cap.
func saturateLog10(x, cap float64) float64 {
	if x <= 0 {
		return 0
	}
	return clamp(math.Log10(x+1)/math.Log10(cap+1), 0, 1)
}

// intervalRegularity measures dispersion of inter-transaction intervals as
// 1/(1+CV) where CV is the coefficient of variation. Low dispersion yields a
// value near 1. Fewer than two intervals gives 0: regularity is not
// observable.
func intervalRegularity(records []*domain.TransactionRecord) float64 {
	if len(records) < 3 {
		return 0
	}

	intervals := make([]float64, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		intervals = append(intervals, float64(records[i].Timestamp-records[i-1].Timestamp))
	}

	mean := 0.0
	for _, iv := range intervals {
		mean += iv
	}
	mean /= float64(len(intervals))
	if mean <= 0 {
		// All records share one timestamp: a burst, maximally irregular.
		return 0
	}

	sumSq := 0.0
	for _, iv := range intervals {
		diff := iv - mean
		sumSq += diff * diff
	}
	stddev := math.Sqrt(sumSq / float64(len(intervals)-1))

	cv := stddev / mean
	return 1.0 / (1.0 + cv)
}
