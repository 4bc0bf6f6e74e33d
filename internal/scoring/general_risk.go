package scoring

import (
	"fmt"

	"wallet-reputation-lab/internal/domain"
)

// extractGeneralRisk derives a penalty-style sub-score from interactions with
// counterparties labeled malicious. The penalty is proportional to the share
// of total interactions (blended count and volume) involving flagged
// addresses, subtracted from a ceiling of 100.
//
// Labels are an optional capability: a nil or empty map means the provider
// was unavailable. The sub-score then pins to the configured neutral default
// with Degraded=true. Label absence never fails a scoring call.
func extractGeneralRisk(h *domain.WalletHistory, labels map[string]domain.AddressLabel, p RiskParams) domain.SubScore {
	if len(labels) == 0 {
		return domain.SubScore{
			Name:      domain.IndicatorGeneralRisk,
			Value:     p.NeutralDefault,
			Degraded:  true,
			Rationale: "address labels unavailable; neutral default applied",
		}
	}

	if h.Empty() {
		return domain.SubScore{
			Name:      domain.IndicatorGeneralRisk,
			Value:     100,
			Rationale: "no observed activity",
		}
	}

	total := len(h.Records)
	totalVolume := 0.0
	flagged := 0
	flaggedVolume := 0.0
	for _, r := range h.Records {
		totalVolume += r.Value
		if l, ok := labels[r.Counterparty]; ok && l.Kind == domain.LabelMalicious {
			flagged++
			flaggedVolume += r.Value
		}
	}

	share := blendedShare(flagged, total, flaggedVolume, totalVolume)
	value := clamp(100.0-100.0*share, 0, 100)

	return domain.SubScore{
		Name:  domain.IndicatorGeneralRisk,
		Value: value,
		Rationale: fmt.Sprintf("flagged_interactions=%d/%d flagged_volume_share=%.2f",
			flagged, total, volumeShare(flaggedVolume, totalVolume)),
	}
}

// blendedShare averages count share and volume share. When the history has no
// measurable volume, count share stands alone.
func blendedShare(flagged, total int, flaggedVolume, totalVolume float64) float64 {
	countShare := float64(flagged) / float64(total)
	if totalVolume <= 0 {
		return countShare
	}
	return (countShare + flaggedVolume/totalVolume) / 2
}

func volumeShare(flaggedVolume, totalVolume float64) float64 {
	if totalVolume <= 0 {
		return 0
	}
	return flaggedVolume / totalVolume
}
