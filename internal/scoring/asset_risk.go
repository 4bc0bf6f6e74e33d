package scoring

import (
	"fmt"

	"wallet-reputation-lab/internal/domain"
)

// extractAssetRisk is symmetric to general risk but keyed on asset identifier:
// interactions involving assets tagged high-risk reduce the sub-score
// proportionally to their blended count/volume share.
//
// The asset-risk table is bundled reference data, always available, so this
// extractor is never degraded.
func extractAssetRisk(h *domain.WalletHistory, tiers map[string]domain.RiskTier) domain.SubScore {
	if h.Empty() {
		return domain.SubScore{
			Name:      domain.IndicatorAssetRisk,
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
		if tiers[r.Asset] == domain.RiskTierHigh {
			flagged++
			flaggedVolume += r.Value
		}
	}

	share := blendedShare(flagged, total, flaggedVolume, totalVolume)
	value := clamp(100.0-100.0*share, 0, 100)

	return domain.SubScore{
		Name:  domain.IndicatorAssetRisk,
		Value: value,
		Rationale: fmt.Sprintf("high_risk_asset_interactions=%d/%d high_risk_volume_share=%.2f",
			flagged, total, volumeShare(flaggedVolume, totalVolume)),
	}
}
