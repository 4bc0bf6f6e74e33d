package scoring

import (
	"fmt"

	"wallet-reputation-lab/internal/domain"
)

// extractDiversity counts distinct protocol and asset identifiers the wallet
// interacted with and maps the count to [0,100], saturating at p.Cap.
// Diversity signals genuine exploratory usage, but the cap keeps automated
// multi-protocol farming from growing the score indefinitely.
func extractDiversity(h *domain.WalletHistory, p DiversityParams) domain.SubScore {
	if h.Empty() {
		return domain.SubScore{
			Name:      domain.IndicatorDiversity,
			Value:     0,
			Rationale: "no observed activity",
		}
	}

	// Union set: a token contract appearing as both protocol and asset
	// counts once.
	distinct := make(map[string]struct{})
	protocols := 0
	assets := 0
	for _, r := range h.Records {
		if r.Protocol != "" {
			if _, ok := distinct[r.Protocol]; !ok {
				distinct[r.Protocol] = struct{}{}
				protocols++
			}
		}
		if r.Asset != "" {
			if _, ok := distinct[r.Asset]; !ok {
				distinct[r.Asset] = struct{}{}
				assets++
			}
		}
	}

	value := clamp(100.0*float64(len(distinct))/float64(p.Cap), 0, 100)

	return domain.SubScore{
		Name:  domain.IndicatorDiversity,
		Value: value,
		Rationale: fmt.Sprintf("distinct_identifiers=%d (protocols=%d assets=%d, cap=%d)",
			len(distinct), protocols, assets, p.Cap),
	}
}
