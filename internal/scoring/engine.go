package scoring

import (
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet-reputation-lab/internal/domain"
)

// Engine computes explainable reputation scores. It is a pure, synchronous
// computation with no shared mutable state across invocations: concurrent
// scoring of different addresses requires no locking.
type Engine struct {
	cfg Config

	// assetTiers indexes the bundled asset-risk reference table.
	assetTiers map[string]domain.RiskTier
}

// NewEngine validates the configuration and builds an engine around it plus
// the static asset-risk reference table. Configuration violations surface
// here, never at scoring time.
func NewEngine(cfg Config, assets []domain.AssetRiskEntry) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tiers := make(map[string]domain.RiskTier, len(assets))
	for _, a := range assets {
		tiers[a.Asset] = a.Tier
	}

	return &Engine{cfg: cfg, assetTiers: tiers}, nil
}

// Score evaluates the five indicators over a normalized history and an
// optional label map (nil when the label provider is unavailable), then
// aggregates them under the configured weights.
//
// The extractors have no data dependency on one another and run fanned out
// across goroutines; the aggregation waits on the join barrier. The result
// is deterministic: scoring the same inputs twice yields identical output.
func (e *Engine) Score(h *domain.WalletHistory, labels map[string]domain.AddressLabel, refTime time.Time) *domain.ScoreResult {
	subs := make([]domain.SubScore, len(domain.IndicatorOrder))

	var g errgroup.Group
	g.Go(func() error {
		subs[0] = extractActivity(h, e.cfg.Activity)
		return nil
	})
	g.Go(func() error {
		subs[1] = extractLongevity(h, refTime.Unix(), e.cfg.Longevity)
		return nil
	})
	g.Go(func() error {
		subs[2] = extractDiversity(h, e.cfg.Diversity)
		return nil
	})
	g.Go(func() error {
		subs[3] = extractGeneralRisk(h, labels, e.cfg.Risk)
		return nil
	})
	g.Go(func() error {
		subs[4] = extractAssetRisk(h, e.assetTiers)
		return nil
	})
	// Extractors are pure and cannot fail; Wait is the fan-in barrier.
	_ = g.Wait()

	return e.aggregate(h.Address, subs, refTime)
}

// aggregate combines the sub-scores into the final score and produces the
// additive breakdown: each contribution is weight*value, and summing all
// contributions reproduces the final score before rounding.
func (e *Engine) aggregate(address string, subs []domain.SubScore, computedAt time.Time) *domain.ScoreResult {
	raw := 0.0
	for i := range subs {
		w := e.cfg.Weights[subs[i].Name]
		subs[i].Weight = w
		subs[i].Contribution = w * subs[i].Value
		raw += subs[i].Contribution
	}

	final := int(math.Round(clamp(raw, 0, 100)))

	return &domain.ScoreResult{
		Address:    address,
		FinalScore: final,
		Profile:    e.cfg.profileFor(final),
		SubScores:  subs,
		ComputedAt: computedAt,
	}
}
