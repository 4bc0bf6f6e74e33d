package scoring

import (
	"fmt"
	"math"

	"wallet-reputation-lab/internal/domain"
)

// weightTolerance is the floating tolerance for the weights-sum-to-1 check.
const weightTolerance = 1e-9

// ActivityParams controls the activity extractor.
type ActivityParams struct {
	// Internal sub-weighting of the three raw signals. Must sum to 1.0.
	CountWeight      float64
	RegularityWeight float64
	VolumeWeight     float64

	// Saturation points for the diminishing-returns transforms.
	CountSaturation  float64 // tx count treated as maximal
	VolumeSaturation float64 // cumulative volume (ETH) treated as maximal
}

// LongevityParams controls the age ramp.
type LongevityParams struct {
	// SaturationDays is the wallet age at which the log ramp reaches 100.
	SaturationDays float64
}

// DiversityParams controls the diversity extractor.
type DiversityParams struct {
	// Cap is the distinct protocol/asset count treated as maximal diversity.
	Cap int
}

// RiskParams controls the two risk extractors.
type RiskParams struct {
	// NeutralDefault is the general-risk sub-score used when address labels
	// are unavailable. Deliberately neither 0 nor 100.
	NeutralDefault float64
}

// ProfileBand maps a score range to a qualitative profile label.
// Min is the inclusive lower bound; a score belongs to the highest band
// whose Min it reaches.
type ProfileBand struct {
	Min   int
	Label string
}

// Config carries all indicator weights, saturation-curve parameters and
// profile thresholds. It is passed explicitly into the engine so the same
// process can score under multiple configurations concurrently.
type Config struct {
	// Weights maps indicator name to its weight. Must cover all five
	// indicators and sum to 1.0.
	Weights map[string]float64

	Activity  ActivityParams
	Longevity LongevityParams
	Diversity DiversityParams
	Risk      RiskParams

	// Profiles are ordered ascending by Min; the first band must start at 0.
	Profiles []ProfileBand
}

// DefaultConfig returns the stock configuration: weights 25/20/25/25/5,
// two-year age ramp, 5000-tx and 10000-ETH activity saturation, diversity
// cap of 20 distinct identifiers.
func DefaultConfig() Config {
	return Config{
		Weights: map[string]float64{
			domain.IndicatorActivity:    0.25,
			domain.IndicatorLongevity:   0.20,
			domain.IndicatorDiversity:   0.25,
			domain.IndicatorGeneralRisk: 0.25,
			domain.IndicatorAssetRisk:   0.05,
		},
		Activity: ActivityParams{
			CountWeight:      0.4,
			RegularityWeight: 0.2,
			VolumeWeight:     0.4,
			CountSaturation:  5000,
			VolumeSaturation: 10000,
		},
		Longevity: LongevityParams{SaturationDays: 730},
		Diversity: DiversityParams{Cap: 20},
		Risk:      RiskParams{NeutralDefault: 50},
		Profiles: []ProfileBand{
			{Min: 0, Label: "High Risk"},
			{Min: 10, Label: "Risky"},
			{Min: 30, Label: "Neutral / Unproven"},
			{Min: 60, Label: "Good"},
			{Min: 85, Label: "Trusted"},
		},
	}
}

// Validate checks the configuration invariants. It is called once at load
// (NewEngine), never per scoring call.
func (c Config) Validate() error {
	sum := 0.0
	for _, name := range domain.IndicatorOrder {
		w, ok := c.Weights[name]
		if !ok {
			return &ConfigurationError{Reason: fmt.Sprintf("missing weight for indicator %q", name)}
		}
		if w < 0 || w > 1 {
			return &ConfigurationError{Reason: fmt.Sprintf("weight for %q out of [0,1]: %v", name, w)}
		}
		sum += w
	}
	if len(c.Weights) != len(domain.IndicatorOrder) {
		return &ConfigurationError{Reason: "weights configured for unknown indicators"}
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return &ConfigurationError{Reason: fmt.Sprintf("indicator weights sum to %v, want 1.0", sum)}
	}

	subSum := c.Activity.CountWeight + c.Activity.RegularityWeight + c.Activity.VolumeWeight
	if math.Abs(subSum-1.0) > weightTolerance {
		return &ConfigurationError{Reason: fmt.Sprintf("activity sub-weights sum to %v, want 1.0", subSum)}
	}
	if c.Activity.CountSaturation <= 0 || c.Activity.VolumeSaturation <= 0 {
		return &ConfigurationError{Reason: "activity saturation points must be positive"}
	}
	if c.Longevity.SaturationDays <= 0 {
		return &ConfigurationError{Reason: "longevity saturation days must be positive"}
	}
	if c.Diversity.Cap <= 0 {
		return &ConfigurationError{Reason: "diversity cap must be positive"}
	}
	if c.Risk.NeutralDefault <= 0 || c.Risk.NeutralDefault >= 100 {
		return &ConfigurationError{Reason: "neutral risk default must be strictly between 0 and 100"}
	}

	if len(c.Profiles) == 0 {
		return &ConfigurationError{Reason: "no profile bands configured"}
	}
	if c.Profiles[0].Min != 0 {
		return &ConfigurationError{Reason: "first profile band must start at 0"}
	}
	for i := 1; i < len(c.Profiles); i++ {
		if c.Profiles[i].Min <= c.Profiles[i-1].Min {
			return &ConfigurationError{Reason: fmt.Sprintf(
				"profile bands unordered or overlapping at %q (min %d after min %d)",
				c.Profiles[i].Label, c.Profiles[i].Min, c.Profiles[i-1].Min)}
		}
		if c.Profiles[i].Min > 100 {
			return &ConfigurationError{Reason: fmt.Sprintf("profile band %q starts above 100", c.Profiles[i].Label)}
		}
	}

	return nil
}

// profileFor returns the label of the highest band whose inclusive lower
// bound the score reaches. Boundary values belong to the higher band.
func (c Config) profileFor(score int) string {
	label := c.Profiles[0].Label
	for _, band := range c.Profiles {
		if score >= band.Min {
			label = band.Label
		}
	}
	return label
}
