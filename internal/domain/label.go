package domain

// LabelKind classifies an address label.
type LabelKind string

const (
	LabelMalicious LabelKind = "malicious"
	LabelBenign    LabelKind = "benign"
	LabelUnknown   LabelKind = "unknown"
)

// AddressLabel is optional risk metadata for a counterparty address.
// The label provider may be entirely unavailable (degraded mode), in which
// case scoring proceeds with an empty label map.
type AddressLabel struct {
	Address    string
	Kind       LabelKind
	Source     string  // e.g. "etherscan_nametag"
	Confidence float64 // [0,1]
}

// RiskTier classifies an asset in the static asset-risk reference table.
type RiskTier string

const (
	RiskTierHigh RiskTier = "high"
	RiskTierNone RiskTier = "none"
)

// AssetRiskEntry tags an asset identifier with a risk tier. Static reference
// data bundled with the binary, not wallet-specific.
type AssetRiskEntry struct {
	Asset string
	Tier  RiskTier
}
