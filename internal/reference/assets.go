// Package reference bundles static risk reference data with the binary.
package reference

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"strings"

	"wallet-reputation-lab/internal/domain"
)

//go:embed assets.csv
var assetsCSV []byte

// LoadAssetRisk parses the bundled asset-risk table. Entries are keyed by
// lowercased asset identifier (contract or deposit address).
func LoadAssetRisk() ([]domain.AssetRiskEntry, error) {
	r := csv.NewReader(bytes.NewReader(assetsCSV))
	r.FieldsPerRecord = 3

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse asset risk csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("asset risk csv has no data rows")
	}

	entries := make([]domain.AssetRiskEntry, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		asset := strings.ToLower(strings.TrimSpace(row[0]))
		tier := domain.RiskTier(strings.TrimSpace(row[1]))

		if asset == "" {
			return nil, fmt.Errorf("asset risk csv row %d: empty asset", i+2)
		}
		if tier != domain.RiskTierHigh && tier != domain.RiskTierNone {
			return nil, fmt.Errorf("asset risk csv row %d: unknown tier %q", i+2, row[1])
		}

		entries = append(entries, domain.AssetRiskEntry{Asset: asset, Tier: tier})
	}

	return entries, nil
}
